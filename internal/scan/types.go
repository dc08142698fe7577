package scan

// Service describes one discovered remote-service class.
type Service struct {
	ClassName string
	Module    string // RelPath of the declaring module
	Base      string // literal base namespace
	Methods   []Method
}

// Method describes one API method extracted from a service class.
type Method struct {
	Name       string
	Endpoint   string // endpoint literal from the self-dispatch call
	Params     []Param
	ReturnKind string // payload type T, verbatim as declared
}

// Param is one declared parameter with its resolved wire kind.
type Param struct {
	Name string
	Kind string
}

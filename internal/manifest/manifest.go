// Package manifest assembles and writes the versioned endpoint manifest.
package manifest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"github.com/decklab/rpc-manifest/internal/scan"
)

// Endpoint is one remote operation: its parameter wire kinds and the
// declared return payload.
type Endpoint struct {
	Params map[string]string `json:"params"`
	Return string            `json:"return"`
}

// Manifest is the emitted artifact: project version plus the full
// namespace -> endpoint tables.
type Manifest struct {
	Version   string                         `json:"version"`
	Endpoints map[string]map[string]Endpoint `json:"endpoints"`
}

// Build assembles a Manifest from validated services.
func Build(services []scan.Service, version string) *Manifest {
	m := &Manifest{
		Version:   version,
		Endpoints: map[string]map[string]Endpoint{},
	}
	for _, svc := range services {
		ns := m.Endpoints[svc.Base]
		if ns == nil {
			ns = map[string]Endpoint{}
			m.Endpoints[svc.Base] = ns
		}
		for _, method := range svc.Methods {
			ep := Endpoint{
				Params: map[string]string{},
				Return: method.ReturnKind,
			}
			for _, p := range method.Params {
				ep.Params[p.Name] = p.Kind
			}
			ns[method.Endpoint] = ep
		}
	}
	return m
}

// Encode renders the manifest as pretty-printed JSON with a trailing
// newline. encoding/json sorts map keys, so output is byte-stable for an
// unchanged source tree.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// Write performs the full-file write, creating the output directory as
// needed. When the file already holds byte-identical content the write is
// skipped, leaving the previous file (and its mtime) untouched.
func Write(path string, data []byte) error {
	if prev, err := os.ReadFile(path); err == nil {
		if xxh3.Hash(prev) == xxh3.Hash(data) {
			slog.Info("manifest.unchanged", "path", path)
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	slog.Info("manifest.written", "path", path, "bytes", len(data))
	return nil
}

// packageJSON is the slice of project metadata the generator consumes.
type packageJSON struct {
	Version string `json:"version"`
}

// ReadVersion reads the project version string once from package.json.
// A missing file or version field degrades to "0.0.0" with a warning;
// only the source tree itself is load-bearing for this tool.
func ReadVersion(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("manifest.no_version", "path", path, "err", err)
		return "0.0.0"
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil || pkg.Version == "" {
		slog.Warn("manifest.no_version", "path", path)
		return "0.0.0"
	}
	return pkg.Version
}

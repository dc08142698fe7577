package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/decklab/rpc-manifest/internal/discover"
	"github.com/decklab/rpc-manifest/internal/lang"
	"github.com/decklab/rpc-manifest/internal/parser"
)

// Module is one parsed source file. Immutable once loaded.
type Module struct {
	Path     string // absolute path
	RelPath  string // slash-separated, relative to project root
	Language lang.Language
	Source   []byte

	tree *tree_sitter.Tree
	spec *lang.LanguageSpec
}

// Spec returns the node-kind tables for the module's dialect.
func (m *Module) Spec() *lang.LanguageSpec {
	return m.spec
}

// Root returns the root node of the module's syntax tree.
func (m *Module) Root() *tree_sitter.Node {
	return m.tree.RootNode()
}

// Classes returns every class declaration node in the module, in source order.
func (m *Module) Classes() []*tree_sitter.Node {
	return m.topLevel(m.spec.ClassNodeTypes)
}

// Enums returns every enum declaration node in the module, in source order.
func (m *Module) Enums() []*tree_sitter.Node {
	return m.topLevel(m.spec.EnumNodeTypes)
}

// TypeAliases returns every type alias declaration node in the module,
// in source order.
func (m *Module) TypeAliases() []*tree_sitter.Node {
	return m.topLevel(m.spec.AliasNodeTypes)
}

// topLevel collects nodes of the given kinds anywhere in the tree.
// Declarations nested inside export statements or namespaces are included;
// traversal does not descend into matched nodes.
func (m *Module) topLevel(kinds []string) []*tree_sitter.Node {
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []*tree_sitter.Node
	parser.Walk(m.Root(), func(n *tree_sitter.Node) bool {
		if want[n.Kind()] {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

// Index is the parsed forest of every source module under a project root.
type Index struct {
	Root    string
	modules []*Module
}

// Load discovers and parses all TypeScript modules under rootPath.
// A module that fails to parse is a fatal error: the generator cannot
// proceed with unparsed inputs.
func Load(ctx context.Context, rootPath string) (*Index, error) {
	files, err := discover.Discover(ctx, rootPath, nil)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	return LoadFiles(ctx, rootPath, files)
}

// LoadFiles parses an already-discovered file set.
func LoadFiles(ctx context.Context, rootPath string, files []discover.FileInfo) (*Index, error) {
	idx := &Index{Root: rootPath}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			idx.Close()
			return nil, err
		}

		src, err := os.ReadFile(f.Path)
		if err != nil {
			idx.Close()
			return nil, fmt.Errorf("read %s: %w", f.RelPath, err)
		}

		tree, err := parser.Parse(f.Language, src)
		if err != nil {
			idx.Close()
			return nil, fmt.Errorf("parse %s: %w", f.RelPath, err)
		}
		if tree.RootNode().HasError() {
			tree.Close()
			idx.Close()
			return nil, fmt.Errorf("parse %s: syntax errors in source", f.RelPath)
		}

		idx.modules = append(idx.modules, &Module{
			Path:     f.Path,
			RelPath:  f.RelPath,
			Language: f.Language,
			Source:   src,
			tree:     tree,
			spec:     lang.ForLanguage(f.Language),
		})
	}

	// Deterministic module order regardless of filesystem walk quirks.
	sort.Slice(idx.modules, func(i, j int) bool {
		return idx.modules[i].RelPath < idx.modules[j].RelPath
	})

	slog.Info("source.loaded", "modules", len(idx.modules))
	return idx, nil
}

// Modules returns all modules in RelPath order.
func (idx *Index) Modules() []*Module {
	return idx.modules
}

// Close releases every parse tree. The index is unusable afterwards.
func (idx *Index) Close() {
	for _, m := range idx.modules {
		if m.tree != nil {
			m.tree.Close()
			m.tree = nil
		}
	}
}

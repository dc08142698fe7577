// Package pipeline orchestrates one generation run: discover, parse,
// resolve types, scan services, validate, emit. The run is a single
// deterministic pass; data flows strictly forward between stages.
package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"github.com/decklab/rpc-manifest/internal/config"
	"github.com/decklab/rpc-manifest/internal/discover"
	"github.com/decklab/rpc-manifest/internal/manifest"
	"github.com/decklab/rpc-manifest/internal/report"
	"github.com/decklab/rpc-manifest/internal/scan"
	"github.com/decklab/rpc-manifest/internal/source"
	"github.com/decklab/rpc-manifest/internal/store"
	"github.com/decklab/rpc-manifest/internal/typemap"
	"github.com/decklab/rpc-manifest/internal/validate"
)

// Pipeline runs the generator against one project root.
type Pipeline struct {
	ctx   context.Context
	Root  string
	Cfg   *config.Config
	Cache *store.Cache // nil when the cache could not be opened
}

// Result summarizes a completed (non-fatal) run.
type Result struct {
	Services    []scan.Service
	Diagnostics []report.Diagnostic
	Version     string
	OutPath     string
	Written     bool // manifest emitted this run
	CacheHit    bool // run short-circuited on an unchanged tree
}

// New prepares a pipeline for the given project root. A cache that fails
// to open degrades to a full scan; it is never fatal.
func New(ctx context.Context, root string) *Pipeline {
	p := &Pipeline{
		ctx:  ctx,
		Root: root,
		Cfg:  config.LoadConfig(root),
	}
	cache, err := store.Open(root)
	if err != nil {
		slog.Warn("cache.unavailable", "err", err)
	} else {
		p.Cache = cache
	}
	return p
}

// Close releases the cache connection, if any.
func (p *Pipeline) Close() {
	if p.Cache != nil {
		p.Cache.Close()
	}
}

// Run executes the full pass. A returned error is fatal (unparsable
// source, filesystem failure); recorded diagnostics are returned on the
// Result and leave any previous manifest untouched.
func (p *Pipeline) Run() (*Result, error) {
	slog.Info("run.start", "root", p.Root)

	files, err := discover.Discover(p.ctx, p.Root, nil)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	slog.Info("run.discovered", "files", len(files))

	outPath := filepath.Join(p.Root, filepath.FromSlash(p.Cfg.EffectiveOut()))
	res := &Result{OutPath: outPath}

	hashes, err := hashFiles(files)
	if err != nil {
		return nil, err
	}
	// The manifest version is read from the metadata file, so it is an
	// input like any source module and must invalidate the fast path.
	pkgPath := filepath.Join(p.Root, filepath.FromSlash(p.Cfg.EffectivePackageJSON()))
	if h, err := hashFile(pkgPath); err == nil {
		hashes[filepath.ToSlash(p.Cfg.EffectivePackageJSON())] = h
	}
	if p.unchangedSinceLastRun(hashes, outPath) {
		slog.Info("run.cache_hit", "files", len(files))
		res.CacheHit = true
		return res, nil
	}

	idx, err := source.LoadFiles(p.ctx, p.Root, files)
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	table := typemap.Build(idx)
	rep := report.New()
	services := scan.Scan(idx, p.Cfg, table, rep)
	validate.Validate(services, rep)

	res.Services = services
	res.Diagnostics = rep.Diagnostics()

	if rep.Count() > 0 {
		slog.Error("run.failed", "diagnostics", rep.Count())
		if p.Cache != nil {
			// Force a full scan next time; the tree is in a bad state.
			_ = p.Cache.ClearFileHashes()
			_ = p.Cache.RecordRun(len(files), rep.Count(), "")
		}
		return res, nil
	}

	res.Version = manifest.ReadVersion(pkgPath)
	data, err := manifest.Build(services, res.Version).Encode()
	if err != nil {
		return nil, err
	}
	if err := manifest.Write(outPath, data); err != nil {
		return nil, err
	}
	res.Written = true

	if p.Cache != nil {
		if err := p.Cache.ReplaceFileHashes(hashes); err != nil {
			slog.Warn("cache.update_failed", "err", err)
		}
		_ = p.Cache.RecordRun(len(files), 0, fmt.Sprintf("%016x", xxh3.Hash(data)))
	}

	slog.Info("run.done", "services", len(services), "version", res.Version)
	return res, nil
}

// unchangedSinceLastRun reports whether every tracked file hash matches
// the last successful run and the on-disk manifest still carries the
// recorded content.
func (p *Pipeline) unchangedSinceLastRun(hashes map[string]string, outPath string) bool {
	if p.Cache == nil {
		return false
	}
	stored, err := p.Cache.FileHashes()
	if err != nil || len(stored) == 0 || len(stored) != len(hashes) {
		return false
	}
	for rel, h := range hashes {
		if stored[rel] != h {
			return false
		}
	}
	recorded, ok := p.Cache.LastSuccessfulManifestHash()
	if !ok {
		return false
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		return false
	}
	return fmt.Sprintf("%016x", xxh3.Hash(data)) == recorded
}

// hashFiles computes the content hash of every discovered file.
func hashFiles(files []discover.FileInfo) (map[string]string, error) {
	hashes := make(map[string]string, len(files))
	for _, f := range files {
		h, err := hashFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", f.RelPath, err)
		}
		hashes[f.RelPath] = h
	}
	return hashes, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

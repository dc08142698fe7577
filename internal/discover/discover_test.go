package discover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/decklab/rpc-manifest/internal/lang"
)

func TestDiscoverBasic(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "deck.ts"), []byte("export {};\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "card.tsx"), []byte("export {};\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// Non-TypeScript files are not discovered.
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// Declaration files carry no implementations.
	if err := os.WriteFile(filepath.Join(dir, "globals.d.ts"), []byte("declare const x: number;\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// JavaScript never maps through the language registry.
	if err := os.WriteFile(filepath.Join(dir, "bundle.min.js"), []byte("var x;\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	files, err := Discover(ctx, dir, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}

	byRel := map[string]lang.Language{}
	for _, f := range files {
		if f.Path == "" {
			t.Error("expected non-empty Path")
		}
		byRel[f.RelPath] = f.Language
	}
	if byRel["deck.ts"] != lang.TypeScript {
		t.Errorf("deck.ts language = %s, want typescript", byRel["deck.ts"])
	}
	if byRel["card.tsx"] != lang.TSX {
		t.Errorf("card.tsx language = %s, want tsx", byRel["card.tsx"])
	}
}

func TestDiscoverSkipsIgnoredDirs(t *testing.T) {
	dir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(dir, "node_modules", "pkg"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "node_modules", "pkg", "index.ts"), []byte("export {};\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.ts"), []byte("export {};\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	files, err := Discover(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "app.ts" {
		t.Fatalf("expected only app.ts, got %v", files)
	}
}

func TestDiscoverIgnoreFile(t *testing.T) {
	dir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(dir, "legacy"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "legacy", "old.ts"), []byte("export {};\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.ts"), []byte("export {};\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".rmignore"), []byte("# skip legacy code\nlegacy\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	files, err := Discover(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "app.ts" {
		t.Fatalf("expected only app.ts, got %v", files)
	}
}

func TestDiscoverCancellation(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "app.ts"), []byte("export {};\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // pre-cancel

	_, err := Discover(ctx, dir, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

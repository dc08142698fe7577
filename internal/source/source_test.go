package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadQueries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "types.ts", `export type DeckId = string;

export enum CardFlag {
	None,
	Marked,
}
`)
	writeFile(t, dir, "services/deck.ts", `export class DeckService extends RemoteService {
	static readonly base = "deck";
}
`)

	idx, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer idx.Close()

	mods := idx.Modules()
	if len(mods) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(mods))
	}
	// RelPath order: services/deck.ts sorts after types.ts
	if mods[0].RelPath != "services/deck.ts" || mods[1].RelPath != "types.ts" {
		t.Fatalf("unexpected module order: %s, %s", mods[0].RelPath, mods[1].RelPath)
	}

	types := mods[1]
	if got := len(types.TypeAliases()); got != 1 {
		t.Errorf("TypeAliases: got %d, want 1", got)
	}
	if got := len(types.Enums()); got != 1 {
		t.Errorf("Enums: got %d, want 1", got)
	}
	if got := len(types.Classes()); got != 0 {
		t.Errorf("Classes in types.ts: got %d, want 0", got)
	}

	svc := mods[0]
	if got := len(svc.Classes()); got != 1 {
		t.Errorf("Classes in services/deck.ts: got %d, want 1", got)
	}
}

func TestLoadSyntaxErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.ts", "class {{{\n")

	_, err := Load(context.Background(), dir)
	if err == nil {
		t.Fatal("expected error for unparsable module")
	}
}

func TestLoadEmptyProject(t *testing.T) {
	dir := t.TempDir()

	idx, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer idx.Close()
	if len(idx.Modules()) != 0 {
		t.Errorf("expected no modules, got %d", len(idx.Modules()))
	}
}

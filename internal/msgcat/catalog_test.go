package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedDefaultsLoad(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := c.Render("game.move", map[string]any{"SAN": "e4"})
	if got == "game.move" {
		t.Fatal("embedded key missing")
	}
	if !strings.Contains(got, "e4") {
		t.Fatalf("template data not interpolated: %q", got)
	}
}

func TestUnknownKeyReturnsKey(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Render("no.such.key", nil); got != "no.such.key" {
		t.Fatalf("Render unknown = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "game:\n  move: \"MOVED {{.SAN}}\"\n"
	if err := os.WriteFile(filepath.Join(dir, "10-custom.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New with overrides: %v", err)
	}
	if got := c.Render("game.move", map[string]any{"SAN": "Nf3"}); got != "MOVED Nf3" {
		t.Fatalf("override not applied: %q", got)
	}
	// Keys absent from the override keep their embedded defaults.
	if got := c.Render("game.reset", nil); got == "game.reset" {
		t.Fatal("embedded default lost after override")
	}
}

func TestOverrideDirMissing(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("missing override dir accepted")
	}
}

func TestBrokenTemplateFallsBackToKey(t *testing.T) {
	dir := t.TempDir()
	bad := "game:\n  move: \"{{.SAN\"\n"
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(bad), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Render("game.move", map[string]any{"SAN": "e4"}); got != "game.move" {
		t.Fatalf("broken template rendered %q", got)
	}
}

package prompt_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/CerealNotFound/function-calling-server/prompt"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileStore_List(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "20-tone.md", "Be brief.")
	writeFile(t, root, "10-crm/rules.txt", "Never invent emails.")
	writeFile(t, root, ".hidden.md", "secret")
	writeFile(t, root, ".git/config.md", "ignored")
	writeFile(t, root, "notes.json", "{}")

	keys, err := prompt.NewFileStore(root).List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"10-crm/rules.txt", "20-tone.md"}
	if !slices.Equal(keys, want) {
		t.Errorf("got keys %v, want %v", keys, want)
	}
}

func TestFileStore_List_MissingRoot(t *testing.T) {
	keys, err := prompt.NewFileStore(filepath.Join(t.TempDir(), "absent")).List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("got %v, want none", keys)
	}
}

func TestFileStore_Load_Errors(t *testing.T) {
	store := prompt.NewFileStore(t.TempDir())

	tests := []string{"missing.md", "../escape.md"}
	for _, key := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := store.Load(context.Background(), key)
			if !errors.Is(err, prompt.ErrFragmentNotFound) {
				t.Errorf("Load(%q) error = %v, want %v", key, err, prompt.ErrFragmentNotFound)
			}
		})
	}
}

func TestCompose(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.md", "Second.\n")
	writeFile(t, root, "a.md", "First.")
	writeFile(t, root, "c.md", "   ")

	got, err := prompt.Compose(context.Background(), "You are a helpful assistant", prompt.NewFileStore(root))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	want := "You are a helpful assistant\n\nFirst.\n\nSecond."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompose_NilStore(t *testing.T) {
	got, err := prompt.Compose(context.Background(), "base", nil)
	if err != nil || got != "base" {
		t.Errorf("Compose = %q, %v", got, err)
	}
}

func TestConfig(t *testing.T) {
	cfg := prompt.DefaultConfig()
	if prompt.NewStore(&cfg) != nil {
		t.Error("default config should disable fragments")
	}

	cfg.Merge(&prompt.Config{Dir: "/etc/relay/prompt"})
	if cfg.Dir != "/etc/relay/prompt" {
		t.Errorf("got dir %q", cfg.Dir)
	}
	if prompt.NewStore(&cfg) == nil {
		t.Error("configured dir should create a store")
	}
}

package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	t.Setenv("APPLYBEE_TEST_KEY", "from-env")

	got, err := Load(Source{Name: "gemini api key", File: path, Value: "inline", Env: "APPLYBEE_TEST_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadFallsBackToValueThenEnv(t *testing.T) {
	t.Setenv("APPLYBEE_TEST_KEY", " from-env ")

	got, err := Load(Source{Value: " inline ", Env: "APPLYBEE_TEST_KEY"})
	if err != nil || got != "inline" {
		t.Fatalf("expected inline secret, got %q (%v)", got, err)
	}

	got, err = Load(Source{Env: "APPLYBEE_TEST_KEY"})
	if err != nil || got != "from-env" {
		t.Fatalf("expected env secret, got %q (%v)", got, err)
	}
}

func TestLoadErrors(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("   "), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{name: "missing file", src: Source{Name: "key", File: filepath.Join(t.TempDir(), "nope")}, expect: "reading key from file"},
		{name: "empty file", src: Source{Name: "key", File: empty}, expect: "is empty"},
		{name: "nothing configured", src: Source{}, expect: "secret is not configured"},
		{name: "env unset", src: Source{Name: "key", Env: "APPLYBEE_UNSET_FOR_TEST"}, expect: "checked APPLYBEE_UNSET_FOR_TEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.expect) {
				t.Fatalf("expected error containing %q, got %v", tt.expect, err)
			}
		})
	}
}

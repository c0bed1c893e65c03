package app

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestCredentialStore_SaveLoadClear(t *testing.T) {
	t.Setenv("CAMPFIRE_TOKEN", "")
	store := NewCredentialStore(filepath.Join(t.TempDir(), "nested", "credentials.json"))

	if got := store.Token(); got != "" {
		t.Fatalf("empty store returned token %q", got)
	}
	if err := store.Save("  tok-123  "); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := store.Token(); got != "tok-123" {
		t.Fatalf("Token = %q, want trimmed %q", got, "tok-123")
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := store.Token(); got != "" {
		t.Fatalf("token survived Clear: %q", got)
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestCredentialStore_RejectsBlankToken(t *testing.T) {
	store := NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	err := store.Save("   ")
	var v *ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("Save(blank) = %v, want ValidationError", err)
	}
}

func TestCredentialStore_EnvOverride(t *testing.T) {
	store := NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err := store.Save("file-token"); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CAMPFIRE_TOKEN", "env-token")
	if got := store.Token(); got != "env-token" {
		t.Fatalf("Token = %q, want env override %q", got, "env-token")
	}
}

package config

import (
	"errors"
	"testing"
	"testing/fstest"
)

type staticEnv map[string]any

func (s staticEnv) Load() (map[string]any, error) { return s, nil }

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(WithoutEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if *cfg != *want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	fsys := fstest.MapFS{
		"undocalc.toml": {Data: []byte(`
[logging]
level = "debug"
format = "json"

[history]
max_entries = 10
redo_boundary = "exact"

[journal]
redis_addr = "localhost:6379"
`)},
	}

	env := staticEnv{
		"logging": map[string]any{"level": "warn"},
		"ui":      map[string]any{"wait_for_key": false},
	}

	cfg, err := Load(WithFileSystem(fsys), WithFile("undocalc.toml"), WithEnvLoader(env))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (env wins)", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
	if cfg.History.MaxEntries != 10 {
		t.Errorf("History.MaxEntries = %d, want 10", cfg.History.MaxEntries)
	}
	if cfg.History.RedoBoundary != "exact" {
		t.Errorf("History.RedoBoundary = %q, want exact", cfg.History.RedoBoundary)
	}
	if cfg.Journal.RedisAddr != "localhost:6379" {
		t.Errorf("Journal.RedisAddr = %q", cfg.Journal.RedisAddr)
	}
	if cfg.Journal.Key != "undocalc:journal" {
		t.Errorf("Journal.Key = %q, want default", cfg.Journal.Key)
	}
	if cfg.UI.WaitForKey {
		t.Error("UI.WaitForKey should be false")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(WithFileSystem(fstest.MapFS{}), WithFile("nope.toml"), WithoutEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.History.MaxEntries != 1000 {
		t.Errorf("History.MaxEntries = %d, want 1000", cfg.History.MaxEntries)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.toml": {Data: []byte(`
[logging]
level = "loud"

[history]
max_entries = 0
redo_boundary = "sometimes"
`)},
	}

	_, err := Load(WithFileSystem(fsys), WithFile("bad.toml"), WithoutEnv())
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("error = %v, want ErrValidationFailed", err)
	}

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error type = %T, want ValidationErrors", err)
	}
	if len(verrs) != 3 {
		t.Errorf("len(errors) = %d, want 3: %v", len(verrs), err)
	}
}

func TestLoad_TypeMismatch(t *testing.T) {
	env := staticEnv{"history": map[string]any{"max_entries": "many"}}
	if _, err := Load(WithEnvLoader(env)); err == nil {
		t.Error("expected decode error for non-numeric max_entries")
	}
}

func TestValidate_JournalKeyRequired(t *testing.T) {
	cfg := Default()
	cfg.Journal.RedisAddr = "localhost:6379"
	cfg.Journal.Key = ""

	err := cfg.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() = %v, want *ValidationError", err)
	}
	if verr.Path != "journal.key" {
		t.Errorf("Path = %q, want journal.key", verr.Path)
	}
}

func TestLoad_EnvValuesFollowFieldTypes(t *testing.T) {
	t.Setenv("UNDOCALC_JOURNAL_KEY", "2024")
	t.Setenv("UNDOCALC_SCRIPT", "on")
	t.Setenv("UNDOCALC_HISTORY_MAX_ENTRIES", "25")
	t.Setenv("UNDOCALC_UI_WAIT_FOR_KEY", "no")

	cfg, err := Load(WithFileSystem(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Journal.Key != "2024" {
		t.Errorf("Journal.Key = %q, want 2024", cfg.Journal.Key)
	}
	if cfg.Script.Path != "on" {
		t.Errorf("Script.Path = %q, want on", cfg.Script.Path)
	}
	if cfg.History.MaxEntries != 25 {
		t.Errorf("History.MaxEntries = %d, want 25", cfg.History.MaxEntries)
	}
	if cfg.UI.WaitForKey {
		t.Error("UI.WaitForKey = true, want false")
	}
}

package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/undocalc.toml", `
[logging]
level = "debug"

[history]
max_entries = 50
redo_boundary = "exact"

[ui]
wait_for_key = false
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/undocalc.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if v, _ := Lookup(config, "logging.level"); v != "debug" {
		t.Errorf("logging.level = %v, want debug", v)
	}
	if v, _ := Lookup(config, "history.max_entries"); v != int64(50) {
		t.Errorf("history.max_entries = %v (%T), want 50", v, v)
	}
	if v, _ := Lookup(config, "history.redo_boundary"); v != "exact" {
		t.Errorf("history.redo_boundary = %v, want exact", v)
	}
	if v, _ := Lookup(config, "ui.wait_for_key"); v != false {
		t.Errorf("ui.wait_for_key = %v, want false", v)
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/missing.toml").Load()
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if config != nil {
		t.Errorf("config = %v, want nil", config)
	}

	config, err = NewTOMLLoaderWithFS(NewMemFS(), "").Load()
	if err != nil || config != nil {
		t.Errorf("empty path = (%v, %v), want (nil, nil)", config, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[history]\nmax_entries = = 3\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	if err == nil {
		t.Fatal("expected parse error")
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" {
		t.Errorf("Path = %q, want /bad.toml", perr.Path)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
	if !strings.Contains(err.Error(), "/bad.toml") {
		t.Errorf("error %q should name the file", err)
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[server]\nlisten = \":9000\"\n"))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if v, _ := Lookup(config, "server.listen"); v != ":9000" {
		t.Errorf("server.listen = %v, want :9000", v)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"history": map[string]any{"max_entries": int64(1000), "redo_boundary": "reference"},
		"logging": map[string]any{"level": "info"},
	}
	src := map[string]any{
		"history": map[string]any{"redo_boundary": "exact"},
		"server":  map[string]any{"listen": ":8080"},
	}

	got := DeepMerge(dst, src)

	if v, _ := Lookup(got, "history.max_entries"); v != int64(1000) {
		t.Errorf("history.max_entries = %v, want 1000", v)
	}
	if v, _ := Lookup(got, "history.redo_boundary"); v != "exact" {
		t.Errorf("history.redo_boundary = %v, want exact", v)
	}
	if v, _ := Lookup(got, "logging.level"); v != "info" {
		t.Errorf("logging.level = %v, want info", v)
	}
	if v, _ := Lookup(got, "server.listen"); v != ":8080" {
		t.Errorf("server.listen = %v, want :8080", v)
	}

	if got := DeepMerge(nil, nil); got == nil {
		t.Error("DeepMerge(nil, nil) should return an empty map")
	}
}

func TestDecode(t *testing.T) {
	type history struct {
		MaxEntries int    `toml:"max_entries"`
		Boundary   string `toml:"redo_boundary"`
	}
	var out struct {
		History history `toml:"history"`
	}

	data := map[string]any{
		"history": map[string]any{"max_entries": int64(25), "redo_boundary": "exact"},
	}
	if err := Decode(data, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.History.MaxEntries != 25 || out.History.Boundary != "exact" {
		t.Errorf("decoded = %+v", out.History)
	}

	bad := map[string]any{"history": map[string]any{"max_entries": "lots"}}
	if err := Decode(bad, &out); err == nil {
		t.Error("expected type error for string max_entries")
	}
}

func TestLookupAndSet(t *testing.T) {
	data := map[string]any{}
	Set(data, "journal.redis_addr", "localhost:6379")
	Set(data, "journal.key", "calc")
	Set(data, "", "ignored")

	if v, ok := Lookup(data, "journal.redis_addr"); !ok || v != "localhost:6379" {
		t.Errorf("journal.redis_addr = %v, %v", v, ok)
	}
	if _, ok := Lookup(data, "journal.missing"); ok {
		t.Error("missing key should not be found")
	}
	if _, ok := Lookup(data, "journal.key.deeper"); ok {
		t.Error("path through a scalar should not be found")
	}
	if len(data) != 1 {
		t.Errorf("len(data) = %d, want 1", len(data))
	}
}

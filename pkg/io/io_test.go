package io

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/symbolkit/pkg/errors"
	"github.com/matzehuels/symbolkit/pkg/rule"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "design.json")
	if err := os.WriteFile(path, []byte(`{"frames": []}`), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != `{"frames": []}` {
		t.Errorf("ReadFile = %q", data)
	}

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(dir, "nope.json"), errors.ErrCodeFileNotFound},
		{"empty path", "", errors.ErrCodeInvalidPath},
		{"control character", "bad\x00.json", errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFile(tt.path)
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadFile(%q) error = %v, want %s", tt.path, err, tt.code)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(map[string]int{"b": 2, "a": 1}, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	want := "{\n  \"a\": 1,\n  \"b\": 2\n}\n"
	if buf.String() != want {
		t.Errorf("WriteJSON = %q, want %q", buf.String(), want)
	}
}

func TestWriteJSONMarshaler(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(rule.NewStore(), &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"obj"`)) {
		t.Errorf("rule store output = %s", buf.String())
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "frames.json")
	if err := ExportJSON([]int{1, 2}, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "[\n  1,\n  2\n]\n"; string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

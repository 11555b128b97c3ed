package assets

import (
	"archive/zip"
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ankit-colmed/planter-pressure/errors"
)

// writeArchive creates a zip at dir/ArchiveName with the given entries.
func writeArchive(t *testing.T, dir string, entries map[string][]byte) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	path := filepath.Join(dir, ArchiveName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

func TestLoadModule(t *testing.T) {
	want := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	path := writeArchive(t, t.TempDir(), map[string][]byte{
		ModuleName + ".wasm": want,
		"README.txt":         []byte("not a module"),
	})

	got, err := LoadModule(path, ModuleName)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("LoadModule = %x, want %x", got, want)
	}
}

func TestLoadModule_MissingArchive(t *testing.T) {
	_, err := LoadModule(filepath.Join(t.TempDir(), ArchiveName), ModuleName)
	if err == nil {
		t.Fatal("expected error for missing archive")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidInput}) {
		t.Errorf("error %v should be a load-phase error", err)
	}
}

func TestLoadModule_MissingEntry(t *testing.T) {
	path := writeArchive(t, t.TempDir(), map[string][]byte{
		"other_module.wasm": {0x00},
	})

	_, err := LoadModule(path, ModuleName)
	if err == nil {
		t.Fatal("expected error for missing entry")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindNotFound}) {
		t.Errorf("error %v should be a not-found load error", err)
	}
}

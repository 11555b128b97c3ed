package engine

// Minimal wasm binary encoding for a test guest module, so lifecycle and
// invocation tests run against a real embedded runtime without any build
// tooling. The module implements the bundled-module contract: exported
// memory, a bump allocator under the simple "alloc" name, and
// process_image_json(ptr, len) -> retptr to a (data_ptr, data_len) pair.

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ankit-colmed/planter-pressure/assets"
)

const (
	secType     = 1
	secFunction = 3
	secMemory   = 5
	secGlobal   = 6
	secExport   = 7
	secCode     = 10

	valI32 = 0x7f

	exportFunc = 0x00
	exportMem  = 0x02

	opUnreachable = 0x00
	opEnd         = 0x0b
	opLocalGet    = 0x20
	opLocalSet    = 0x21
	opGlobalGet   = 0x23
	opGlobalSet   = 0x24
	opI32Store    = 0x36
	opI32Const    = 0x41
	opI32Add      = 0x6a
)

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func section(id byte, payload []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint32(len(payload)))...)
	return append(out, payload...)
}

func funcBody(locals []byte, code []byte) []byte {
	body := append(append([]byte{}, locals...), code...)
	out := uleb(uint32(len(body)))
	return append(out, body...)
}

func exportEntry(name string, kind byte, index uint32) []byte {
	out := uleb(uint32(len(name)))
	out = append(out, name...)
	out = append(out, kind)
	return append(out, uleb(index)...)
}

type guestSpec struct {
	// trap makes process_image_json execute unreachable.
	trap bool
	// omitEntry leaves process_image_json unexported.
	omitEntry bool
	// entryIsAlloc exports the one-parameter allocator under the entry name,
	// producing a resolvable but uncallable export.
	entryIsAlloc bool
	// freeTraps exports a "free" that executes unreachable, so host-driven
	// releases fail while everything else works.
	freeTraps bool
}

// buildGuest assembles the guest module binary.
//
// Function 0 is a bump allocator over a mutable global starting at 1024.
// Function 1 stores (ptr, len) at address 8 and returns 8, echoing its
// input, so distinct invocations produce distinct, verifiable results.
func buildGuest(spec guestSpec) []byte {
	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	// (i32) -> (i32), (i32, i32) -> (i32) and (i32) -> ()
	typeSec := []byte{3,
		0x60, 1, valI32, 1, valI32,
		0x60, 2, valI32, valI32, 1, valI32,
		0x60, 1, valI32, 0,
	}
	mod = append(mod, section(secType, typeSec)...)

	mod = append(mod, section(secFunction, []byte{3, 0, 1, 2})...)

	// one memory, min 1 page
	mod = append(mod, section(secMemory, []byte{1, 0x00, 1})...)

	// mutable i32 bump pointer, init 1024
	globalSec := []byte{1, valI32, 0x01, opI32Const}
	globalSec = append(globalSec, uleb(1024)...)
	globalSec = append(globalSec, opEnd)
	mod = append(mod, section(secGlobal, globalSec)...)

	exports := [][]byte{
		exportEntry("memory", exportMem, 0),
		exportEntry("alloc", exportFunc, 0),
	}
	if !spec.omitEntry {
		entryIdx := uint32(1)
		if spec.entryIsAlloc {
			entryIdx = 0
		}
		exports = append(exports, exportEntry(assets.EntryPoint, exportFunc, entryIdx))
	}
	if spec.freeTraps {
		exports = append(exports, exportEntry("free", exportFunc, 2))
	}
	exportSec := uleb(uint32(len(exports)))
	for _, e := range exports {
		exportSec = append(exportSec, e...)
	}
	mod = append(mod, section(secExport, exportSec)...)

	allocBody := funcBody(
		[]byte{1, 1, valI32},
		[]byte{
			opGlobalGet, 0,
			opLocalSet, 1,
			opGlobalGet, 0,
			opLocalGet, 0,
			opI32Add,
			opGlobalSet, 0,
			opLocalGet, 1,
			opEnd,
		},
	)

	var processBody []byte
	if spec.trap {
		processBody = funcBody([]byte{0}, []byte{opUnreachable, opEnd})
	} else {
		processBody = funcBody(
			[]byte{0},
			[]byte{
				opI32Const, 8,
				opLocalGet, 0,
				opI32Store, 2, 0,
				opI32Const, 8,
				opLocalGet, 1,
				opI32Store, 2, 4,
				opI32Const, 8,
				opEnd,
			},
		)
	}

	// Function 2 is the trapping release; harmless dead weight unless the
	// freeTraps export makes it reachable.
	freeBody := funcBody([]byte{0}, []byte{opUnreachable, opEnd})

	codeSec := []byte{3}
	codeSec = append(codeSec, allocBody...)
	codeSec = append(codeSec, processBody...)
	codeSec = append(codeSec, freeBody...)
	mod = append(mod, section(secCode, codeSec)...)

	return mod
}

// writeAssetsDir creates a temp assets directory holding app_modules.zip
// with the guest module inside, returning the directory path.
func writeAssetsDir(t *testing.T, wasm []byte) string {
	t.Helper()

	dir := t.TempDir()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(assets.ModuleName + ".wasm")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write(wasm); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, assets.ArchiveName), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return dir
}

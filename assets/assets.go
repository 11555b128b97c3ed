package assets

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/ankit-colmed/planter-pressure/errors"
)

const (
	// ArchiveName is the bundle expected directly under the assets path.
	ArchiveName = "app_modules.zip"

	// ModuleName is the module carried inside the archive. The entry name in
	// the zip is ModuleName + ".wasm".
	ModuleName = "image_processor"

	// EntryPoint is the exported callable resolved from the module.
	EntryPoint = "process_image_json"
)

// maxModuleSize bounds a single module read from the archive. The bundled
// processor is well under this; anything larger is a corrupt or hostile zip.
const maxModuleSize = 256 << 20

// LoadModule opens the bundled archive and returns the raw bytes of the
// named module. Only the archive is consulted, so the bundled module shadows
// any same-named module installed elsewhere on the host.
func LoadModule(archivePath, module string) ([]byte, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("open archive %s", archivePath), err)
	}
	defer zr.Close()

	entry := module + ".wasm"
	for _, f := range zr.File {
		if f.Name != entry {
			continue
		}
		if f.UncompressedSize64 > maxModuleSize {
			return nil, errors.Load(fmt.Sprintf("module %s exceeds %d bytes", entry, int64(maxModuleSize)), nil)
		}

		rc, err := f.Open()
		if err != nil {
			return nil, errors.Load(fmt.Sprintf("open entry %s", entry), err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, errors.Load(fmt.Sprintf("read entry %s", entry), err)
		}
		return data, nil
	}

	return nil, errors.NotFound(errors.PhaseLoad, "archive entry", entry)
}

// Package assets loads the bundled module archive.
//
// The engine expects a file named app_modules.zip directly under the assets
// path handed to Initialize, containing image_processor.wasm at the archive
// root. Building that archive is packaging-pipeline territory and out of
// scope here; this package only reads it.
package assets

// Command run drives the engine from a shell: it initializes against an
// assets directory, submits one processing request and prints the returned
// JSON payload. With -i it starts an interactive session instead.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	planterpressure "github.com/ankit-colmed/planter-pressure"
	"github.com/ankit-colmed/planter-pressure/engine"
)

func main() {
	var (
		assetsDir   = flag.String("assets", "", "Directory containing app_modules.zip")
		home        = flag.String("home", "", "Host directory the guest sees as its filesystem root (default /)")
		imagePath   = flag.String("image", "", "Input image path (builds the standard request payload)")
		rawJSON     = flag.String("json", "", "Raw request payload, passed through verbatim")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose engine logging")
	)
	flag.Parse()

	if *assetsDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -assets <dir> -image <path> [-home dir]")
		fmt.Fprintln(os.Stderr, "       run -assets <dir> -json '<payload>'")
		fmt.Fprintln(os.Stderr, "       run -assets <dir> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		engine.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*assetsDir, *home); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*assetsDir, *home, *imagePath, *rawJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildPayload wraps an image path in the conventional request payload.
func buildPayload(imagePath string) (string, error) {
	req := struct {
		InputImagePath string `json:"input_image_path"`
	}{InputImagePath: imagePath}

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("build payload: %w", err)
	}
	return string(data), nil
}

func run(assetsDir, home, imagePath, rawJSON string) error {
	ctx := context.Background()

	payload := rawJSON
	if payload == "" {
		if imagePath == "" {
			return fmt.Errorf("provide -image or -json")
		}
		var err error
		payload, err = buildPayload(imagePath)
		if err != nil {
			return err
		}
	}

	eng := engine.New()
	if st := eng.Initialize(ctx, home, assetsDir); st != engine.StatusOK {
		return fmt.Errorf("initialize: %s: %s", st, eng.LastError())
	}
	defer eng.Shutdown(ctx)

	fmt.Printf("Engine %s ready (assets: %s)\n\n", planterpressure.Version, assetsDir)

	fmt.Println(eng.Invoke(ctx, []byte(payload)))
	return nil
}

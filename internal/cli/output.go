package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/postopt/internal/config"
)

// warnNonJSONExtension writes a warning to w if path has an extension
// other than .json. The output is JSON regardless.
func warnNonJSONExtension(w io.Writer, path string) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" && ext != ".json" {
		_, _ = fmt.Fprintf(w, "Warning: output is JSON regardless of %s extension\n", ext)
	}
}

// emitJSON renders a document with encode and sends it to output, or to
// env.Stdout when output is empty. Relative output paths resolve against
// outputDir. Returns the path written, or "" for stdout.
func emitJSON(env *Env, output, outputDir string, encode func(io.Writer) error) (string, error) {
	if output == "" {
		return "", encode(env.Stdout)
	}

	path := config.ResolveOutputPath(output, outputDir)
	warnNonJSONExtension(env.Stderr, path)

	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return "", err
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

// checkOutputFree fails early when the output file already exists, before
// any generation call is spent.
func checkOutputFree(output, outputDir string) error {
	if output == "" {
		return nil
	}
	path := config.ResolveOutputPath(output, outputDir)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, ErrOutputExists)
	}
	return nil
}

// writeFileAtomic writes content to path atomically.
// It fails if the file already exists (O_EXCL), preventing accidental overwrites.
// On write failure, the partial file is removed.
func writeFileAtomic(path string, content []byte) error {
	// #nosec G302 G304 -- user-specified output file with standard permissions
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrOutputExists)
		}
		return fmt.Errorf("cannot create output file: %w", err)
	}

	writeErr := func() error {
		defer func() { _ = f.Close() }()
		if _, err := f.Write(content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}()

	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}

	return nil
}

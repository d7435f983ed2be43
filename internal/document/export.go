package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// ContentType is the media type of every exported artifact.
const ContentType = "text/plain; charset=utf-8"

// Output is an artifact packaged for saving.
type Output struct {
	Name        string
	ContentType string
	Body        []byte
}

// Saver delivers an Output to the user.
type Saver interface {
	Save(ctx context.Context, out Output) error
}

// OutputName derives the download name: "notes.txt" becomes
// "translated_notes.txt" and "a.b.txt" becomes "translated_a.b.txt".
// A name with no stem, such as "" or ".bashrc", falls back to "document".
func OutputName(fileName string) string {
	base := filepath.Base(fileName)
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "document"
	}
	return "translated_" + base + ".txt"
}

// ExportArtifact packages a for saving.
func ExportArtifact(a Artifact) Output {
	return Output{
		Name:        OutputName(a.FileName),
		ContentType: ContentType,
		Body:        []byte(a.Text),
	}
}

// DirSaver writes outputs into Dir, replacing any existing file atomically.
type DirSaver struct {
	Dir string
}

func (d DirSaver) Path(out Output) string {
	return filepath.Join(d.Dir, out.Name)
}

func (d DirSaver) Save(ctx context.Context, out Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	pending, err := renameio.NewPendingFile(d.Path(out), renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer pending.Cleanup()

	if _, err := pending.Write(out.Body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to save output: %w", err)
	}
	return nil
}

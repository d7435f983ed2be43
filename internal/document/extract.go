package document

import (
	"bytes"
	"context"
	"errors"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileReader reads the raw bytes of a pending file.
type FileReader interface {
	ReadAll(ctx context.Context, f PendingFile) ([]byte, error)
}

// SourceReader reads through the Source captured at intake.
type SourceReader struct{}

func (SourceReader) ReadAll(ctx context.Context, f PendingFile) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.source == nil {
		return nil, errors.New("file has no content source")
	}
	rc, err := f.source.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

type Extractor struct {
	reader FileReader
}

// NewExtractor returns an extractor over r, or over SourceReader when r is nil.
func NewExtractor(r FileReader) *Extractor {
	if r == nil {
		r = SourceReader{}
	}
	return &Extractor{reader: r}
}

// ExtractText reads the file and decodes it as UTF-8 text. A leading BOM is
// dropped and malformed sequences become U+FFFD; no format-specific parsing
// is attempted.
func (e *Extractor) ExtractText(ctx context.Context, f PendingFile) (string, error) {
	data, err := e.reader.ReadAll(ctx, f)
	if err != nil {
		return "", &ReadError{Name: f.Name, Err: err}
	}
	text, err := decodeUTF8(data)
	if err != nil {
		return "", &ReadError{Name: f.Name, Err: err}
	}
	return text, nil
}

func decodeUTF8(data []byte) (string, error) {
	r := transform.NewReader(bytes.NewReader(data), unicode.UTF8BOM.NewDecoder())
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the largest file accepted at intake, in bytes.
const MaxFileSize = 10 * 1024 * 1024

// AcceptedExtensions lists the formats offered to the user. Only .txt is
// decoded meaningfully; the rest are read as raw text.
var AcceptedExtensions = []string{".pdf", ".doc", ".docx", ".txt"}

// Source opens the bytes behind a selected file.
type Source interface {
	Open() (io.ReadCloser, error)
}

type pathSource string

func (p pathSource) Open() (io.ReadCloser, error) { return os.Open(string(p)) }

type bytesSource []byte

func (b bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// File is a user selection before it passes intake.
type File struct {
	Name   string
	Size   int64
	Source Source
}

// FileFromPath describes a file on local disk without reading it.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{Name: filepath.Base(path), Size: info.Size(), Source: pathSource(path)}, nil
}

// FileFromBytes wraps an in-memory upload.
func FileFromBytes(name string, data []byte) File {
	return File{Name: name, Size: int64(len(data)), Source: bytesSource(data)}
}

// PendingFile is the file held by a session between intake and export.
type PendingFile struct {
	Name      string  `json:"name"`
	SizeBytes int64   `json:"sizeBytes"`
	Content   *string `json:"-"`

	source Source
}

// SizeKB formats the size the way the portal displays it.
func (p PendingFile) SizeKB() string {
	return fmt.Sprintf("%.2f KB", float64(p.SizeBytes)/1024)
}

// IsAccepted reports whether name carries one of AcceptedExtensions.
func IsAccepted(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range AcceptedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

func isPlainText(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".txt")
}

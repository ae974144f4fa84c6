// Package writers resolves a log output setting to a writer.
package writers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedOutput is returned for outputs that are neither a standard
// stream nor a file path.
var ErrUnsupportedOutput = errors.New("unsupported log output")

// WriterType represents the type of writer to create
type WriterType string

const (
	WriterTypeStdout WriterType = "stdout"
	WriterTypeStderr WriterType = "stderr"
	WriterTypeFile   WriterType = "file"
)

type stdStream struct{ *os.File }

// Close leaves the process stream open.
func (stdStream) Close() error { return nil }

// CreateWriter opens the writer named by output:
//   - "stdout" or "" - os.Stdout
//   - "stderr" - os.Stderr
//   - "file:///path/to/file" or "/path/to/file" - appends to the file,
//     creating parent directories
//
// Closing a standard stream writer is a no-op.
func CreateWriter(output string) (io.WriteCloser, error) {
	switch ParseWriterType(output) {
	case WriterTypeStdout:
		return stdStream{os.Stdout}, nil
	case WriterTypeStderr:
		return stdStream{os.Stderr}, nil
	}

	if strings.HasPrefix(output, "file://") {
		return createFileWriter(strings.TrimPrefix(output, "file://"))
	}
	if isFilePath(output) {
		return createFileWriter(output)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOutput, output)
}

func isFilePath(path string) bool {
	if strings.Contains(path, "://") {
		return false
	}
	return strings.Contains(path, "/") || strings.Contains(path, "\\") || filepath.Ext(path) == ".log"
}

func createFileWriter(filePath string) (io.WriteCloser, error) {
	dir := filepath.Dir(filePath)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	return file, nil
}

// ParseWriterType determines the writer type from an output string
func ParseWriterType(output string) WriterType {
	switch output {
	case "", "stdout":
		return WriterTypeStdout
	case "stderr":
		return WriterTypeStderr
	default:
		return WriterTypeFile
	}
}

// Package jsonfile encodes and atomically writes the published JSON files.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Indentation used by the published files.
const (
	SnapshotIndent  = "    "
	ChangelogIndent = "  "
)

// Encode marshals v with indent, leaving non-ASCII text and HTML characters
// unescaped. The result always ends with a newline.
func Encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteAtomic replaces path with data by writing a temporary file in the same
// directory and renaming it over the target.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			slog.Error("failed to remove temporary file", "path", tmpPath, "error", rmErr)
		}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadArray decodes path as a JSON array of objects. A missing file, an
// unreadable file, or any non-array payload yields exists=false or an empty
// slice rather than an error, matching how the pipeline treats absent history.
func ReadArray(path string) (rows []map[string]any, exists bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return DecodeArray(data), true, nil
}

// DecodeArray decodes data as a JSON array of objects, returning an empty
// slice for anything else.
func DecodeArray(data []byte) []map[string]any {
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return []map[string]any{}
	}
	if rows == nil {
		return []map[string]any{}
	}
	return rows
}

// ErrNotArray is returned when a document must be a JSON array but is not.
var ErrNotArray = errors.New("not a JSON array")

// ReindentArray checks that data is a JSON array and re-indents it without
// touching its elements: key order, unknown fields and number text survive.
// It returns the formatted document and the number of elements.
func ReindentArray(data []byte, indent string) ([]byte, int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrNotArray, err)
	}
	if items == nil {
		return nil, 0, ErrNotArray
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(data), "", indent); err != nil {
		return nil, 0, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), len(items), nil
}

package grid

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/etfsave/internal/common"
)

// ErrUnsupportedFormat is returned when a file matches no known reader.
var ErrUnsupportedFormat = errors.New("unsupported grid format")

var (
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	zipMagic  = []byte("PK\x03\x04")
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
)

// Format identifies which reader handles a file.
type Format string

// Supported formats.
const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatHTML Format = "html"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
)

// Detect picks a format from the file content, falling back to the extension.
// Web portals often serve an HTML table under an .xls name, so content wins.
func Detect(path string, data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, ole2Magic):
		return FormatXLS, nil
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	}

	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return FormatHTML, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv", ".txt":
		return FormatTSV, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// Load reads the first sheet (or table) of the file at path.
func Load(path string) (Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: grid file %s: %v", common.ErrMissingSource, path, err)
		}
		return nil, fmt.Errorf("%w: failed to read grid file: %v", common.ErrMissingSource, err)
	}

	format, err := Detect(path, data)
	if err != nil {
		return nil, err
	}

	g, err := Parse(format, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s as %s: %w", filepath.Base(path), format, err)
	}

	slog.Debug("Loaded grid", "path", path, "format", format, "rows", len(g))
	return g, nil
}

// Parse decodes data with the reader for format.
func Parse(format Format, data []byte) (Grid, error) {
	switch format {
	case FormatXLSX:
		return ReadXLSX(bytes.NewReader(data))
	case FormatXLS:
		return ReadXLS(bytes.NewReader(data))
	case FormatHTML:
		return ReadHTML(bytes.NewReader(data))
	case FormatCSV:
		return ReadDelimited(bytes.NewReader(data), ',')
	case FormatTSV:
		return ReadDelimited(bytes.NewReader(data), '\t')
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

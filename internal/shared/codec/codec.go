// Package codec reads the structured files consumed by the engine: rule
// lists, allowlists and private location registries.
//
// The format is chosen by file extension (.json, .yaml/.yml, .toml), with an
// optional compression suffix (.gz, .zst) in front of which the real
// extension sits, e.g. "blocklist.json.zst".
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pelletier/go-toml/v2"
)

// Format is a structured serialization format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Compression is a whole-file compression wrapper
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// MaxFileSize bounds how much a single decoded file may expand to
const MaxFileSize = 64 << 20

var (
	ErrUnknownFormat = errors.New("unknown file format")
	ErrTooLarge      = errors.New("file exceeds maximum size")
)

// Detect infers format and compression from a file name
func Detect(name string) (Format, Compression, error) {
	base := strings.ToLower(filepath.Base(name))

	comp := CompressionNone
	switch {
	case strings.HasSuffix(base, ".gz"):
		comp = CompressionGzip
		base = strings.TrimSuffix(base, ".gz")
	case strings.HasSuffix(base, ".zst"):
		comp = CompressionZstd
		base = strings.TrimSuffix(base, ".zst")
	}

	switch filepath.Ext(base) {
	case ".json":
		return FormatJSON, comp, nil
	case ".yaml", ".yml":
		return FormatYAML, comp, nil
	case ".toml":
		return FormatTOML, comp, nil
	default:
		return "", comp, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}

// ReadFile reads path and undoes any compression implied by its name
func ReadFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	_, comp, err := Detect(path)
	if err != nil && !errors.Is(err, ErrUnknownFormat) {
		return nil, err
	}
	return Decompress(comp, raw)
}

// Decompress expands data according to comp
func Decompress(comp Compression, data []byte) ([]byte, error) {
	switch comp {
	case CompressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		return readLimited(zr)
	case CompressionZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer zr.Close()
		return readLimited(zr)
	default:
		if len(data) > MaxFileSize {
			return nil, ErrTooLarge
		}
		return data, nil
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Decode unmarshals data in the given format into v
func Decode(format Format, data []byte, v interface{}) error {
	var err error
	switch format {
	case FormatJSON:
		err = sonic.Unmarshal(data, v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatTOML:
		err = toml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", format, err)
	}
	return nil
}

// Encode marshals v in the given format
func Encode(format Format, v interface{}) ([]byte, error) {
	switch format {
	case FormatJSON:
		return sonic.ConfigStd.MarshalIndent(v, "", "  ")
	case FormatYAML:
		return yaml.Marshal(v)
	case FormatTOML:
		return toml.Marshal(v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// IsBlank reports whether data holds nothing but whitespace
func IsBlank(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// LoadFile reads and decodes path into v. found is false when the file does
// not exist or is blank, in which case v is left untouched.
func LoadFile(path string, v interface{}) (found bool, err error) {
	format, _, err := Detect(path)
	if err != nil {
		return false, err
	}
	data, err := ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if IsBlank(data) {
		return false, nil
	}
	if err := Decode(format, data, v); err != nil {
		return true, fmt.Errorf("%s: %w", path, err)
	}
	return true, nil
}

// Package loader reads partials documents from disk. Plain YAML, zstd or lz4
// compressed YAML and Go scripts evaluated with yaegi all produce the same
// element tree.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/arbitrary-partials/internal/document"
)

// Source pairs a decoded document with its on-disk path.
type Source struct {
	Path string
	Root *document.Node
}

// Elements reports how many top-level elements the document holds.
func (s Source) Elements() int {
	if s.Root == nil {
		return 0
	}
	return s.Root.ChildCount()
}

// Supported reports whether LoadFile understands the file name.
func Supported(name string) bool {
	if filepath.Ext(name) == ".go" {
		return true
	}
	base, _ := splitCompression(name)
	return isYAMLFile(base)
}

// LoadFile reads one document from disk.
func LoadFile(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("loader: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("loader: %s is a directory", path)
	}
	if filepath.Ext(path) == ".go" {
		return LoadGoFile(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return Source{}, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()
	src, err := LoadReader(path, f)
	if err != nil {
		return Source{}, err
	}
	src.Path = filepath.Clean(path)
	return src, nil
}

// LoadReader decodes a YAML document from r. Compression is chosen by the
// name's extension (.zst or .lz4) and otherwise detected from the payload's
// magic number.
func LoadReader(name string, r io.Reader) (Source, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Source{}, fmt.Errorf("loader: read %s: %w", name, err)
	}
	_, c := splitCompression(name)
	if c == codecNone {
		c = sniff(raw)
	}
	data, err := decompress(c, raw)
	if err != nil {
		return Source{}, fmt.Errorf("loader: %s: %w", name, err)
	}
	root, err := document.ParseYAML(data)
	if err != nil {
		return Source{}, fmt.Errorf("loader: %s: %w", name, err)
	}
	return Source{Path: name, Root: root}, nil
}

// Discover lists the supported documents directly inside dir in name order.
// Missing directories are treated as "no documents".
func Discover(dir string) ([]string, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("loader: read %s: %w", trimmed, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !Supported(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(trimmed, entry.Name()))
	}
	return paths, nil
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// sniff reports whether data starts with a known compression magic number.
func sniff(data []byte) codec {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return codecZstd
	case bytes.HasPrefix(data, lz4Magic):
		return codecLZ4
	default:
		return codecNone
	}
}

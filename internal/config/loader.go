package config

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// FileSystem abstracts file access for loading, so tests can use in-memory
// documents.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// ParseError reports a malformed tunables document.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads a tunables file from the OS file system. A missing file yields
// the defaults.
func Load(path string) (*File, error) {
	return LoadFS(DefaultFS(), path)
}

// LoadFS reads a tunables file through the given file system. A missing
// file yields the defaults.
func LoadFS(fsys FileSystem, path string) (*File, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes a tunables document over the defaults, so absent keys keep
// their stock values.
func Parse(path string, data []byte) (*File, error) {
	f := Default()
	if err := toml.Unmarshal(data, f); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return f, nil
}

package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	_ERROR_MESSAGE_BAD_EXTENSION = "debug spec file must be .yaml, .yml or .toml: "
	_ERROR_MESSAGE_NO_PATH       = "debug spec file path is empty"
)

// document is the on-disk layout:
//
//	namespaces: "http,-http:noisy"      # YAML
//	namespaces = "http,-http:noisy"     # TOML
type document struct {
	Namespaces string `yaml:"namespaces" toml:"namespaces"`
}

type codec struct {
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

var codecs = map[string]codec{
	".yaml": {yaml.Marshal, yaml.Unmarshal},
	".yml":  {yaml.Marshal, yaml.Unmarshal},
	".toml": {toml.Marshal, toml.Unmarshal},
}

// File keeps the specification in a small YAML or TOML document, picked by the
// file extension.
type File struct {
	mtx   sync.Mutex
	path  string
	codec codec
}

// NewFile creates a store for path. The file itself is created on first Save.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New(_ERROR_MESSAGE_NO_PATH)
	}
	c, ok := codecs[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, errors.New(_ERROR_MESSAGE_BAD_EXTENSION + path)
	}
	return &File{path: filepath.Clean(path), codec: c}, nil
}

// Path returns the cleaned file path.
func (f *File) Path() string { return f.path }

// Load reads the stored specification. A missing file is an empty spec.
func (f *File) Load() (string, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.load()
}

func (f *File) load() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading debug spec file: %w", err)
	}
	var doc document
	if err := f.codec.unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("unmarshaling debug spec file: %w", err)
	}
	return doc.Namespaces, nil
}

// Save writes spec unless the file already holds it, so a watcher reacting to
// the file does not see its own writes echoed back.
func (f *File) Save(spec string) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if current, err := f.load(); err == nil && current == spec {
		if _, statErr := os.Stat(f.path); statErr == nil {
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("creating debug spec directory: %w", err)
	}
	data, err := f.codec.marshal(document{Namespaces: spec})
	if err != nil {
		return fmt.Errorf("marshaling debug spec file: %w", err)
	}
	return os.WriteFile(f.path, data, 0644)
}

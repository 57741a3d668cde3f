// Package localfile reads the workspace copy of the file being pushed.
package localfile

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// LocalFile is the workspace state of the pushed file
type LocalFile struct {
	Path    string `json:"path" yaml:"path"`
	Exists  bool   `json:"exists" yaml:"exists"`
	Content []byte `json:"-" yaml:"-"`
}

// Size returns the content length in bytes
func (f *LocalFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Content)
}

// Inspector checks for and reads local files
type Inspector struct {
	fs afero.Fs
}

// NewInspector creates an inspector over fs
func NewInspector(fs afero.Fs) *Inspector {
	return &Inspector{fs: fs}
}

// NewOSInspector creates an inspector over the real filesystem
func NewOSInspector() *Inspector {
	return NewInspector(afero.NewOsFs())
}

// Inspect reports whether path exists and, if so, its exact bytes.
// A missing file is a normal result, not an error.
func (i *Inspector) Inspect(path string) (*LocalFile, error) {
	info, err := i.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &LocalFile{Path: path, Exists: false}, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}

	content, err := afero.ReadFile(i.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if content == nil {
		content = []byte{}
	}

	return &LocalFile{Path: path, Exists: true, Content: content}, nil
}

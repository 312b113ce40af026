// Package projectfile reads and writes .phylum_project, the versioned,
// human-editable link between a working directory and a server-side
// project (§4.10). Written by `phylum init`, `phylum project link`, and
// `phylum project create`.
package projectfile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the on-disk name of the project file, always written to the
// current directory.
const FileName = ".phylum_project"

// CurrentVersion is bumped whenever the on-disk shape changes in a way a
// reader must know about.
const CurrentVersion = 1

// DependencyFileEntry is one `{ path, type? }` entry tracked by the
// project (§4.10). Type is an optional explicit format override, mirroring
// depfile.Format but kept as a bare string so the project file never
// depends on internal/depfile's registry staying in sync.
type DependencyFileEntry struct {
	Path string `yaml:"path"`
	Type string `yaml:"type,omitempty"`
}

// File is the parsed .phylum_project document.
type File struct {
	Version         int                   `yaml:"version"`
	ID              string                `yaml:"id"`
	Name            string                `yaml:"name,omitempty"`
	Organization    string                `yaml:"organization,omitempty"`
	Group           string                `yaml:"group,omitempty"`
	DependencyFiles []DependencyFileEntry `yaml:"depfiles,omitempty"`
}

// NotLinkedError is ProjectError{NotLinked} from §7: no .phylum_project was
// found in dir or any ancestor.
type NotLinkedError struct{ Dir string }

func (e *NotLinkedError) Error() string {
	return fmt.Sprintf("projectfile: no %s found at or above %s", FileName, e.Dir)
}

// Find walks upward from dir looking for .phylum_project, the way most
// project-scoped CLIs resolve their nearest config root.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &NotLinkedError{Dir: dir}
		}
		dir = parent
	}
}

// Load reads and parses .phylum_project at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("projectfile: parsing %s: %w", path, err)
	}
	if f.Version == 0 {
		f.Version = CurrentVersion
	}
	return &f, nil
}

// Save writes f to path atomically (temp file + rename), matching
// internal/config.Store.Save's pattern.
func Save(path string, f *File) error {
	if f.Version == 0 {
		f.Version = CurrentVersion
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".phylum_project-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// AddDependencyFile appends an entry if its path is not already tracked.
func (f *File) AddDependencyFile(path, fileType string) {
	for _, e := range f.DependencyFiles {
		if e.Path == path {
			return
		}
	}
	f.DependencyFiles = append(f.DependencyFiles, DependencyFileEntry{Path: path, Type: fileType})
}

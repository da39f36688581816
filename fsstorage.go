package coursedoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/akeil/coursedoc/internal/fs"
	"github.com/akeil/coursedoc/internal/logging"
)

const projectExt = ".json"

type fsStorage struct {
	Base string
}

// NewFilesystemStorage creates a storage that keeps one JSON file per
// project in the given directory.
//
// Image sections may reference an image file with a "src" attribute;
// the path is relative to the base directory and the file is loaded
// when the project is read.
func NewFilesystemStorage(base string) Storage {
	return &fsStorage{base}
}

func (f *fsStorage) List() ([]string, error) {
	entries, err := os.ReadDir(f.Base)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != projectExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), projectExt))
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fsStorage) ReadProject(id string) (*Project, error) {
	var files projectFile
	err := readJSON(f.Base, id+projectExt, &files)
	if errors.Is(err, os.ErrNotExist) {
		return nil, NewNotFound("no project with id %q", id)
	} else if err != nil {
		return nil, err
	}

	p := &Project{
		Title:    files.Title,
		Sections: make([]Section, len(files.Sections)),
	}
	for i, sf := range files.Sections {
		s := sf.Section
		if sf.Src != "" && len(s.Image) == 0 {
			path := sf.Src
			if !filepath.IsAbs(path) {
				path = filepath.Join(f.Base, path)
			}
			logging.Debug("Load image for section %q from %q", s.ID, path)
			s.Image, err = os.ReadFile(path)
			if err != nil {
				return nil, Wrap(err, "read image for section %d", i)
			}
		}
		p.Sections[i] = s
	}

	return p, nil
}

func (f *fsStorage) WriteProject(id string, p *Project) error {
	files := projectFile{Title: p.Title}
	for _, s := range p.Sections {
		files.Sections = append(files.Sections, sectionFile{Section: s})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	err := enc.Encode(files)
	if err != nil {
		return err
	}

	return fs.WriteFile(filepath.Join(f.Base, id+projectExt), buf.Bytes(), 0644)
}

type projectFile struct {
	Title    string        `json:"title"`
	Sections []sectionFile `json:"sections"`
}

// sectionFile is the on-disk form of a section with an optional file
// reference for the image.
type sectionFile struct {
	Section
	Src string `json:"src,omitempty"`
}

func readJSON(base, filename string, dst interface{}) error {
	path := filepath.Join(base, filename)
	r, err := os.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	dec := json.NewDecoder(r)
	err = dec.Decode(dst)
	if err != nil {
		return err
	}

	return nil
}

package services

import (
	"github.com/samber/lo"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
)

// FileStore is the ordered table of virtual files.
// It is not safe for concurrent use; Session serializes access.
type FileStore struct {
	files []entities.VirtualFile
}

// NewFileStore creates a store holding the given files in order.
// Seed files with a duplicate or empty name are skipped.
func NewFileStore(seed ...entities.VirtualFile) *FileStore {
	s := &FileStore{}
	for _, f := range seed {
		_, _ = s.Add(f.Name, f.Content)
	}
	return s
}

// Add creates a file. The name is normalized first and an empty content
// is replaced by the placeholder document. A name that already exists
// fails with *entities.DuplicateNameError and leaves the store untouched.
func (s *FileStore) Add(name, content string) (entities.VirtualFile, error) {
	name = entities.NormalizeFileName(name)
	if name == "" {
		return entities.VirtualFile{}, entities.ErrEmptyFileName
	}

	if s.Has(name) {
		return entities.VirtualFile{}, &entities.DuplicateNameError{Name: name}
	}

	if content == "" {
		content = entities.DefaultFileContent(name)
	}

	file := entities.VirtualFile{Name: name, Content: content}
	s.files = append(s.files, file)
	return file, nil
}

// Delete removes the file called name. It reports whether a file was removed.
func (s *FileStore) Delete(name string) bool {
	before := len(s.files)
	s.files = lo.Filter(s.files, func(f entities.VirtualFile, _ int) bool {
		return f.Name != name
	})
	return len(s.files) != before
}

// Find looks a file up by exact name
func (s *FileStore) Find(name string) (entities.VirtualFile, bool) {
	return lo.Find(s.files, func(f entities.VirtualFile) bool {
		return f.Name == name
	})
}

// Has reports whether a file called name exists
func (s *FileStore) Has(name string) bool {
	return lo.ContainsBy(s.files, func(f entities.VirtualFile) bool {
		return f.Name == name
	})
}

// List returns a copy of the files in creation order
func (s *FileStore) List() []entities.VirtualFile {
	out := make([]entities.VirtualFile, len(s.files))
	copy(out, s.files)
	return out
}

// Names returns the file names in creation order
func (s *FileStore) Names() []string {
	return lo.Map(s.files, func(f entities.VirtualFile, _ int) string {
		return f.Name
	})
}

// Len returns the number of files
func (s *FileStore) Len() int {
	return len(s.files)
}

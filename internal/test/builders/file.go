package builders

import (
	"fmt"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
)

// FileBuilder helps build VirtualFile entities for testing
type FileBuilder struct {
	file entities.VirtualFile
}

// NewFileBuilder creates a file builder; the name is normalized the way the
// file store normalizes it and the content defaults to the placeholder page
func NewFileBuilder(name string) *FileBuilder {
	name = entities.NormalizeFileName(name)
	return &FileBuilder{
		file: entities.VirtualFile{
			Name:    name,
			Content: entities.DefaultFileContent(name),
		},
	}
}

// WithContent sets the raw content
func (b *FileBuilder) WithContent(content string) *FileBuilder {
	b.file.Content = content
	return b
}

// WithPage wraps body in a minimal HTML document titled title
func (b *FileBuilder) WithPage(title, body string) *FileBuilder {
	b.file.Content = fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head><title>%s</title></head>\n<body>%s</body>\n</html>", title, body)
	return b
}

// Build returns the file
func (b *FileBuilder) Build() entities.VirtualFile {
	return b.file
}

// Files builds placeholder files for each name
func Files(names ...string) []entities.VirtualFile {
	files := make([]entities.VirtualFile, 0, len(names))
	for _, name := range names {
		files = append(files, NewFileBuilder(name).Build())
	}
	return files
}

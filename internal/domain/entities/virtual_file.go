package entities

import (
	"fmt"
	"strings"
)

// VirtualFile is an in-memory document served by the simulated server
type VirtualFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Size returns the content length in bytes
func (f VirtualFile) Size() int {
	return len(f.Content)
}

// Kind returns the file kind derived from its name
func (f VirtualFile) Kind() FileKind {
	return FileKindOf(f.Name)
}

// FileKind is the coarse type of a virtual file, used for icons and content types
type FileKind int

const (
	FileKindOther FileKind = iota
	FileKindHTML
	FileKindCSS
	FileKindImage
)

// String returns the kind name
func (k FileKind) String() string {
	switch k {
	case FileKindHTML:
		return "html"
	case FileKindCSS:
		return "css"
	case FileKindImage:
		return "image"
	default:
		return "other"
	}
}

// FileKindOf derives the kind from a file name suffix
func FileKindOf(name string) FileKind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".html"):
		return FileKindHTML
	case strings.HasSuffix(lower, ".css"):
		return FileKindCSS
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"), strings.HasSuffix(lower, ".png"):
		return FileKindImage
	default:
		return FileKindOther
	}
}

// ContentTypeOf returns the MIME type a real server would send for name
func ContentTypeOf(name string) string {
	lower := strings.ToLower(name)
	switch FileKindOf(lower) {
	case FileKindHTML:
		return "text/html"
	case FileKindCSS:
		return "text/css"
	case FileKindImage:
		if strings.HasSuffix(lower, ".png") {
			return "image/png"
		}
		return "image/jpeg"
	default:
		return "text/plain"
	}
}

// DefaultExtension is appended to names that carry no extension
const DefaultExtension = ".html"

// NormalizeFileName trims name and appends DefaultExtension when it has no dot
func NormalizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if !strings.Contains(name, ".") {
		name += DefaultExtension
	}
	return name
}

// DefaultFileContent is the placeholder document for a file created without content
func DefaultFileContent(name string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>%[1]s</title>
</head>
<body>
    <h1>Hello from %[1]s</h1>
    <p>This is a new file created in the Mini Web Server.</p>
</body>
</html>`, name)
}

// Well-known file names
const (
	IndexFileName    = "index.html"
	NotFoundFileName = "404.html"
)

const pageStyle = `
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; margin: 0; padding: 20px; max-width: 800px; margin: 0 auto; }
        h1 { color: %s; }
        .container { border: 1px solid #ddd; padding: 20px; border-radius: 5px; }
    </style>`

func seedPage(title, color, body string) string {
	return `<!DOCTYPE html>
<html>
<head>
    <title>` + title + `</title>` + fmt.Sprintf(pageStyle, color) + `
</head>
<body>
    <div class="container">
` + body + `
    </div>
</body>
</html>`
}

// SeedFiles returns the documents every new session starts with
func SeedFiles() []VirtualFile {
	return []VirtualFile{
		{
			Name: IndexFileName,
			Content: seedPage("Welcome to Mini Web Server", "#0066cc", `        <h1>Welcome to Mini Web Server!</h1>
        <p>This is a simple HTTP server implemented with Python socket programming.</p>
        <p>It demonstrates basic concepts of web servers and network communication.</p>
        <hr>
        <p><strong>Server Status:</strong> Running</p>
        <p><em>Created for educational purposes</em></p>`),
		},
		{
			Name: "about.html",
			Content: seedPage("About Mini Web Server", "#0066cc", `        <h1>About This Project</h1>
        <p>The Mini Web Server is a simple HTTP server implemented with Python socket programming.</p>
        <p>Features include:</p>
        <ul>
            <li>Static HTML file serving</li>
            <li>Basic HTTP request handling</li>
            <li>Error handling (404 Not Found)</li>
            <li>Multi-threaded client handling</li>
        </ul>
        <p><a href="index.html">Back to Home</a></p>`),
		},
		{
			Name: NotFoundFileName,
			Content: seedPage("404 Not Found", "#cc0000", `        <h1>404 Not Found</h1>
        <p>The requested resource could not be found on this server.</p>
        <p>Please check the URL and try again.</p>
        <p><a href="index.html">Return to Homepage</a></p>`),
		},
	}
}

// Preview documents rendered by the simulator itself
const (
	NotFoundFallbackHTML = "<h1>404 Not Found</h1>"

	NotRunningHTML = `<div style="display:flex;justify-content:center;align-items:center;height:100vh;color:#666;font-family:sans-serif;">
        <div style="text-align:center;">
          <h2>Server is not running</h2>
          <p>Start the server to see the preview</p>
        </div>
      </div>`
)

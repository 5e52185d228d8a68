package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var labelCaser = cases.Title(language.English)

// LogView is a log entry prepared for display
type LogView struct {
	Seq         int    `json:"seq"`
	Time        string `json:"time"`
	Kind        string `json:"kind"`
	Label       string `json:"label"`
	Message     string `json:"message"`
	StatusCode  string `json:"status_code,omitempty"`
	StatusClass string `json:"status_class,omitempty"`
}

func newLogView(e entities.LogEntry) LogView {
	v := LogView{
		Seq:     e.Seq,
		Time:    e.Clock(),
		Kind:    e.Kind.String(),
		Label:   kindLabel(e.Kind),
		Message: e.Message,
	}
	if status, ok := e.Status(); ok {
		v.StatusCode = status.Code
		v.StatusClass = string(status.Class)
	}
	return v
}

// kindLabel renders a log kind as a title-cased badge label
func kindLabel(k entities.LogKind) string {
	return labelCaser.String(k.String())
}

// fileIcon picks the explorer icon for a file kind
func fileIcon(k entities.FileKind) string {
	switch k {
	case entities.FileKindHTML:
		return "📄"
	case entities.FileKindCSS:
		return "🎨"
	case entities.FileKindImage:
		return "🖼️"
	default:
		return "📁"
	}
}

type fileView struct {
	Name string
	Icon string
	Size int
}

type indexPage struct {
	Version string
	Running bool
	Port    int
	Address string
	MinPort int
	MaxPort int
	Files   []fileView
	Logs    []LogView
	Preview string
	Kinds   []string
}

type guidePage struct {
	Version string
	Body    template.HTML
}

// handleIndex renders the control UI
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()

	page := indexPage{
		Version: s.version,
		Running: snap.State.Running,
		Port:    snap.State.Port,
		Address: snap.State.Address(),
		MinPort: entities.MinPort,
		MaxPort: entities.MaxPort,
		Preview: snap.Preview,
	}
	for _, f := range snap.Files {
		page.Files = append(page.Files, fileView{Name: f.Name, Icon: fileIcon(f.Kind()), Size: f.Size()})
	}
	for _, e := range snap.Logs {
		page.Logs = append(page.Logs, newLogView(e))
	}
	for _, k := range entities.LogKinds() {
		page.Kinds = append(page.Kinds, kindLabel(k))
	}

	s.renderTemplate(w, "index.html", page)
}

// handleGuide renders the embedded usage guide
func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	body, err := s.guide()
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "guide.html", guidePage{
		Version: s.version,
		// Rendered from an embedded document we ship, not from user input
		Body: template.HTML(body), // #nosec G203
	})
}

func (s *Server) guide() ([]byte, error) {
	s.guideOnce.Do(func() {
		s.guideHTML, s.guideErr = renderGuide()
	})
	return s.guideHTML, s.guideErr
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("Failed to write %s: %v", name, err)
	}
}

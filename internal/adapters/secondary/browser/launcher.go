// Package browser opens the control UI in a local browser.
package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/samber/lo"

	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// ErrNoBrowser is returned when no candidate browser executable is found
var ErrNoBrowser = errors.New("no supported browsers found on this system")

// Launcher implements ports.BrowserLauncher
type Launcher struct {
	browsers  []Browser
	preferred string
	lookPath  func(string) (string, error)
	start     func(name string, args ...string) error
}

// Browser is a launch recipe for one browser on the current platform
type Browser struct {
	Name    string
	Command string
	Args    func(url string) []string
}

// NewLauncher creates a launcher. preferred names a browser ("chrome",
// "firefox", ...) to try first; "" or "default" keeps the platform order.
func NewLauncher(preferred string) *Launcher {
	return &Launcher{
		browsers:  platformBrowsers(runtime.GOOS),
		preferred: preferred,
		lookPath:  exec.LookPath,
		start:     startDetached,
	}
}

// Launch opens url unless noOpen is set
func (l *Launcher) Launch(url string, noOpen bool) error {
	if noOpen {
		return nil
	}

	browser, err := l.selectBrowser()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	if err := l.start(browser.Command, browser.Args(url)...); err != nil {
		return fmt.Errorf("launching %s: %w", browser.Name, err)
	}
	return nil
}

// Detect returns the name of the browser Launch would use
func (l *Launcher) Detect() (string, error) {
	browser, err := l.selectBrowser()
	if err != nil {
		return "", err
	}
	return browser.Name, nil
}

func (l *Launcher) selectBrowser() (*Browser, error) {
	candidates := l.ordered()
	for i := range candidates {
		if _, err := l.lookPath(candidates[i].Command); err == nil {
			return &candidates[i], nil
		}
	}
	return nil, ErrNoBrowser
}

// ordered moves the preferred browser, if any, to the front
func (l *Launcher) ordered() []Browser {
	if l.preferred == "" || strings.EqualFold(l.preferred, "default") {
		return l.browsers
	}

	preferred := func(b Browser, _ int) bool { return strings.EqualFold(b.Name, l.preferred) }
	return append(lo.Filter(l.browsers, preferred), lo.Reject(l.browsers, preferred)...)
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - command comes from the fixed platform table
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func urlArg(url string) []string { return []string{url} }

func platformBrowsers(goos string) []Browser {
	switch goos {
	case "darwin":
		return []Browser{
			{Name: "Default", Command: "open", Args: urlArg},
			{Name: "Chrome", Command: "open", Args: func(url string) []string { return []string{"-a", "Google Chrome", url} }},
			{Name: "Safari", Command: "open", Args: func(url string) []string { return []string{"-a", "Safari", url} }},
			{Name: "Firefox", Command: "open", Args: func(url string) []string { return []string{"-a", "Firefox", url} }},
		}
	case "linux":
		return []Browser{
			{Name: "Default", Command: "xdg-open", Args: urlArg},
			{Name: "Chrome", Command: "google-chrome", Args: urlArg},
			{Name: "Firefox", Command: "firefox", Args: urlArg},
		}
	case "windows":
		return []Browser{
			{Name: "Default", Command: "cmd", Args: func(url string) []string { return []string{"/c", "start", url} }},
			{Name: "Chrome", Command: "cmd", Args: func(url string) []string { return []string{"/c", "start", "chrome", url} }},
			{Name: "Edge", Command: "cmd", Args: func(url string) []string { return []string{"/c", "start", "msedge", url} }},
		}
	default:
		return nil
	}
}

// Ensure Launcher implements ports.BrowserLauncher
var _ ports.BrowserLauncher = (*Launcher)(nil)

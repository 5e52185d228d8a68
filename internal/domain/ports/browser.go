package ports

// BrowserLauncher opens the control UI for the user
type BrowserLauncher interface {
	// Launch opens url in a browser. With noOpen set it does nothing,
	// so callers can pass the auto_open setting straight through.
	Launch(url string, noOpen bool) error

	// Detect returns the name of the browser Launch would use
	Detect() (string, error)
}

package entities

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// LogKind classifies a simulated server log entry
type LogKind int

const (
	LogKindInfo LogKind = iota
	LogKindError
	LogKindSuccess
	LogKindRequest
	LogKindResponse
)

var logKindNames = map[LogKind]string{
	LogKindInfo:     "info",
	LogKindError:    "error",
	LogKindSuccess:  "success",
	LogKindRequest:  "request",
	LogKindResponse: "response",
}

// LogKinds lists every kind in display order
func LogKinds() []LogKind {
	return []LogKind{LogKindInfo, LogKindError, LogKindSuccess, LogKindRequest, LogKindResponse}
}

// String returns the lowercase kind name
func (k LogKind) String() string {
	if name, ok := logKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether k is one of the known kinds
func (k LogKind) Valid() bool {
	_, ok := logKindNames[k]
	return ok
}

// ParseLogKind converts a kind name into a LogKind
func ParseLogKind(s string) (LogKind, error) {
	for kind, name := range logKindNames {
		if name == s {
			return kind, nil
		}
	}
	return LogKindInfo, fmt.Errorf("unknown log kind: %q", s)
}

// MarshalJSON encodes the kind as its name
func (k LogKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid log kind: %d", int(k))
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name
func (k *LogKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLogKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// LogEntry is a single line of the simulated server log.
// Entries are values; once appended to a stream they are never modified.
type LogEntry struct {
	// Seq numbers entries from 1 since the last clear and never changes.
	// In an uncapped stream it is the entry's 1-based position; a capped
	// stream keeps the ids of the entries it still holds.
	Seq       int       `json:"seq"`
	Kind      LogKind   `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ClockFormat is the local wall-clock layout used when displaying entries
const ClockFormat = "15:04:05"

// Clock returns the entry timestamp as a local time string
func (e LogEntry) Clock() string {
	return e.Timestamp.Local().Format(ClockFormat)
}

// Status returns the HTTP status code carried by a response entry, if any
func (e LogEntry) Status() (StatusCode, bool) {
	if e.Kind != LogKindResponse {
		return StatusCode{}, false
	}
	return ParseStatus(e.Message)
}

// StatusClass is the display class of an HTTP status code
type StatusClass string

const (
	StatusClassSuccess     StatusClass = "success"
	StatusClassRedirect    StatusClass = "redirect"
	StatusClassClientError StatusClass = "client-error"
	StatusClassNeutral     StatusClass = "neutral"
)

// StatusCode is a three digit status code found in a response status line
type StatusCode struct {
	Code  string
	Class StatusClass
}

var statusLinePattern = regexp.MustCompile(`HTTP/1\.1 (\d{3})`)

// ParseStatus finds the status line in message and classifies its code
func ParseStatus(message string) (StatusCode, bool) {
	m := statusLinePattern.FindStringSubmatch(message)
	if m == nil {
		return StatusCode{}, false
	}
	return StatusCode{Code: m[1], Class: ClassifyStatus(m[1])}, true
}

// ClassifyStatus maps a status code to its display class by leading digit
func ClassifyStatus(code string) StatusClass {
	if code == "" {
		return StatusClassNeutral
	}
	switch code[0] {
	case '2':
		return StatusClassSuccess
	case '3':
		return StatusClassRedirect
	case '4':
		return StatusClassClientError
	default:
		return StatusClassNeutral
	}
}

package entities

import (
	"errors"
	"fmt"
)

// Simulated port bounds, inclusive
const (
	MinPort     = 1024
	MaxPort     = 65535
	DefaultPort = 8080
)

var (
	// ErrInvalidPort is returned when a port falls outside [MinPort, MaxPort]
	ErrInvalidPort = errors.New("invalid port")

	// ErrDuplicateName is returned when a file with the same name already exists
	ErrDuplicateName = errors.New("duplicate file name")

	// ErrEmptyFileName is returned when a file is created without a name
	ErrEmptyFileName = errors.New("file name cannot be empty")

	// ErrPortLocked is returned when the port is changed while the server runs
	ErrPortLocked = errors.New("port cannot change while the server is running")
)

// InvalidPortError carries the rejected port
type InvalidPortError struct {
	Port int
}

func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("Please enter a valid port number between %d and %d (got %d)", MinPort, MaxPort, e.Port)
}

func (e *InvalidPortError) Unwrap() error { return ErrInvalidPort }

// DuplicateNameError carries the name that already exists
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("File %s already exists", e.Name)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// ValidatePort checks that port lies within the simulated port range
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return &InvalidPortError{Port: port}
	}
	return nil
}

// ServerState is a snapshot of the simulated server
type ServerState struct {
	Running bool `json:"running"`
	Port    int  `json:"port"`
}

// Address returns the address the simulated server pretends to listen on
func (s ServerState) Address() string {
	return fmt.Sprintf("http://localhost:%d", s.Port)
}

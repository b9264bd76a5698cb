package core

import "errors"

var (
	// ErrNotFound is returned when a prompt or MCP configuration does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write collides with an existing unique name.
	ErrConflict = errors.New("record conflicts with an existing record")
)

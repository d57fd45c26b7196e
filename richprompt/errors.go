package richprompt

import "errors"

// Sentinel errors shared by the core and its collaborators.
var (
	// ErrOutOfRange is reported when an offset or caret lies outside the text it refers to.
	// Callers clamp and continue; it is never fatal.
	ErrOutOfRange = errors.New("offset out of range")
	// ErrCollaboratorUnavailable wraps failures of external name-list or preview services.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	// ErrNoPreview is returned when a target has no preview to show.
	ErrNoPreview = errors.New("no preview available")
	// ErrDirectoryTraversal is returned when a wildcard path tries to leave its directory.
	ErrDirectoryTraversal = errors.New("directory traversal not allowed")
	// ErrFileNotFound is returned when a wildcard file doesn't exist.
	ErrFileNotFound = errors.New("file not found")
)

package task

import "errors"

var (
	// ErrNotFound is returned when a task does not exist for the requesting
	// user. A task owned by another user is indistinguishable from an
	// absent one, so ownership is never leaked.
	ErrNotFound = errors.New("task not found")
	// ErrEmptyTitle is returned when a task title is missing.
	ErrEmptyTitle = errors.New("title is required")
	// ErrTitleTooLong is returned when a title exceeds 200 characters.
	ErrTitleTooLong = errors.New("title must be at most 200 characters")
	// ErrDescriptionTooLong is returned when a description exceeds 1000 characters.
	ErrDescriptionTooLong = errors.New("description must be at most 1000 characters")
	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrInvalidPriority is returned for an unknown priority value.
	ErrInvalidPriority = errors.New("invalid task priority")
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
)

package room

import "errors"

var (
	// Admission errors: fatal to the connection attempt.
	ErrRoomFull      = errors.New("room is at capacity")
	ErrOriginLimited = errors.New("too many connections from this address")

	// Authentication errors: the connection stays open for a retry.
	ErrInvalidCredentials = errors.New("invalid room password")
	ErrNameTaken          = errors.New("display name already in use")
	ErrAlreadyJoined      = errors.New("connection already joined")

	// Per-message errors: room state is untouched.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrMessageNotFound  = errors.New("message not found")
	ErrNotOwner         = errors.New("only the author can delete this message")
)

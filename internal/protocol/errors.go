package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader is returned when the PBCH header cannot be decoded.
	ErrMalformedHeader = errors.New("malformed PBCH header")
	// ErrUserNotFound is matched by *UserNotFoundError.
	ErrUserNotFound = errors.New("user not found")
	// ErrIdentMismatch is returned when a grant names a different user than
	// the descriptor that located it.
	ErrIdentMismatch = errors.New("grant user ident mismatch")
	// ErrCRCMismatch is returned when a payload fails its CRC check.
	ErrCRCMismatch = errors.New("CRC mismatch")
	// ErrOverlap is returned by the frame builder when two allocations share
	// resource elements.
	ErrOverlap = errors.New("resource allocation overlap")
	// ErrPayloadTooLarge is returned by the frame builder when data does not
	// fit the granted resource blocks.
	ErrPayloadTooLarge = errors.New("payload exceeds allocation")
)

// UserNotFoundError reports a user identity absent from the PBCH.
type UserNotFoundError struct {
	Ident     int
	UserCount int
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %d not found among %d PBCH descriptors", e.Ident, e.UserCount)
}

// Is makes errors.Is(err, ErrUserNotFound) hold.
func (e *UserNotFoundError) Is(target error) bool {
	return target == ErrUserNotFound
}

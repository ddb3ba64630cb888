package model

import "errors"

// ErrInvalidTransition is returned when a claim state change is attempted
// from a terminal or mismatched status. The attempt must not mutate state.
var ErrInvalidTransition = errors.New("invalid claim transition")

// ErrInvalidAttachment is returned when an uploaded image violates the
// size or format constraints.
var ErrInvalidAttachment = errors.New("invalid attachment")

package app

import "errors"

var (
	// ErrInvalidCredentials is returned when the supplied credentials do not match.
	// This message is intended to be shown to end users and should not enable account enumeration.
	ErrInvalidCredentials = errors.New("Incorrect email address or password")

	ErrEmailAndPasswordRequired = errors.New("email and password required")
	ErrEmailAlreadyExists       = errors.New("email already exists")

	ErrTitleAndLinkRequired = errors.New("title and link required")

	// ErrContentNotFound covers both a missing row and a row owned by
	// another user, so delete responses don't leak existence.
	ErrContentNotFound = errors.New("content not found")

	ErrShareLinkNotFound = errors.New("share link not found")
)

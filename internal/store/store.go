package store

import (
	"errors"

	"synapse/pkg/domain"
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint
// (user email, share-link owner, or share-link hash).
var ErrDuplicate = errors.New("duplicate record")

// Store defines persistence operations for users, content, and share links.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// content
	SaveContent(domain.Content) error
	ListContentByOwner(ownerID string) ([]domain.Content, error)
	// DeleteContentByOwner removes the row only when both id and owner
	// match. It reports whether a row was deleted.
	DeleteContentByOwner(ownerID, contentID string) (bool, error)

	// share links
	GetShareLinkByOwner(ownerID string) (domain.ShareLink, bool, error)
	GetShareLinkByHash(hash string) (domain.ShareLink, bool, error)
	CreateShareLink(domain.ShareLink) error
	DeleteShareLinkByOwner(ownerID string) (bool, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}

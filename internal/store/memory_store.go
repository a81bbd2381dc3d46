package store

import (
	"sync"

	"synapse/pkg/domain"
)

// MemoryStore keeps all records in-process. Used in tests and for local
// development without Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User // key: user ID
	email    map[string]string      // email -> user ID
	content  map[string]domain.Content
	order    []string               // content IDs in insertion order
	linkByID map[string]domain.ShareLink // key: owner ID
	hashes   map[string]string           // hash -> owner ID
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		email:    make(map[string]string),
		content:  make(map[string]domain.Content),
		linkByID: make(map[string]domain.ShareLink),
		hashes:   make(map[string]string),
	}
}

// SaveUser registers a user. A conflicting email yields ErrDuplicate.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.email[u.Email]; ok {
		return ErrDuplicate
	}
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.email[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// SaveContent stores a content item and tracks insertion order.
func (m *MemoryStore) SaveContent(c domain.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.content[c.ID]; !exists {
		m.order = append(m.order, c.ID)
	}
	m.content[c.ID] = c
	return nil
}

// ListContentByOwner returns the owner's content in insertion order.
func (m *MemoryStore) ListContentByOwner(ownerID string) ([]domain.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Content, 0, len(m.order))
	for _, id := range m.order {
		if c, ok := m.content[id]; ok && c.OwnerID == ownerID {
			res = append(res, c)
		}
	}
	return res, nil
}

// DeleteContentByOwner deletes only when id and owner both match.
func (m *MemoryStore) DeleteContentByOwner(ownerID, contentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.content[contentID]
	if !ok || c.OwnerID != ownerID {
		return false, nil
	}
	delete(m.content, contentID)
	filtered := m.order[:0]
	for _, id := range m.order {
		if id != contentID {
			filtered = append(filtered, id)
		}
	}
	m.order = filtered
	return true, nil
}

// GetShareLinkByOwner returns the owner's share link, if any.
func (m *MemoryStore) GetShareLinkByOwner(ownerID string) (domain.ShareLink, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.linkByID[ownerID]
	return l, ok, nil
}

// GetShareLinkByHash resolves a public hash to its share link.
func (m *MemoryStore) GetShareLinkByHash(hash string) (domain.ShareLink, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ownerID, ok := m.hashes[hash]
	if !ok {
		return domain.ShareLink{}, false, nil
	}
	l, exists := m.linkByID[ownerID]
	return l, exists, nil
}

// CreateShareLink inserts a share link, enforcing both uniqueness
// constraints the same way the Postgres schema does.
func (m *MemoryStore) CreateShareLink(l domain.ShareLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.linkByID[l.OwnerID]; ok {
		return ErrDuplicate
	}
	if _, ok := m.hashes[l.Hash]; ok {
		return ErrDuplicate
	}
	m.linkByID[l.OwnerID] = l
	m.hashes[l.Hash] = l.OwnerID
	return nil
}

// DeleteShareLinkByOwner removes the owner's link, reporting whether a
// row existed.
func (m *MemoryStore) DeleteShareLinkByOwner(ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.linkByID[ownerID]
	if !ok {
		return false, nil
	}
	delete(m.linkByID, ownerID)
	delete(m.hashes, l.Hash)
	return true, nil
}

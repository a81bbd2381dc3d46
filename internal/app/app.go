package app

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"synapse/internal/store"
	"synapse/pkg/auth"
	"synapse/pkg/domain"
)

const (
	shareHashAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	shareHashLength   = 10
	// Collisions over a 62^10 space are effectively impossible; the bound
	// exists so a broken store cannot loop forever.
	maxShareHashAttempts = 5
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
	JWTSecret     string
	Store         store.Store
	Sessions      store.SessionStore
}

// App is the core application service wiring together storage, sessions,
// and bookmarking logic.
type App struct {
	store    store.Store
	sessions store.SessionStore
}

// New constructs the application with database storage and session management.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch {
		case cfg.JWTSecret != "":
			sessionStore = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
		case cfg.RedisAddr != "":
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		default:
			return nil, fmt.Errorf("session store required (jwtSecret or redisAddr)")
		}
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
	}, nil
}

// SignUp registers a new user and issues a session token.
func (a *App) SignUp(name, email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return domain.User{}, "", ErrEmailAndPasswordRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", err
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailAlreadyExists
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return domain.User{}, "", ErrEmailAlreadyExists
		}
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// Logout removes a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// AddContent saves a new bookmark for the owner. Title and link are
// required; type and tags are optional.
func (a *App) AddContent(owner domain.User, title, link, description string, ctype domain.ContentType, tags []string) (domain.Content, error) {
	title = strings.TrimSpace(title)
	link = strings.TrimSpace(link)
	if title == "" || link == "" {
		return domain.Content{}, ErrTitleAndLinkRequired
	}
	content := domain.Content{
		ID:          uuid.NewString(),
		OwnerID:     owner.ID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Link:        link,
		Type:        ctype,
		Tags:        tags,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.SaveContent(content); err != nil {
		return domain.Content{}, fmt.Errorf("save content: %w", err)
	}
	return content, nil
}

// ListContent returns the owner's collection with the owner projection
// attached to each item.
func (a *App) ListContent(owner domain.User) ([]domain.Content, error) {
	items, err := a.store.ListContentByOwner(owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	attachOwner(items, owner)
	return items, nil
}

// DeleteContent removes a bookmark. The row must exist and belong to the
// caller; anything else is ErrContentNotFound.
func (a *App) DeleteContent(owner domain.User, contentID string) error {
	deleted, err := a.store.DeleteContentByOwner(owner.ID, contentID)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if !deleted {
		return ErrContentNotFound
	}
	return nil
}

// EnableSharing publishes the owner's collection under an unguessable
// hash. Repeat calls return the existing link unchanged; a new hash is
// minted only when no link exists. The returned bool reports whether a
// link was created by this call.
func (a *App) EnableSharing(owner domain.User) (domain.ShareLink, bool, error) {
	existing, ok, err := a.store.GetShareLinkByOwner(owner.ID)
	if err != nil {
		return domain.ShareLink{}, false, fmt.Errorf("find share link: %w", err)
	}
	if ok {
		return existing, false, nil
	}

	for attempt := 0; attempt < maxShareHashAttempts; attempt++ {
		hash, err := generateShareHash(shareHashLength)
		if err != nil {
			return domain.ShareLink{}, false, fmt.Errorf("generate share hash: %w", err)
		}
		link := domain.ShareLink{
			ID:        uuid.NewString(),
			OwnerID:   owner.ID,
			Hash:      hash,
			CreatedAt: time.Now().UTC(),
		}
		err = a.store.CreateShareLink(link)
		if err == nil {
			return link, true, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return domain.ShareLink{}, false, fmt.Errorf("create share link: %w", err)
		}
		// Either a concurrent enable won the owner-unique constraint, in
		// which case the winner's token is the right answer, or the hash
		// collided and a fresh one is needed.
		winner, found, findErr := a.store.GetShareLinkByOwner(owner.ID)
		if findErr != nil {
			return domain.ShareLink{}, false, fmt.Errorf("find share link after conflict: %w", findErr)
		}
		if found {
			return winner, false, nil
		}
	}
	return domain.ShareLink{}, false, fmt.Errorf("could not allocate a unique share hash after %d attempts", maxShareHashAttempts)
}

// DisableSharing withdraws the owner's share link. A missing link is a
// success, reported as removed=false.
func (a *App) DisableSharing(owner domain.User) (bool, error) {
	removed, err := a.store.DeleteShareLinkByOwner(owner.ID)
	if err != nil {
		return false, fmt.Errorf("delete share link: %w", err)
	}
	if !removed {
		slog.Info("no share link found to remove", "user_id", owner.ID)
	}
	return removed, nil
}

// ResolveShareLink maps a public hash to the owning user's display name
// and full collection. Unknown hashes yield ErrShareLinkNotFound.
func (a *App) ResolveShareLink(hash string) (string, []domain.Content, error) {
	link, ok, err := a.store.GetShareLinkByHash(hash)
	if err != nil {
		return "", nil, fmt.Errorf("find share link: %w", err)
	}
	if !ok {
		return "", nil, ErrShareLinkNotFound
	}

	var (
		owner      domain.User
		ownerFound bool
		items      []domain.Content
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		owner, ownerFound, err = a.store.GetUserByID(link.OwnerID)
		if err != nil {
			return fmt.Errorf("fetch owner: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = a.store.ListContentByOwner(link.OwnerID)
		if err != nil {
			return fmt.Errorf("list shared content: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", nil, err
	}
	if !ownerFound {
		// Dangling link: the owner row is gone but the link survived.
		return "", nil, ErrShareLinkNotFound
	}

	attachOwner(items, owner)
	username := owner.Name
	if username == "" {
		username = owner.Email
	}
	return username, items, nil
}

func attachOwner(items []domain.Content, owner domain.User) {
	projection := &domain.Owner{Name: owner.Name, Email: owner.Email}
	for i := range items {
		items[i].User = projection
	}
}

func generateShareHash(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = shareHashAlphabet[int(b)%len(shareHashAlphabet)]
	}
	return string(out), nil
}

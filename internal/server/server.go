package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"synapse/internal/app"
	"synapse/internal/filter"
	"synapse/internal/linkmeta"
	"synapse/internal/ratelimit"
	"synapse/internal/util"
	"synapse/pkg/auth"
	"synapse/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                      *app.App
	Titles                   *linkmeta.Fetcher
	RedisAddr                string
	RedisPassword            string
	SignupRateLimitPerMinute int
	LoginRateLimitPerMinute  int
	TrustedProxies           *util.TrustedProxies
	CORSOrigin               string
}

// Server exposes the HTTP endpoints.
type Server struct {
	app           *app.App
	titles        *linkmeta.Fetcher
	mux           *http.ServeMux
	trusted       *util.TrustedProxies
	corsOrigin    string
	signupLimiter *ratelimit.FixedWindowLimiter
	loginLimiter  *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	signupLimit := cfg.SignupRateLimitPerMinute
	if signupLimit <= 0 {
		signupLimit = 5
	}
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	rateWindow := time.Minute
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		prefix := "synapse:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, rateWindow)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	signupLimiter, err := newLimiter("signup", signupLimit)
	if err != nil {
		return nil, err
	}
	loginLimiter, err := newLimiter("login", loginLimit)
	if err != nil {
		return nil, err
	}
	titles := cfg.Titles
	if titles == nil {
		titles = linkmeta.NewFetcher()
	}
	s := &Server{
		app:           cfg.App,
		titles:        titles,
		mux:           http.NewServeMux(),
		trusted:       cfg.TrustedProxies,
		corsOrigin:    cfg.CORSOrigin,
		signupLimiter: signupLimiter,
		loginLimiter:  loginLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler wrapped in the middleware stack.
func (s *Server) Router() http.Handler {
	handler := util.WithRequestLog(s.mux)
	handler = util.WithRequestID(handler)
	handler = util.WithCORS(s.corsOrigin, handler)
	return util.WithSecurityHeaders(handler)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.Handle("/api/users/me", s.authenticated(s.handleMe))

	// content (auth required)
	s.mux.Handle("/api/v1/content", s.authenticated(s.handleContent))
	s.mux.Handle("/api/v1/linkmeta", s.authenticated(s.handleLinkMeta))

	// sharing
	s.mux.Handle("/api/v1/brain/share", s.authenticated(s.handleShare))
	s.mux.HandleFunc("/api/v1/brain/share/", s.handleShareResolve)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			s.audit(r, "synapse.authorize", "fail")
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	return s.app.UserFromToken(token)
}

// auth handlers
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.signupLimiter, "too many signup attempts") {
		s.audit(r, "synapse.signup", "rate_limited")
		return
	}
	var req signupRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.audit(r, "synapse.signup", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.SignUp(req.Name, req.Email, req.Password)
	if err != nil {
		s.audit(r, "synapse.signup", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "synapse.signup", "success", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "synapse.login", "rate_limited")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.audit(r, "synapse.login", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		s.audit(r, "synapse.login", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "synapse.login", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err := s.app.Logout(token); err != nil {
		writeAppError(w, err)
		return
	}
	s.audit(r, "synapse.logout", "success")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// /api/v1/content
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodPost:
		s.handleAddContent(w, r, user)
	case http.MethodGet:
		s.handleListContent(w, r, user)
	case http.MethodDelete:
		s.handleDeleteContent(w, r, user)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleAddContent(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req contentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, err := s.app.AddContent(user, req.Title, req.Link, req.Description, domain.ContentType(req.Type), req.Tags); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Content Added"})
}

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request, user domain.User) {
	category, ok := filter.ParseCategory(r.URL.Query().Get("filter"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid filter")
		return
	}
	items, err := s.app.ListContent(user)
	if err != nil {
		writeAppError(w, err)
		return
	}
	// Counts always reflect the full collection, independent of the
	// applied filter and query.
	counts := filter.Counts(items)
	visible := filter.Apply(items, category, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, contentListResponse{Content: visible, Counts: counts})
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "Content ID is required")
		return
	}
	if err := s.app.DeleteContent(user, id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Content Deleted"})
}

// /api/v1/linkmeta
func (s *Server) handleLinkMeta(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	title, err := s.titles.Title(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		if errors.Is(err, linkmeta.ErrInvalidURL) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "could not fetch page title")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": title})
}

// /api/v1/brain/share
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req shareRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !req.Share {
		removed, err := s.app.DisableSharing(user)
		if err != nil {
			writeAppError(w, err)
			return
		}
		message := "No link found to remove"
		if removed {
			message = "Link removed successfully"
		}
		s.audit(r, "synapse.share.disable", "success", "user_id", user.ID)
		writeJSON(w, http.StatusOK, map[string]string{"message": message})
		return
	}

	link, created, err := s.app.EnableSharing(user)
	if err != nil {
		writeAppError(w, err)
		return
	}
	message := "Link already exists"
	if created {
		message = "Link created"
	}
	s.audit(r, "synapse.share.enable", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, shareResponse{Message: message, Link: "/share/" + link.Hash})
}

// /api/v1/brain/share/{token} — public, no auth.
func (s *Server) handleShareResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	token := strings.TrimPrefix(r.URL.Path, "/api/v1/brain/share/")
	if token == "" || strings.Contains(token, "/") {
		http.NotFound(w, r)
		return
	}
	username, items, err := s.app.ResolveShareLink(token)
	if err != nil {
		if errors.Is(err, app.ErrShareLinkNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Link not found"})
			return
		}
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sharedBrainResponse{Username: username, Content: items})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type contentRequest struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags"`
}

type contentListResponse struct {
	Content []domain.Content     `json:"content"`
	Counts  domain.ContentCounts `json:"counts"`
}

type shareRequest struct {
	Share bool `json:"share"`
}

type shareResponse struct {
	Message string `json:"message"`
	Link    string `json:"link"`
}

type sharedBrainResponse struct {
	Username string           `json:"username"`
	Content  []domain.Content `json:"content"`
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps application sentinels onto HTTP statuses. Anything
// unclassified is a store failure surfaced verbatim as a 500.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrEmailAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrEmailAndPasswordRequired),
		errors.Is(err, app.ErrTitleAndLinkRequired),
		errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrContentNotFound):
		writeError(w, http.StatusNotFound, "Content not found or you don't have permission to delete it")
	case errors.Is(err, app.ErrShareLinkNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trusted),
		"request_id", util.RequestIDFromRequest(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, s.trusted)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

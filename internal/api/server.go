package api

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gracechapel/scripture-assistant/internal/service"
	"github.com/gracechapel/scripture-assistant/internal/session"
	"github.com/gracechapel/scripture-assistant/internal/storage"
)

// Server holds API dependencies and the per-user session managers.
type Server struct {
	authService *service.AuthService
	store       storage.Store
	completer   session.Completer
	logger      *logrus.Logger

	mu       sync.Mutex
	managers map[string]*session.Manager
}

// NewServer creates a new API server.
func NewServer(authService *service.AuthService, store storage.Store, completer session.Completer, logger *logrus.Logger) *Server {
	return &Server{
		authService: authService,
		store:       store,
		completer:   completer,
		logger:      logger,
		managers:    make(map[string]*session.Manager),
	}
}

// managerFor returns the authenticated user's session manager, creating it
// (and restoring the user's persisted state) on first use.
func (s *Server) managerFor(ctx context.Context, userID string) *session.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.managers[userID]; ok {
		return m
	}
	m := session.NewManager(ctx, session.Options{
		Store:     s.store,
		Completer: s.completer,
		Logger:    s.logger,
		Scope:     userID,
	})
	s.managers[userID] = m
	return m
}

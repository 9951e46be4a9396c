// Package admin is the client side of the admin dashboard: session handling,
// listings, configuration and exports.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/xteampro/funnel/internal/api"
	"github.com/xteampro/funnel/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotAuthenticated is returned by every call made without a token
	ErrNotAuthenticated = errors.New("not authenticated: run admin login first")

	// ErrSessionExpired is returned when the backend rejects the token
	ErrSessionExpired = errors.New("admin session expired, please log in again")
)

// Backend is the subset of the API client the admin dashboard uses
type Backend interface {
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
	Dashboard(ctx context.Context, token string) (*models.DashboardStats, error)
	ListAudits(ctx context.Context, token string, filter api.AuditFilter) ([]models.AuditSubmission, error)
	ListContacts(ctx context.Context, token string) ([]models.ContactInquiry, error)
	GetConfiguration(ctx context.Context, token string) (*models.AuditConfiguration, error)
	UpdateConfiguration(ctx context.Context, token string, patch map[string]interface{}) error
	DeleteSubmission(ctx context.Context, token, auditID string) error
	Export(ctx context.Context, token, format string) ([]byte, error)
}

// Snapshot is everything the dashboard shows at once
type Snapshot struct {
	Stats         *models.DashboardStats
	Submissions   []models.AuditSubmission
	Contacts      []models.ContactInquiry
	Configuration *models.AuditConfiguration
}

// Service performs authenticated admin operations
type Service struct {
	backend Backend
	session *Session
	logger  *zap.Logger
}

// NewService creates an admin service
func NewService(backend Backend, session *Session, logger *zap.Logger) *Service {
	return &Service{
		backend: backend,
		session: session,
		logger:  logger,
	}
}

// Session returns the session the service authenticates with
func (s *Service) Session() *Session {
	return s.session
}

// Login exchanges credentials for a token and saves it
func (s *Service) Login(ctx context.Context, username, password string) error {
	resp, err := s.backend.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := s.session.Save(ctx, resp.AccessToken); err != nil {
		return fmt.Errorf("failed to save admin token: %w", err)
	}
	s.logger.Info("Admin logged in", zap.String("username", username))
	return nil
}

// Logout forgets the token
func (s *Service) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}

// call runs fn with the current token. A 401 clears the session.
func (s *Service) call(ctx context.Context, op string, fn func(token string) error) error {
	token := s.session.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	err := fn(token)
	if err == nil {
		return nil
	}
	if api.IsStatus(err, http.StatusUnauthorized) {
		if clearErr := s.session.Clear(ctx); clearErr != nil {
			s.logger.Warn("Failed to clear expired admin token", zap.Error(clearErr))
		}
		return fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}
	s.logger.Debug("Admin call failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

// Dashboard fetches the headline statistics
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var out *models.DashboardStats
	err := s.call(ctx, "load dashboard", func(token string) (err error) {
		out, err = s.backend.Dashboard(ctx, token)
		return err
	})
	return out, err
}

// Submissions lists audit submissions matching filter
func (s *Service) Submissions(ctx context.Context, filter api.AuditFilter) ([]models.AuditSubmission, error) {
	var out []models.AuditSubmission
	err := s.call(ctx, "load submissions", func(token string) (err error) {
		out, err = s.backend.ListAudits(ctx, token, filter)
		return err
	})
	return out, err
}

// Contacts lists contact inquiries
func (s *Service) Contacts(ctx context.Context) ([]models.ContactInquiry, error) {
	var out []models.ContactInquiry
	err := s.call(ctx, "load contacts", func(token string) (err error) {
		out, err = s.backend.ListContacts(ctx, token)
		return err
	})
	return out, err
}

// Configuration fetches the audit configuration
func (s *Service) Configuration(ctx context.Context) (*models.AuditConfiguration, error) {
	var out *models.AuditConfiguration
	err := s.call(ctx, "load configuration", func(token string) (err error) {
		out, err = s.backend.GetConfiguration(ctx, token)
		return err
	})
	return out, err
}

// UpdateConfiguration sends a partial update
func (s *Service) UpdateConfiguration(ctx context.Context, patch map[string]interface{}) error {
	if len(patch) == 0 {
		return nil
	}
	return s.call(ctx, "update configuration", func(token string) error {
		return s.backend.UpdateConfiguration(ctx, token, patch)
	})
}

// DeleteSubmission removes one audit submission
func (s *Service) DeleteSubmission(ctx context.Context, auditID string) error {
	return s.call(ctx, "delete submission", func(token string) error {
		return s.backend.DeleteSubmission(ctx, token, auditID)
	})
}

// Export downloads the submissions export as CSV
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	var out []byte
	err := s.call(ctx, "export submissions", func(token string) (err error) {
		out, err = s.backend.Export(ctx, token, "csv")
		return err
	})
	return out, err
}

// LoadAll fetches the dashboard, submissions, contacts and configuration
// concurrently. The first failure cancels the rest.
func (s *Service) LoadAll(ctx context.Context, filter api.AuditFilter) (*Snapshot, error) {
	if !s.session.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Stats, err = s.Dashboard(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Submissions, err = s.Submissions(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		snap.Contacts, err = s.Contacts(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Configuration, err = s.Configuration(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// FilterSubmissions applies the dashboard's local filter: status must match
// unless it is empty or "all", and search matches company, email or industry
// case-insensitively
func FilterSubmissions(subs []models.AuditSubmission, filter api.AuditFilter) []models.AuditSubmission {
	term := strings.ToLower(filter.Search)
	out := make([]models.AuditSubmission, 0, len(subs))
	for _, sub := range subs {
		if filter.Status != "" && filter.Status != "all" && sub.Status != filter.Status {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(sub.CompanyName), term) &&
			!strings.Contains(strings.ToLower(sub.Email), term) &&
			!strings.Contains(strings.ToLower(sub.Industry), term) {
			continue
		}
		out = append(out, sub)
	}
	return out
}

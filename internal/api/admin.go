package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/xteampro/funnel/internal/models"
)

// AuditFilter narrows the admin submission list
type AuditFilter struct {
	Status string // empty or "all" means no filter
	Search string
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// Login exchanges credentials for an access token
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	_, data, err := c.doJSON(ctx, http.MethodPost, "/api/admin/login", &models.LoginRequest{
		Username: username,
		Password: password,
	}, nil, nil)
	if err != nil {
		return nil, err
	}

	var out models.LoginResponse
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, ErrUnexpectedResponse
	}
	return &out, nil
}

// Dashboard fetches the admin dashboard statistics
func (c *Client) Dashboard(ctx context.Context, token string) (*models.DashboardStats, error) {
	_, data, err := c.doJSON(ctx, http.MethodGet, "/api/admin/dashboard", nil, bearer(token), nil)
	if err != nil {
		return nil, err
	}

	var out models.DashboardStats
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAudits fetches audit submissions
func (c *Client) ListAudits(ctx context.Context, token string, filter AuditFilter) ([]models.AuditSubmission, error) {
	query := url.Values{}
	if filter.Status != "" && filter.Status != "all" {
		query.Set("status_filter", filter.Status)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}

	_, data, err := c.doJSON(ctx, http.MethodGet, "/api/admin/audits", nil, bearer(token), query)
	if err != nil {
		return nil, err
	}

	var out []models.AuditSubmission
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListContacts fetches contact inquiries
func (c *Client) ListContacts(ctx context.Context, token string) ([]models.ContactInquiry, error) {
	_, data, err := c.doJSON(ctx, http.MethodGet, "/api/admin/contacts", nil, bearer(token), nil)
	if err != nil {
		return nil, err
	}

	var out []models.ContactInquiry
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetConfiguration fetches the audit configuration
func (c *Client) GetConfiguration(ctx context.Context, token string) (*models.AuditConfiguration, error) {
	_, data, err := c.doJSON(ctx, http.MethodGet, "/api/admin/configuration", nil, bearer(token), nil)
	if err != nil {
		return nil, err
	}

	var out models.AuditConfiguration
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateConfiguration sends a partial configuration update
func (c *Client) UpdateConfiguration(ctx context.Context, token string, patch map[string]interface{}) error {
	_, _, err := c.doJSON(ctx, http.MethodPut, "/api/admin/configuration", patch, bearer(token), nil)
	return err
}

// DeleteSubmission deletes one audit submission
func (c *Client) DeleteSubmission(ctx context.Context, token, auditID string) error {
	_, _, err := c.doJSON(ctx, http.MethodDelete, "/api/admin/submissions/"+url.PathEscape(auditID), nil, bearer(token), nil)
	return err
}

// Export downloads the submissions export in the requested format
func (c *Client) Export(ctx context.Context, token, format string) ([]byte, error) {
	if format == "" {
		format = "csv"
	}
	resp, err := c.Do(ctx, "/api/admin/export", RequestOptions{
		Headers: bearer(token),
		Query:   url.Values{"format": []string{format}},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return data, nil
}

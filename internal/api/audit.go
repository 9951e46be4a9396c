package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/xteampro/funnel/internal/models"
)

// SubmitAudit posts a validated submission request
func (c *Client) SubmitAudit(ctx context.Context, req *models.AuditSubmissionRequest) (*models.AuditSubmitResponse, error) {
	_, data, err := c.doJSON(ctx, http.MethodPost, "/api/audit/submit", req, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := checkShape(submitResponseValidator, data); err != nil {
		return nil, err
	}

	var out models.AuditSubmitResponse
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuditStatus fetches the processing status of an audit
func (c *Client) AuditStatus(ctx context.Context, auditID string) (*models.AuditStatus, error) {
	_, data, err := c.doJSON(ctx, http.MethodGet, "/api/audit/status/"+url.PathEscape(auditID), nil, nil, nil)
	if err != nil {
		return nil, err
	}

	var out models.AuditStatus
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuditResults fetches the finished result. A 202 answer yields ErrNotReady.
func (c *Client) AuditResults(ctx context.Context, auditID string) (*models.AuditResult, error) {
	status, data, err := c.doJSON(ctx, http.MethodGet, "/api/audit/results/"+url.PathEscape(auditID), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusAccepted {
		return nil, ErrNotReady
	}
	if err := checkShape(auditResultValidator, data); err != nil {
		return nil, err
	}

	var out models.AuditResult
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReportURL returns where the PDF report for an audit can be fetched
func (c *Client) ReportURL(result *models.AuditResult) string {
	if result != nil && result.PDFReportURL != "" {
		return c.ResolveURL(result.PDFReportURL)
	}
	id := ""
	if result != nil {
		id = result.AuditID
	}
	return c.ResolveURL("/api/audit/download/" + url.PathEscape(id))
}

// DownloadReport streams the PDF report at reportURL into w
func (c *Client) DownloadReport(ctx context.Context, reportURL string, w io.Writer) (int64, error) {
	resp, err := c.Do(ctx, reportURL, RequestOptions{
		Headers: map[string]string{"Accept": "application/pdf"},
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read report: %w", err)
	}
	return n, nil
}

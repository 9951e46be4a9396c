// Package report downloads audit PDF reports and extracts their text for
// terminal previews.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/xteampro/funnel/internal/models"
	"go.uber.org/zap"
)

// ErrNotPDF is returned when downloaded bytes are not a PDF document
var ErrNotPDF = errors.New("report is not a PDF document")

// Page is the extracted text of one report page
type Page struct {
	Number int
	Text   string
}

// Downloader fetches a report by URL
type Downloader interface {
	ReportURL(result *models.AuditResult) string
	DownloadReport(ctx context.Context, reportURL string, w io.Writer) (int64, error)
}

// Fetcher downloads reports and reads them back
type Fetcher struct {
	downloader Downloader
	logger     *zap.Logger
}

// NewFetcher creates a report fetcher
func NewFetcher(downloader Downloader, logger *zap.Logger) *Fetcher {
	return &Fetcher{downloader: downloader, logger: logger}
}

// FileName is the default file name for an audit's report
func FileName(auditID string) string {
	return fmt.Sprintf("xteam-audit-%s.pdf", auditID)
}

// Fetch downloads the report for result into memory
func (f *Fetcher) Fetch(ctx context.Context, result *models.AuditResult) ([]byte, error) {
	reportURL := f.downloader.ReportURL(result)
	f.logger.Debug("Downloading report", zap.String("url", reportURL))

	var buf bytes.Buffer
	if _, err := f.downloader.DownloadReport(ctx, reportURL, &buf); err != nil {
		return nil, fmt.Errorf("failed to download report: %w", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	return buf.Bytes(), nil
}

// Save downloads the report into dir and returns the written path
func (f *Fetcher) Save(ctx context.Context, result *models.AuditResult, dir string) (string, error) {
	data, err := f.Fetch(ctx, result)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, FileName(result.AuditID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	f.logger.Info("Report saved",
		zap.String("audit_id", result.AuditID),
		zap.String("path", path),
		zap.Int("bytes", len(data)))
	return path, nil
}

// ExtractText reads up to maxPages pages of text from a PDF. maxPages <= 0
// reads every page.
func ExtractText(data []byte, maxPages int) ([]Page, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	count := doc.NumPage()
	if maxPages > 0 && maxPages < count {
		count = maxPages
	}

	pages := make([]Page, 0, count)
	for n := 0; n < count; n++ {
		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", n+1, err)
		}
		pages = append(pages, Page{Number: n + 1, Text: strings.TrimSpace(text)})
	}
	return pages, nil
}

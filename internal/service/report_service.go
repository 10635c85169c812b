package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/auditlens/seo-audit/internal/artifact"
	"github.com/auditlens/seo-audit/internal/db"
	"github.com/auditlens/seo-audit/internal/logging"
	"github.com/auditlens/seo-audit/internal/renderer"
	"github.com/auditlens/seo-audit/internal/store"
)

// PDFRenderer renders a report to PDF bytes. Swappable for tests.
type PDFRenderer func(report *db.Report, audits []db.Audit) ([]byte, error)

// ReportService manages named, ordered audit collections and their share
// links.
type ReportService struct {
	reports   store.ReportStore
	audits    store.AuditStore
	artifacts artifact.Store
	render    PDFRenderer
	log       *logging.Logger
}

// NewReportService creates a new report service.
func NewReportService(reports store.ReportStore, audits store.AuditStore, artifacts artifact.Store) *ReportService {
	return &ReportService{
		reports:   reports,
		audits:    audits,
		artifacts: artifacts,
		render:    renderer.RenderReportPDF,
		log:       logging.Default().WithComponent("report_service"),
	}
}

// SetPDFRenderer overrides the PDF renderer.
func (s *ReportService) SetPDFRenderer(r PDFRenderer) {
	s.render = r
}

// Create builds a report over the given audits, preserving their sequence
// as the display order.
func (s *ReportService) Create(ctx context.Context, userID uint, name string, auditIDs []uint) (*db.Report, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("report name is required")
	}
	if err := s.verifyOwnership(ctx, userID, auditIDs); err != nil {
		return nil, err
	}

	report := &db.Report{
		CreatedByID: userID,
		Name:        name,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	if err := s.reports.ReplaceAudits(ctx, report.ID, auditIDs); err != nil {
		return nil, fmt.Errorf("attach audits to report %d: %w", report.ID, err)
	}
	return s.reports.GetByIDForUser(ctx, report.ID, userID)
}

// Get loads a report owned by the user with its audits in display order.
func (s *ReportService) Get(ctx context.Context, userID, reportID uint) (*db.Report, error) {
	return s.reports.GetByIDForUser(ctx, reportID, userID)
}

// List returns the user's reports.
func (s *ReportService) List(ctx context.Context, userID uint) ([]db.Report, error) {
	return s.reports.List(ctx, userID)
}

// Rename updates a report's display name.
func (s *ReportService) Rename(ctx context.Context, userID, reportID uint, name string) (*db.Report, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("report name is required")
	}
	if _, err := s.reports.GetByIDForUser(ctx, reportID, userID); err != nil {
		return nil, err
	}
	if err := s.reports.UpdateFields(ctx, reportID, map[string]interface{}{"name": name}); err != nil {
		return nil, fmt.Errorf("rename report %d: %w", reportID, err)
	}
	return s.reports.GetByIDForUser(ctx, reportID, userID)
}

// Reorder rewrites the display order. The new sequence must contain exactly
// the audits already in the report, just permuted.
func (s *ReportService) Reorder(ctx context.Context, userID, reportID uint, auditIDs []uint) (*db.Report, error) {
	report, err := s.reports.GetByIDForUser(ctx, reportID, userID)
	if err != nil {
		return nil, err
	}

	current := map[uint]bool{}
	for _, ra := range report.Audits {
		current[ra.AuditID] = true
	}
	if len(auditIDs) != len(report.Audits) {
		return nil, fmt.Errorf("reorder must list all %d audits, got %d", len(report.Audits), len(auditIDs))
	}
	seen := map[uint]bool{}
	for _, id := range auditIDs {
		if !current[id] {
			return nil, fmt.Errorf("audit %d is not part of report %d", id, reportID)
		}
		if seen[id] {
			return nil, fmt.Errorf("audit %d listed twice", id)
		}
		seen[id] = true
	}

	if err := s.reports.ReplaceAudits(ctx, reportID, auditIDs); err != nil {
		return nil, fmt.Errorf("reorder report %d: %w", reportID, err)
	}
	return s.reports.GetByIDForUser(ctx, reportID, userID)
}

// GenerateShareLink returns the report's share token, minting one only if
// none exists. Calling it repeatedly returns the same token.
func (s *ReportService) GenerateShareLink(ctx context.Context, userID, reportID uint) (string, error) {
	report, err := s.reports.GetByIDForUser(ctx, reportID, userID)
	if err != nil {
		return "", err
	}
	if report.ShareToken != "" {
		return report.ShareToken, nil
	}

	token := uuid.NewString()
	if err := s.reports.UpdateFields(ctx, reportID, map[string]interface{}{"share_token": token}); err != nil {
		return "", fmt.Errorf("persist share token for report %d: %w", reportID, err)
	}
	return token, nil
}

// RevokeShareLink clears the share token. A later GenerateShareLink mints a
// fresh token; the old link stays dead.
func (s *ReportService) RevokeShareLink(ctx context.Context, userID, reportID uint) error {
	if _, err := s.reports.GetByIDForUser(ctx, reportID, userID); err != nil {
		return err
	}
	return s.reports.UpdateFields(ctx, reportID, map[string]interface{}{"share_token": ""})
}

// GetShared resolves a public share token to its report. No authentication.
func (s *ReportService) GetShared(ctx context.Context, token string) (*db.Report, error) {
	return s.reports.GetByShareToken(ctx, token)
}

// GeneratePDF renders the report to PDF, uploads it, and records the URL.
func (s *ReportService) GeneratePDF(ctx context.Context, userID, reportID uint) (string, error) {
	report, err := s.reports.GetByIDForUser(ctx, reportID, userID)
	if err != nil {
		return "", err
	}

	audits := make([]db.Audit, 0, len(report.Audits))
	for _, ra := range report.Audits {
		audits = append(audits, ra.Audit)
	}

	data, err := s.render(report, audits)
	if err != nil {
		return "", fmt.Errorf("render report %d PDF: %w", reportID, err)
	}

	ref, err := s.artifacts.Upload(ctx, data, fmt.Sprintf("report-%d.pdf", reportID))
	if err != nil {
		return "", fmt.Errorf("upload report %d PDF: %w", reportID, err)
	}

	if err := s.reports.UpdateFields(ctx, reportID, map[string]interface{}{"pdf_url": ref}); err != nil {
		return "", fmt.Errorf("persist PDF URL for report %d: %w", reportID, err)
	}
	return ref, nil
}

// Delete removes the report. The audits inside it are untouched.
func (s *ReportService) Delete(ctx context.Context, userID, reportID uint) error {
	return s.reports.Delete(ctx, reportID, userID)
}

// verifyOwnership confirms every audit belongs to the user.
func (s *ReportService) verifyOwnership(ctx context.Context, userID uint, auditIDs []uint) error {
	for _, id := range auditIDs {
		if _, err := s.audits.GetByIDForUser(ctx, id, userID); err != nil {
			return fmt.Errorf("audit %d not found: %w", id, err)
		}
	}
	return nil
}

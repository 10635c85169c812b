// Package service holds the transactional application logic between the
// HTTP handlers and the persistence layer.
package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/auditlens/seo-audit/internal/db"
	"github.com/auditlens/seo-audit/internal/logging"
	"github.com/auditlens/seo-audit/internal/store"
)

// WorkflowEnqueuer schedules background workflow runs. Satisfied by
// workflow.Runner.
type WorkflowEnqueuer interface {
	EnqueueAudit(ctx context.Context, auditID uint, url string) error
	EnqueueSitemap(ctx context.Context, auditID uint, sitemapURL string) error
	EnqueueSigned(ctx context.Context, auditID uint) error
}

// Effect is a side effect a status transition demands beyond the write itself.
type Effect string

// EffectSignedWorkflow fires the signed enrichment pipeline.
const EffectSignedWorkflow Effect = "signed_workflow"

// TransitionStatus validates a status change and returns the effects it
// triggers. Entering signed from any other status fires the signed workflow
// exactly once; re-saving an already signed audit fires nothing.
func TransitionStatus(from, to db.AuditStatus) ([]Effect, error) {
	if !db.ValidStatus(to) {
		return nil, fmt.Errorf("unknown status %q", to)
	}
	if to == db.StatusSigned && from != db.StatusSigned {
		return []Effect{EffectSignedWorkflow}, nil
	}
	return nil, nil
}

// CreateAuditInput is the request payload for creating an audit.
type CreateAuditInput struct {
	URL         string
	ClientName  string
	ClientEmail string
	SitemapMode bool
}

// UpdateAuditInput carries optional field updates; nil means unchanged.
type UpdateAuditInput struct {
	ClientName  *string
	ClientEmail *string
	Status      *db.AuditStatus
}

// AuditService implements audit lifecycle operations.
type AuditService struct {
	audits   store.AuditStore
	enqueuer WorkflowEnqueuer
	log      *logging.Logger
}

// NewAuditService creates a new audit service.
func NewAuditService(audits store.AuditStore, enqueuer WorkflowEnqueuer) *AuditService {
	return &AuditService{
		audits:   audits,
		enqueuer: enqueuer,
		log:      logging.Default().WithComponent("audit_service"),
	}
}

// Create records a new audit in progress and enqueues the matching workflow.
func (s *AuditService) Create(ctx context.Context, userID uint, input CreateAuditInput) (*db.Audit, error) {
	rawURL := strings.TrimSpace(input.URL)
	if err := validateAuditURL(rawURL, input.SitemapMode); err != nil {
		return nil, err
	}

	audit := &db.Audit{
		CreatedByID:    userID,
		URL:            rawURL,
		ClientName:     strings.TrimSpace(input.ClientName),
		ClientEmail:    strings.TrimSpace(input.ClientEmail),
		Status:         db.StatusInProgress,
		IsSitemapAudit: input.SitemapMode,
	}
	if err := s.audits.Create(ctx, audit); err != nil {
		return nil, fmt.Errorf("create audit: %w", err)
	}

	change := &db.StatusChange{
		AuditID:     audit.ID,
		ToStatus:    db.StatusInProgress,
		ChangedByID: userID,
	}
	if err := s.audits.AppendStatusChange(ctx, change); err != nil {
		s.log.Warn("failed to record initial status change", "audit_id", audit.ID, "error", err)
	}

	var err error
	if input.SitemapMode {
		err = s.enqueuer.EnqueueSitemap(ctx, audit.ID, rawURL)
	} else {
		err = s.enqueuer.EnqueueAudit(ctx, audit.ID, rawURL)
	}
	if err != nil {
		return nil, fmt.Errorf("enqueue workflow for audit %d: %w", audit.ID, err)
	}
	return audit, nil
}

// Get loads an audit owned by the user.
func (s *AuditService) Get(ctx context.Context, userID, auditID uint) (*db.Audit, error) {
	return s.audits.GetByIDForUser(ctx, auditID, userID)
}

// List returns the user's audits with pagination.
func (s *AuditService) List(ctx context.Context, userID uint, filter store.AuditListFilter) ([]db.Audit, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Size < 1 || filter.Size > 100 {
		filter.Size = 20
	}
	return s.audits.List(ctx, userID, filter)
}

// Update applies client-editable fields and runs status transitions,
// including their side effects.
func (s *AuditService) Update(ctx context.Context, userID, auditID uint, input UpdateAuditInput) (*db.Audit, error) {
	audit, err := s.audits.GetByIDForUser(ctx, auditID, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.ClientName != nil {
		fields["client_name"] = strings.TrimSpace(*input.ClientName)
	}
	if input.ClientEmail != nil {
		fields["client_email"] = strings.TrimSpace(*input.ClientEmail)
	}

	var effects []Effect
	if input.Status != nil && *input.Status != audit.Status {
		effects, err = TransitionStatus(audit.Status, *input.Status)
		if err != nil {
			return nil, err
		}
		fields["status"] = *input.Status
	}

	if len(fields) > 0 {
		if err := s.audits.UpdateFields(ctx, auditID, fields); err != nil {
			return nil, fmt.Errorf("update audit %d: %w", auditID, err)
		}
	}

	if status, ok := fields["status"]; ok {
		change := &db.StatusChange{
			AuditID:     auditID,
			FromStatus:  audit.Status,
			ToStatus:    status.(db.AuditStatus),
			ChangedByID: userID,
		}
		if err := s.audits.AppendStatusChange(ctx, change); err != nil {
			s.log.Warn("failed to record status change", "audit_id", auditID, "error", err)
		}
	}

	for _, effect := range effects {
		if effect == EffectSignedWorkflow {
			if err := s.enqueuer.EnqueueSigned(ctx, auditID); err != nil {
				s.log.Error("failed to enqueue signed workflow", "audit_id", auditID, "error", err)
			}
		}
	}

	return s.audits.GetByIDForUser(ctx, auditID, userID)
}

// Delete removes an audit owned by the user.
func (s *AuditService) Delete(ctx context.Context, userID, auditID uint) error {
	return s.audits.Delete(ctx, auditID, userID)
}

// StatusHistory returns the append-only status log for an owned audit.
func (s *AuditService) StatusHistory(ctx context.Context, userID, auditID uint) ([]db.StatusChange, error) {
	if _, err := s.audits.GetByIDForUser(ctx, auditID, userID); err != nil {
		return nil, err
	}
	return s.audits.StatusHistory(ctx, auditID)
}

// validateAuditURL rejects malformed URLs up front. Sitemap audits must
// point at an .xml document.
func validateAuditURL(rawURL string, sitemapMode bool) error {
	if rawURL == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("invalid URL %q", rawURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https")
	}
	if sitemapMode && !strings.HasSuffix(strings.ToLower(parsed.Path), ".xml") {
		return fmt.Errorf("sitemap URL must end in .xml")
	}
	return nil
}

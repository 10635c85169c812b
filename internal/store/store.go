// Package store defines the narrow persistence interfaces the workflows
// and services depend on, plus their GORM-backed implementations.
package store

import (
	"context"

	"github.com/auditlens/seo-audit/internal/db"
)

// AuditListFilter carries pagination and search options for audit listing.
type AuditListFilter struct {
	Page   int
	Size   int
	Query  string
	Status db.AuditStatus
	Sort   string
}

// AuditStore is the persistence surface for audits and their status log.
type AuditStore interface {
	Create(ctx context.Context, audit *db.Audit) error
	GetByID(ctx context.Context, id uint) (*db.Audit, error)
	GetByIDForUser(ctx context.Context, id, userID uint) (*db.Audit, error)
	List(ctx context.Context, userID uint, filter AuditListFilter) ([]db.Audit, int64, error)

	// UpdateFields persists only the given columns (a narrow partial update).
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id, userID uint) error

	// AppendStatusChange writes one immutable status-log row.
	AppendStatusChange(ctx context.Context, change *db.StatusChange) error
	StatusHistory(ctx context.Context, auditID uint) ([]db.StatusChange, error)
}

// ReportStore is the persistence surface for reports and their membership rows.
type ReportStore interface {
	Create(ctx context.Context, report *db.Report) error
	GetByID(ctx context.Context, id uint) (*db.Report, error)
	GetByIDForUser(ctx context.Context, id, userID uint) (*db.Report, error)
	GetByShareToken(ctx context.Context, token string) (*db.Report, error)
	List(ctx context.Context, userID uint) ([]db.Report, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error

	// ReplaceAudits rewrites the membership rows wholesale with dense
	// 0..N-1 sort orders matching the given sequence.
	ReplaceAudits(ctx context.Context, reportID uint, auditIDs []uint) error
	Delete(ctx context.Context, id, userID uint) error
}

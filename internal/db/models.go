package db

import (
	"time"

	"gorm.io/datatypes"
)

type AuditStatus string

const (
	StatusProposal    AuditStatus = "proposal"
	StatusInitialCall AuditStatus = "initial_call"
	StatusSigned      AuditStatus = "signed"
	StatusInProgress  AuditStatus = "in_progress"
	StatusCompleted   AuditStatus = "completed"
)

// ValidStatus reports whether s is one of the known audit status labels.
func ValidStatus(s AuditStatus) bool {
	switch s {
	case StatusProposal, StatusInitialCall, StatusSigned, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Audit is the central record of one audit run: either a single-URL audit
// or a sitemap audit. Derived fields stay NULL/zero until the matching
// workflow computes them.
type Audit struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	CreatedByID uint        `gorm:"index" json:"created_by_id"`
	URL         string      `gorm:"not null;size:768" json:"url"`
	ClientName  string      `gorm:"size:255" json:"client_name"`
	ClientEmail string      `gorm:"size:255" json:"client_email"`
	Status      AuditStatus `gorm:"default:'in_progress';index" json:"status"`

	SeoScore           *int           `json:"seo_score"`
	AccessibilityScore *int           `json:"accessibility_score"`
	DesignScore        *int           `json:"design_score"` // 1-10 critique score
	ClaudeAnalysis     string         `gorm:"type:longtext" json:"claude_analysis"`
	ScreenshotDesktop  string         `gorm:"size:1024" json:"screenshot_desktop"`
	ScreenshotMobile   string         `gorm:"size:1024" json:"screenshot_mobile"`
	MetaTitle          string         `gorm:"size:512" json:"meta_title"`
	MetaDescription    string         `gorm:"size:1024" json:"meta_description"`
	H1Tags             datatypes.JSON `json:"h1_tags"`         // ["..."]
	CoreWebVitals      datatypes.JSON `json:"core_web_vitals"` // {"lcp":..,"fid":..,"cls":..}

	// Homepage-only enrichment, populated by the signed workflow.
	IsHomepage       bool           `json:"is_homepage"`
	TotalKeywords    *int           `json:"total_keywords"`
	KeywordTrendData datatypes.JSON `json:"keyword_trend_data"`
	TopPages         datatypes.JSON `json:"top_pages"`
	SemrushData      datatypes.JSON `json:"semrush_data"`
	ExcelReportURL   string         `gorm:"size:1024" json:"excel_report_url"`

	// Sitemap-mode enrichment, mutually exclusive with the homepage fields.
	IsSitemapAudit     bool           `json:"is_sitemap_audit"`
	SitemapUrls        datatypes.JSON `json:"sitemap_urls"` // {"totalUrls":..,"crawledUrls":..}
	ContentGaps        datatypes.JSON `json:"content_gaps"`
	URLStructureIssues datatypes.JSON `json:"url_structure_issues"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy User      `gorm:"foreignKey:CreatedByID" json:"-"`
}

// StatusChange is an append-only log entry recording a status transition.
// Rows are never updated after creation.
type StatusChange struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	AuditID     uint        `gorm:"index;not null" json:"audit_id"`
	FromStatus  AuditStatus `gorm:"size:32" json:"from_status"`
	ToStatus    AuditStatus `gorm:"size:32;not null" json:"to_status"`
	ChangedByID uint        `json:"changed_by_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Report is a named, ordered collection of audits for client presentation.
type Report struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CreatedByID uint          `gorm:"index" json:"created_by_id"`
	Name        string        `gorm:"not null;size:255" json:"name"`
	ShareToken  string        `gorm:"size:64;index" json:"share_token"`
	PdfURL      string        `gorm:"size:1024" json:"pdf_url"`
	Audits      []ReportAudit `gorm:"constraint:OnDelete:CASCADE" json:"report_audits"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ReportAudit is a membership row. SortOrder is a dense 0..N-1 rank,
// rewritten wholesale on any reorder.
type ReportAudit struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	ReportID  uint  `gorm:"index;not null" json:"report_id"`
	AuditID   uint  `gorm:"not null" json:"audit_id"`
	SortOrder int   `gorm:"column:sort_order;not null" json:"order"`
	Audit     Audit `gorm:"foreignKey:AuditID" json:"audit"`
}

type TaskStatus string

const (
	TaskQueued  TaskStatus = "queued"
	TaskRunning TaskStatus = "running"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
)

type TaskKind string

const (
	TaskAudit   TaskKind = "audit"
	TaskSitemap TaskKind = "sitemap"
	TaskSigned  TaskKind = "signed"
)

// WorkflowTask is a durable record of a requested workflow run. Tasks are
// consumed by the runner's worker pool; rows left queued or running after a
// process restart are re-enqueued on startup.
type WorkflowTask struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Kind      TaskKind   `gorm:"size:16;not null" json:"kind"`
	AuditID   uint       `gorm:"index;not null" json:"audit_id"`
	Payload   string     `gorm:"size:1024" json:"payload"` // target URL for audit/sitemap kinds
	Status    TaskStatus `gorm:"size:16;default:'queued';index" json:"status"`
	Attempts  int        `json:"attempts"`
	Error     string     `gorm:"size:2048" json:"error"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// User represents an authenticated user
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null;size:100" json:"username"`
	Password  string    `gorm:"not null;size:255" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gorm.io/datatypes"

	"github.com/auditlens/seo-audit/internal/analyzer"
	"github.com/auditlens/seo-audit/internal/artifact"
	"github.com/auditlens/seo-audit/internal/db"
	"github.com/auditlens/seo-audit/internal/keywords"
	"github.com/auditlens/seo-audit/internal/logging"
	"github.com/auditlens/seo-audit/internal/notify"
	"github.com/auditlens/seo-audit/internal/renderer"
	"github.com/auditlens/seo-audit/internal/store"
)

// analysisDivider separates the original critique from the appended
// strategic roadmap inside claude_analysis.
const analysisDivider = "\n\n---\n\n"

// SignedConfig holds the destinations for signed-audit notifications.
type SignedConfig struct {
	ProjectManagerEmail string
	WebTeamEmail        string
	FallbackEmail       string
	ChatChannel         string
	AppBaseURL          string
}

// NewSignedConfig creates notification configuration from environment variables.
func NewSignedConfig() *SignedConfig {
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return &SignedConfig{
		ProjectManagerEmail: os.Getenv("PM_EMAIL"),
		WebTeamEmail:        os.Getenv("WEB_TEAM_EMAIL"),
		FallbackEmail:       "team@example.com",
		ChatChannel:         os.Getenv("SLACK_CHANNEL"),
		AppBaseURL:          base,
	}
}

// NotificationOutcome records which notification channels succeeded.
type NotificationOutcome struct {
	Email bool `json:"email"`
	Chat  bool `json:"chat"`
}

// SignedResult is what a signed-workflow run produced. Every field is
// populated independently: a partially failed run returns whatever
// succeeded.
type SignedResult struct {
	ExcelURL          string              `json:"excel_url"`
	StrategicAnalysis string              `json:"strategic_analysis"`
	NotificationsSent NotificationOutcome `json:"notifications_sent"`
}

// SpreadsheetRenderer renders the keyword workbook. Swappable for tests.
type SpreadsheetRenderer func(domain string, data *keywords.DomainData, clientName string, date time.Time) ([]byte, error)

// SignedWorkflow runs the enrichment pipeline triggered when an audit is
// signed: keyword data, spreadsheet, strategic roadmap, and team
// notifications. Only the initial audit load is fatal; every later stage
// degrades by logging and moving on.
type SignedWorkflow struct {
	audits    store.AuditStore
	keywords  keywords.Source
	analyzer  analyzer.Analyzer
	artifacts artifact.Store
	email     notify.EmailSender
	chat      notify.ChatSender
	render    SpreadsheetRenderer
	cfg       *SignedConfig
	log       *logging.Logger
}

// NewSignedWorkflow creates a new signed-audit orchestrator.
func NewSignedWorkflow(
	audits store.AuditStore,
	keywordSource keywords.Source,
	modelAnalyzer analyzer.Analyzer,
	artifacts artifact.Store,
	email notify.EmailSender,
	chat notify.ChatSender,
	cfg *SignedConfig,
) *SignedWorkflow {
	if cfg == nil {
		cfg = NewSignedConfig()
	}
	return &SignedWorkflow{
		audits:    audits,
		keywords:  keywordSource,
		analyzer:  modelAnalyzer,
		artifacts: artifacts,
		email:     email,
		chat:      chat,
		render:    renderer.RenderKeywordWorkbook,
		cfg:       cfg,
		log:       logging.Default().WithComponent("signed_workflow"),
	}
}

// SetSpreadsheetRenderer overrides the workbook renderer.
func (w *SignedWorkflow) SetSpreadsheetRenderer(r SpreadsheetRenderer) {
	w.render = r
}

// Run executes the signed pipeline for one audit.
func (w *SignedWorkflow) Run(ctx context.Context, auditID uint) (*SignedResult, error) {
	audit, err := w.audits.GetByID(ctx, auditID)
	if err != nil {
		return nil, fmt.Errorf("load audit %d: %w", auditID, err)
	}

	log := w.log.WithAudit(auditID)
	result := &SignedResult{}

	if !audit.IsHomepage {
		log.Info("audit is not a homepage, skipping keyword enrichment")
		return result, nil
	}

	domain := DomainOf(audit.URL)
	dataset := w.fetchKeywordData(ctx, log, audit, domain)
	if dataset == nil {
		return result, nil
	}

	w.renderAndUploadWorkbook(ctx, log, audit, domain, dataset, result)
	w.synthesizeStrategy(ctx, log, audit, dataset, result)

	// Notifications are gated on the spreadsheet existing: no deliverable,
	// no ping.
	if result.ExcelURL != "" {
		w.notifyTeam(ctx, log, audit, result)
	}

	return result, nil
}

// fetchKeywordData loads and persists the keyword dataset, returning nil on
// any failure so the remaining stages are skipped.
func (w *SignedWorkflow) fetchKeywordData(ctx context.Context, log *logging.Logger, audit *db.Audit, domain string) *keywords.DomainData {
	dataset, err := w.keywords.Fetch(ctx, domain)
	if err != nil {
		log.Warn("keyword fetch failed, continuing without dataset", "domain", domain, "error", err)
		return nil
	}

	raw, err := json.Marshal(dataset)
	if err != nil {
		log.Warn("failed to encode keyword dataset", "error", err)
		return dataset
	}
	trend, _ := json.Marshal(dataset.Trend)
	pages, _ := json.Marshal(dataset.TopPages)

	fields := map[string]interface{}{
		"semrush_data":       datatypes.JSON(raw),
		"total_keywords":     dataset.TotalKeywords,
		"keyword_trend_data": datatypes.JSON(trend),
		"top_pages":          datatypes.JSON(pages),
	}
	if err := w.audits.UpdateFields(ctx, audit.ID, fields); err != nil {
		log.Warn("failed to persist keyword dataset", "error", err)
	}
	return dataset
}

func (w *SignedWorkflow) renderAndUploadWorkbook(ctx context.Context, log *logging.Logger, audit *db.Audit, domain string, dataset *keywords.DomainData, result *SignedResult) {
	workbook, err := w.render(domain, dataset, audit.ClientName, time.Now())
	if err != nil {
		log.Warn("spreadsheet render failed", "error", err)
		return
	}

	ref, err := w.artifacts.Upload(ctx, workbook, fmt.Sprintf("%s-keyword-report.xlsx", domain))
	if err != nil {
		log.Warn("spreadsheet upload failed", "error", err)
		return
	}

	result.ExcelURL = ref
	if err := w.audits.UpdateFields(ctx, audit.ID, map[string]interface{}{"excel_report_url": ref}); err != nil {
		log.Warn("failed to persist spreadsheet reference", "error", err)
	}
}

func (w *SignedWorkflow) synthesizeStrategy(ctx context.Context, log *logging.Logger, audit *db.Audit, dataset *keywords.DomainData, result *SignedResult) {
	strategy, err := w.analyzer.SynthesizeStrategy(ctx, analyzer.StrategyInput{
		URL:                audit.URL,
		ClientName:         audit.ClientName,
		SeoScore:           audit.SeoScore,
		AccessibilityScore: audit.AccessibilityScore,
		DesignScore:        audit.DesignScore,
		ExistingAnalysis:   audit.ClaudeAnalysis,
	}, dataset)
	if err != nil {
		log.Warn("strategy synthesis failed", "error", err)
		return
	}

	result.StrategicAnalysis = strategy

	combined := audit.ClaudeAnalysis
	if combined != "" {
		combined += analysisDivider
	}
	combined += strategy
	if err := w.audits.UpdateFields(ctx, audit.ID, map[string]interface{}{"claude_analysis": combined}); err != nil {
		log.Warn("failed to persist strategic analysis", "error", err)
	}
}

func (w *SignedWorkflow) notifyTeam(ctx context.Context, log *logging.Logger, audit *db.Audit, result *SignedResult) {
	auditURL := fmt.Sprintf("%s/audits/%d", w.cfg.AppBaseURL, audit.ID)

	subject, body := buildSignedEmail(audit, auditURL, result.ExcelURL)
	if err := w.email.Email(ctx, w.emailRecipients(), subject, body); err != nil {
		log.Warn("email notification failed", "error", err)
	} else {
		result.NotificationsSent.Email = true
	}

	buttons := []notify.ActionButton{
		{Label: "View Audit", URL: auditURL},
		{Label: "Download Spreadsheet", URL: result.ExcelURL},
	}
	if err := w.chat.Chat(ctx, w.cfg.ChatChannel, buildSignedSummary(audit), buttons); err != nil {
		log.Warn("chat notification failed", "error", err)
	} else {
		result.NotificationsSent.Chat = true
	}
}

func (w *SignedWorkflow) emailRecipients() []string {
	var recipients []string
	if w.cfg.ProjectManagerEmail != "" {
		recipients = append(recipients, w.cfg.ProjectManagerEmail)
	}
	if w.cfg.WebTeamEmail != "" {
		recipients = append(recipients, w.cfg.WebTeamEmail)
	}
	if len(recipients) == 0 {
		recipients = append(recipients, w.cfg.FallbackEmail)
	}
	return recipients
}

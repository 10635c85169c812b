package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/auditlens/seo-audit/internal/analyzer"
	"github.com/auditlens/seo-audit/internal/artifact"
	"github.com/auditlens/seo-audit/internal/capture"
	"github.com/auditlens/seo-audit/internal/db"
	"github.com/auditlens/seo-audit/internal/logging"
	"github.com/auditlens/seo-audit/internal/store"
)

// AuditWorkflow orchestrates a single-URL audit: capture, artifact upload,
// scoring, design critique, and one final all-or-nothing persistence write.
type AuditWorkflow struct {
	capture   capture.PageCapture
	analyzer  analyzer.Analyzer
	artifacts artifact.Store
	audits    store.AuditStore
	log       *logging.Logger
}

// NewAuditWorkflow creates a new single-URL audit orchestrator.
func NewAuditWorkflow(
	pageCapture capture.PageCapture,
	modelAnalyzer analyzer.Analyzer,
	artifacts artifact.Store,
	audits store.AuditStore,
) *AuditWorkflow {
	return &AuditWorkflow{
		capture:   pageCapture,
		analyzer:  modelAnalyzer,
		artifacts: artifacts,
		audits:    audits,
		log:       logging.Default().WithComponent("audit_workflow"),
	}
}

// Run executes the audit to completion. It is the fire-and-forget boundary:
// failures are logged, never returned, and a failed run leaves the audit in
// progress with none of the result fields written, so the operator can spot
// a stalled audit and re-run it.
func (w *AuditWorkflow) Run(ctx context.Context, auditID uint, rawURL string) {
	if err := w.execute(ctx, auditID, rawURL); err != nil {
		w.log.Error("audit workflow failed, audit left in progress",
			"audit_id", auditID, "url", rawURL, "error", err)
		return
	}
	w.log.Info("audit workflow completed", "audit_id", auditID, "url", rawURL)
}

func (w *AuditWorkflow) execute(ctx context.Context, auditID uint, rawURL string) error {
	result, err := w.capture.Capture(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("page capture: %w", err)
	}

	desktopRef, err := w.artifacts.Upload(ctx, result.DesktopScreenshot, fmt.Sprintf("audit-%d-desktop.jpg", auditID))
	if err != nil {
		return fmt.Errorf("upload desktop screenshot: %w", err)
	}
	mobileRef, err := w.artifacts.Upload(ctx, result.MobileScreenshot, fmt.Sprintf("audit-%d-mobile.jpg", auditID))
	if err != nil {
		return fmt.Errorf("upload mobile screenshot: %w", err)
	}

	seoScore := CalculateSEOScore(result.SEO)

	critique, err := w.analyzer.CritiqueDesign(ctx, result.DesktopScreenshot, result.MobileScreenshot, analyzer.DesignContext{
		URL:                rawURL,
		SeoScore:           seoScore,
		AccessibilityScore: result.Accessibility.Score,
		Violations:         result.Accessibility.Violations,
		SEO:                result.SEO,
	})
	if err != nil {
		return fmt.Errorf("design critique: %w", err)
	}

	critiqueJSON, err := json.Marshal(critique)
	if err != nil {
		return fmt.Errorf("encode critique: %w", err)
	}
	h1JSON, err := json.Marshal(result.SEO.H1Tags)
	if err != nil {
		return fmt.Errorf("encode h1 tags: %w", err)
	}
	vitalsJSON, err := json.Marshal(result.Vitals)
	if err != nil {
		return fmt.Errorf("encode web vitals: %w", err)
	}

	// Single final write: a partially failed run must not leave partial
	// result fields behind.
	fields := map[string]interface{}{
		"seo_score":           seoScore,
		"accessibility_score": result.Accessibility.Score,
		"design_score":        critique.Score,
		"claude_analysis":     string(critiqueJSON),
		"screenshot_desktop":  desktopRef,
		"screenshot_mobile":   mobileRef,
		"meta_title":          result.SEO.MetaTitle,
		"meta_description":    result.SEO.MetaDescription,
		"h1_tags":             datatypes.JSON(h1JSON),
		"core_web_vitals":     datatypes.JSON(vitalsJSON),
		"is_homepage":         IsHomepage(rawURL),
		"status":              db.StatusCompleted,
	}
	if err := w.audits.UpdateFields(ctx, auditID, fields); err != nil {
		return fmt.Errorf("persist results: %w", err)
	}
	return nil
}

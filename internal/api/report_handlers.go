package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/auditlens/seo-audit/internal/middleware"
	"github.com/auditlens/seo-audit/internal/service"
)

// CreateReportRequest represents the report creation payload
type CreateReportRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	AuditIDs []uint `json:"audit_ids" binding:"required,min=1,max=100"`
}

// RenameReportRequest carries a report rename
type RenameReportRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// ReorderReportRequest carries the new audit display sequence
type ReorderReportRequest struct {
	AuditIDs []uint `json:"audit_ids" binding:"required,min=1,max=100"`
}

// CreateReportHandler handles report creation
func CreateReportHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req CreateReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request format",
				"details": err.Error(),
			})
			return
		}

		report, err := reports.Create(c.Request.Context(), user.ID, req.Name, req.AuditIDs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, report)
	}
}

// ListReportsHandler handles report listing
func ListReportsHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		items, err := reports.List(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reports"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}

// GetReportHandler handles single report retrieval
func GetReportHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		id, ok := parseIDParam(c)
		if !ok {
			return
		}

		report, err := reports.Get(c.Request.Context(), user.ID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// RenameReportHandler handles report renames
func RenameReportHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		id, ok := parseIDParam(c)
		if !ok {
			return
		}

		var req RenameReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request format",
				"details": err.Error(),
			})
			return
		}

		report, err := reports.Rename(c.Request.Context(), user.ID, id, req.Name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// ReorderReportHandler rewrites the audit display order
func ReorderReportHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		id, ok := parseIDParam(c)
		if !ok {
			return
		}

		var req ReorderReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request format",
				"details": err.Error(),
			})
			return
		}

		report, err := reports.Reorder(c.Request.Context(), user.ID, id, req.AuditIDs)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// GenerateShareLinkHandler mints or returns the report's share token
func GenerateShareLinkHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		id, ok := parseIDParam(c)
		if !ok {
			return
		}

		token, err := reports.GenerateShareLink(c.Request.Context(), user.ID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate share link"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"share_token": token})
	}
}

// RevokeShareLinkHandler clears the report's share token
func RevokeShareLinkHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		id, ok := parseIDParam(c)
		if !ok {
			return
		}

		if err := reports.RevokeShareLink(c.Request.Context(), user.ID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke share link"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Share link revoked"})
	}
}

// GenerateReportPDFHandler renders and stores the report PDF
func GenerateReportPDFHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		id, ok := parseIDParam(c)
		if !ok {
			return
		}

		url, err := reports.GeneratePDF(c.Request.Context(), user.ID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"pdf_url": url})
	}
}

// DeleteReportHandler deletes a report, leaving its audits intact
func DeleteReportHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		id, ok := parseIDParam(c)
		if !ok {
			return
		}

		if err := reports.Delete(c.Request.Context(), user.ID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Report deleted"})
	}
}

// SharedReportHandler serves a report by its public share token. This route
// requires no authentication.
func SharedReportHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Share token required"})
			return
		}

		report, err := reports.GetShared(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

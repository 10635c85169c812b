package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/auditlens/seo-audit/internal/db"
	"github.com/auditlens/seo-audit/internal/logging"
	"github.com/auditlens/seo-audit/internal/middleware"
	"github.com/auditlens/seo-audit/internal/service"
	"github.com/auditlens/seo-audit/internal/store"
)

// CreateAuditRequest represents the audit creation payload
type CreateAuditRequest struct {
	URL         string `json:"url" binding:"required,url"`
	ClientName  string `json:"client_name" binding:"max=255"`
	ClientEmail string `json:"client_email" binding:"omitempty,email"`
	SitemapMode bool   `json:"sitemap_mode"`
}

// UpdateAuditRequest carries optional audit updates
type UpdateAuditRequest struct {
	ClientName  *string `json:"client_name"`
	ClientEmail *string `json:"client_email"`
	Status      *string `json:"status"`
}

// PaginatedResponse represents a paginated response
type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
	Total int64       `json:"total"`
	Pages int         `json:"pages"`
}

// CreateAuditHandler handles audit creation
func CreateAuditHandler(audits *service.AuditService) gin.HandlerFunc {
	log := logging.Default().WithComponent("api")

	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req CreateAuditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request format",
				"details": err.Error(),
			})
			return
		}

		audit, err := audits.Create(c.Request.Context(), user.ID, service.CreateAuditInput{
			URL:         req.URL,
			ClientName:  req.ClientName,
			ClientEmail: req.ClientEmail,
			SitemapMode: req.SitemapMode,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		log.Info("created audit", "audit_id", audit.ID, "url", audit.URL, "sitemap", req.SitemapMode)
		c.JSON(http.StatusCreated, audit)
	}
}

// ListAuditsHandler handles audit listing with pagination and search
func ListAuditsHandler(audits *service.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
		if err != nil || size < 1 || size > 100 {
			size = 20
		}

		sort := c.DefaultQuery("sort", "created_at desc")
		allowedSorts := map[string]bool{
			"created_at desc": true,
			"created_at asc":  true,
			"updated_at desc": true,
			"updated_at asc":  true,
			"status asc":      true,
			"status desc":     true,
		}
		if !allowedSorts[sort] {
			sort = "created_at desc"
		}

		filter := store.AuditListFilter{
			Page:   page,
			Size:   size,
			Query:  c.Query("q"),
			Status: db.AuditStatus(c.Query("status")),
			Sort:   sort,
		}

		items, total, err := audits.List(c.Request.Context(), user.ID, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list audits"})
			return
		}

		pages := int((total + int64(size) - 1) / int64(size))
		c.JSON(http.StatusOK, PaginatedResponse{
			Data:  items,
			Page:  page,
			Size:  size,
			Total: total,
			Pages: pages,
		})
	}
}

// GetAuditHandler handles single audit retrieval
func GetAuditHandler(audits *service.AuditService) gin.HandlerFunc {
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

		audit, err := audits.Get(c.Request.Context(), user.ID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Audit not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, audit)
	}
}

// UpdateAuditHandler handles audit updates including status transitions
func UpdateAuditHandler(audits *service.AuditService) gin.HandlerFunc {
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

		var req UpdateAuditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request format",
				"details": err.Error(),
			})
			return
		}

		input := service.UpdateAuditInput{
			ClientName:  req.ClientName,
			ClientEmail: req.ClientEmail,
		}
		if req.Status != nil {
			status := db.AuditStatus(*req.Status)
			input.Status = &status
		}

		audit, err := audits.Update(c.Request.Context(), user.ID, id, input)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Audit not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, audit)
	}
}

// DeleteAuditHandler handles audit deletion
func DeleteAuditHandler(audits *service.AuditService) gin.HandlerFunc {
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

		if err := audits.Delete(c.Request.Context(), user.ID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Audit not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete audit"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Audit deleted"})
	}
}

// AuditStatusHistoryHandler returns the append-only status log for an audit
func AuditStatusHistoryHandler(audits *service.AuditService) gin.HandlerFunc {
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

		history, err := audits.StatusHistory(c.Request.Context(), user.ID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Audit not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": history})
	}
}

// parseIDParam parses the :id path parameter, writing the error response itself.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

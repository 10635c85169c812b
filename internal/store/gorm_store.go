package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/auditlens/seo-audit/internal/db"
)

// GormAuditStore implements AuditStore on a GORM connection.
type GormAuditStore struct {
	conn *gorm.DB
}

// NewGormAuditStore creates a new audit store.
func NewGormAuditStore(conn *gorm.DB) *GormAuditStore {
	return &GormAuditStore{conn: conn}
}

func (s *GormAuditStore) Create(ctx context.Context, audit *db.Audit) error {
	if audit.URL == "" {
		return fmt.Errorf("audit URL cannot be empty")
	}
	if audit.CreatedByID == 0 {
		return fmt.Errorf("audit owner cannot be zero")
	}
	return s.conn.WithContext(ctx).Create(audit).Error
}

func (s *GormAuditStore) GetByID(ctx context.Context, id uint) (*db.Audit, error) {
	var audit db.Audit
	if err := s.conn.WithContext(ctx).First(&audit, id).Error; err != nil {
		return nil, err
	}
	return &audit, nil
}

func (s *GormAuditStore) GetByIDForUser(ctx context.Context, id, userID uint) (*db.Audit, error) {
	var audit db.Audit
	err := s.conn.WithContext(ctx).Where("id = ? AND created_by_id = ?", id, userID).First(&audit).Error
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

func (s *GormAuditStore) List(ctx context.Context, userID uint, filter AuditListFilter) ([]db.Audit, int64, error) {
	query := s.conn.WithContext(ctx).Model(&db.Audit{}).Where("created_by_id = ?", userID)

	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("url LIKE ? OR client_name LIKE ?", like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := filter.Sort
	if sort == "" {
		sort = "created_at desc"
	}

	var audits []db.Audit
	offset := (filter.Page - 1) * filter.Size
	if err := query.Order(sort).Limit(filter.Size).Offset(offset).Find(&audits).Error; err != nil {
		return nil, 0, err
	}
	return audits, total, nil
}

func (s *GormAuditStore) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.conn.WithContext(ctx).Model(&db.Audit{}).Where("id = ?", id).Updates(fields).Error
}

func (s *GormAuditStore) Delete(ctx context.Context, id, userID uint) error {
	result := s.conn.WithContext(ctx).Where("id = ? AND created_by_id = ?", id, userID).Delete(&db.Audit{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *GormAuditStore) AppendStatusChange(ctx context.Context, change *db.StatusChange) error {
	return s.conn.WithContext(ctx).Create(change).Error
}

func (s *GormAuditStore) StatusHistory(ctx context.Context, auditID uint) ([]db.StatusChange, error) {
	var changes []db.StatusChange
	err := s.conn.WithContext(ctx).Where("audit_id = ?", auditID).Order("created_at asc, id asc").Find(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// GormReportStore implements ReportStore on a GORM connection.
type GormReportStore struct {
	conn *gorm.DB
}

// NewGormReportStore creates a new report store.
func NewGormReportStore(conn *gorm.DB) *GormReportStore {
	return &GormReportStore{conn: conn}
}

func (s *GormReportStore) Create(ctx context.Context, report *db.Report) error {
	if report.Name == "" {
		return fmt.Errorf("report name cannot be empty")
	}
	return s.conn.WithContext(ctx).Create(report).Error
}

func (s *GormReportStore) GetByID(ctx context.Context, id uint) (*db.Report, error) {
	var report db.Report
	err := s.conn.WithContext(ctx).
		Preload("Audits", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order asc") }).
		Preload("Audits.Audit").
		First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *GormReportStore) GetByIDForUser(ctx context.Context, id, userID uint) (*db.Report, error) {
	var report db.Report
	err := s.conn.WithContext(ctx).
		Preload("Audits", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order asc") }).
		Preload("Audits.Audit").
		Where("id = ? AND created_by_id = ?", id, userID).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *GormReportStore) GetByShareToken(ctx context.Context, token string) (*db.Report, error) {
	if token == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var report db.Report
	err := s.conn.WithContext(ctx).
		Preload("Audits", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order asc") }).
		Preload("Audits.Audit").
		Where("share_token = ?", token).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *GormReportStore) List(ctx context.Context, userID uint) ([]db.Report, error) {
	var reports []db.Report
	err := s.conn.WithContext(ctx).
		Preload("Audits", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order asc") }).
		Where("created_by_id = ?", userID).
		Order("created_at desc").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *GormReportStore) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.conn.WithContext(ctx).Model(&db.Report{}).Where("id = ?", id).Updates(fields).Error
}

// ReplaceAudits deletes the existing membership rows and rewrites them with
// dense sort orders in one transaction.
func (s *GormReportStore) ReplaceAudits(ctx context.Context, reportID uint, auditIDs []uint) error {
	return s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", reportID).Delete(&db.ReportAudit{}).Error; err != nil {
			return err
		}
		for i, auditID := range auditIDs {
			row := db.ReportAudit{
				ReportID:  reportID,
				AuditID:   auditID,
				SortOrder: i,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the report and cascades to membership rows, never to the
// underlying audits.
func (s *GormReportStore) Delete(ctx context.Context, id, userID uint) error {
	return s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND created_by_id = ?", id, userID).Delete(&db.Report{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("report_id = ?", id).Delete(&db.ReportAudit{}).Error
	})
}

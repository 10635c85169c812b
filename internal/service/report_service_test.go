package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/auditlens/seo-audit/internal/db"
	"github.com/auditlens/seo-audit/internal/store"
)

// fakeReportStore is an in-memory ReportStore with the same ordering and
// token semantics as the GORM implementation.
type fakeReportStore struct {
	nextID  uint
	reports map[uint]*db.Report
}

var _ store.ReportStore = (*fakeReportStore)(nil)

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{nextID: 1, reports: map[uint]*db.Report{}}
}

func (f *fakeReportStore) Create(ctx context.Context, report *db.Report) error {
	report.ID = f.nextID
	f.nextID++
	clone := *report
	f.reports[report.ID] = &clone
	return nil
}

func (f *fakeReportStore) get(id uint) (*db.Report, error) {
	report, ok := f.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *report
	clone.Audits = append([]db.ReportAudit(nil), report.Audits...)
	sort.Slice(clone.Audits, func(i, j int) bool {
		return clone.Audits[i].SortOrder < clone.Audits[j].SortOrder
	})
	return &clone, nil
}

func (f *fakeReportStore) GetByID(ctx context.Context, id uint) (*db.Report, error) {
	return f.get(id)
}

func (f *fakeReportStore) GetByIDForUser(ctx context.Context, id, userID uint) (*db.Report, error) {
	report, err := f.get(id)
	if err != nil {
		return nil, err
	}
	if report.CreatedByID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return report, nil
}

func (f *fakeReportStore) GetByShareToken(ctx context.Context, token string) (*db.Report, error) {
	if token == "" {
		return nil, gorm.ErrRecordNotFound
	}
	for id, report := range f.reports {
		if report.ShareToken == token {
			return f.get(id)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReportStore) List(ctx context.Context, userID uint) ([]db.Report, error) {
	var out []db.Report
	for id, report := range f.reports {
		if report.CreatedByID == userID {
			clone, _ := f.get(id)
			out = append(out, *clone)
		}
	}
	return out, nil
}

func (f *fakeReportStore) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	report, ok := f.reports[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			report.Name = v.(string)
		case "share_token":
			report.ShareToken = v.(string)
		case "pdf_url":
			report.PdfURL = v.(string)
		}
	}
	return nil
}

func (f *fakeReportStore) ReplaceAudits(ctx context.Context, reportID uint, auditIDs []uint) error {
	report, ok := f.reports[reportID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rows := make([]db.ReportAudit, len(auditIDs))
	for i, auditID := range auditIDs {
		rows[i] = db.ReportAudit{ReportID: reportID, AuditID: auditID, SortOrder: i}
	}
	report.Audits = rows
	return nil
}

func (f *fakeReportStore) Delete(ctx context.Context, id, userID uint) error {
	report, ok := f.reports[id]
	if !ok || report.CreatedByID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(f.reports, id)
	return nil
}

type mockArtifactStore struct {
	mock.Mock
}

func (m *mockArtifactStore) Upload(ctx context.Context, data []byte, suggestedName string) (string, error) {
	args := m.Called(ctx, data, suggestedName)
	return args.String(0), args.Error(1)
}

func ownedAudits(auditStore *mockAuditStore, userID uint, ids ...uint) {
	for _, id := range ids {
		auditStore.On("GetByIDForUser", mock.Anything, id, userID).
			Return(&db.Audit{ID: id, CreatedByID: userID, URL: "https://example.com/"}, nil)
	}
}

func newReportFixture(t *testing.T) (*ReportService, *fakeReportStore, *mockAuditStore, *mockArtifactStore) {
	t.Helper()
	reports := newFakeReportStore()
	audits := new(mockAuditStore)
	artifacts := new(mockArtifactStore)
	return NewReportService(reports, audits, artifacts), reports, audits, artifacts
}

func TestCreateReportAssignsDenseOrder(t *testing.T) {
	svc, _, audits, _ := newReportFixture(t)
	ownedAudits(audits, 10, 3, 1, 2)

	report, err := svc.Create(context.Background(), 10, "Q3 Review", []uint{3, 1, 2})
	require.NoError(t, err)

	require.Len(t, report.Audits, 3)
	for i, ra := range report.Audits {
		assert.Equal(t, i, ra.SortOrder)
	}
	assert.Equal(t, uint(3), report.Audits[0].AuditID)
	assert.Equal(t, uint(1), report.Audits[1].AuditID)
	assert.Equal(t, uint(2), report.Audits[2].AuditID)
}

func TestCreateReportRejectsForeignAudits(t *testing.T) {
	svc, _, audits, _ := newReportFixture(t)
	ownedAudits(audits, 10, 1)
	audits.On("GetByIDForUser", mock.Anything, uint(99), uint(10)).
		Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Create(context.Background(), 10, "Bad", []uint{1, 99})
	assert.Error(t, err)
}

func TestReorderRewritesDenseOrder(t *testing.T) {
	svc, _, audits, _ := newReportFixture(t)
	ownedAudits(audits, 10, 1, 2, 3)

	report, err := svc.Create(context.Background(), 10, "Q3 Review", []uint{1, 2, 3})
	require.NoError(t, err)

	reordered, err := svc.Reorder(context.Background(), 10, report.ID, []uint{2, 3, 1})
	require.NoError(t, err)

	assert.Equal(t, uint(2), reordered.Audits[0].AuditID)
	assert.Equal(t, uint(3), reordered.Audits[1].AuditID)
	assert.Equal(t, uint(1), reordered.Audits[2].AuditID)
	for i, ra := range reordered.Audits {
		assert.Equal(t, i, ra.SortOrder)
	}
}

func TestReorderRejectsDifferentAuditSet(t *testing.T) {
	svc, _, audits, _ := newReportFixture(t)
	ownedAudits(audits, 10, 1, 2)

	report, err := svc.Create(context.Background(), 10, "Q3 Review", []uint{1, 2})
	require.NoError(t, err)

	_, err = svc.Reorder(context.Background(), 10, report.ID, []uint{1, 3})
	assert.Error(t, err)

	_, err = svc.Reorder(context.Background(), 10, report.ID, []uint{1})
	assert.Error(t, err)

	_, err = svc.Reorder(context.Background(), 10, report.ID, []uint{1, 1})
	assert.Error(t, err)
}

func TestGenerateShareLinkIsIdempotent(t *testing.T) {
	svc, _, audits, _ := newReportFixture(t)
	ownedAudits(audits, 10, 1)

	report, err := svc.Create(context.Background(), 10, "Q3 Review", []uint{1})
	require.NoError(t, err)

	first, err := svc.GenerateShareLink(context.Background(), 10, report.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := svc.GenerateShareLink(context.Background(), 10, report.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRevokeThenRegenerateMintsNewToken(t *testing.T) {
	svc, _, audits, _ := newReportFixture(t)
	ownedAudits(audits, 10, 1)

	report, err := svc.Create(context.Background(), 10, "Q3 Review", []uint{1})
	require.NoError(t, err)

	first, err := svc.GenerateShareLink(context.Background(), 10, report.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeShareLink(context.Background(), 10, report.ID))

	// The revoked token no longer resolves.
	_, err = svc.GetShared(context.Background(), first)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	second, err := svc.GenerateShareLink(context.Background(), 10, report.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestGetSharedResolvesToken(t *testing.T) {
	svc, _, audits, _ := newReportFixture(t)
	ownedAudits(audits, 10, 1)

	report, err := svc.Create(context.Background(), 10, "Q3 Review", []uint{1})
	require.NoError(t, err)

	token, err := svc.GenerateShareLink(context.Background(), 10, report.ID)
	require.NoError(t, err)

	shared, err := svc.GetShared(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, report.ID, shared.ID)

	_, err = svc.GetShared(context.Background(), "")
	assert.Error(t, err)
}

func TestGeneratePDFUploadsAndPersists(t *testing.T) {
	svc, reports, audits, artifacts := newReportFixture(t)
	ownedAudits(audits, 10, 1)

	report, err := svc.Create(context.Background(), 10, "Q3 Review", []uint{1})
	require.NoError(t, err)

	svc.SetPDFRenderer(func(r *db.Report, a []db.Audit) ([]byte, error) {
		return []byte("pdf-bytes"), nil
	})
	artifacts.On("Upload", mock.Anything, []byte("pdf-bytes"), mock.Anything).
		Return("http://files/report-1.pdf", nil)

	url, err := svc.GeneratePDF(context.Background(), 10, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://files/report-1.pdf", url)

	stored, err := reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://files/report-1.pdf", stored.PdfURL)
}

func TestGeneratePDFRenderFailureDoesNotUpload(t *testing.T) {
	svc, _, audits, artifacts := newReportFixture(t)
	ownedAudits(audits, 10, 1)

	report, err := svc.Create(context.Background(), 10, "Q3 Review", []uint{1})
	require.NoError(t, err)

	svc.SetPDFRenderer(func(r *db.Report, a []db.Audit) ([]byte, error) {
		return nil, errors.New("render failed")
	})

	_, err = svc.GeneratePDF(context.Background(), 10, report.ID)
	assert.Error(t, err)
	artifacts.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteReportLeavesAuditsAlone(t *testing.T) {
	svc, reports, audits, _ := newReportFixture(t)
	ownedAudits(audits, 10, 1, 2)

	report, err := svc.Create(context.Background(), 10, "Q3 Review", []uint{1, 2})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 10, report.ID))
	_, err = reports.GetByID(context.Background(), report.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Audit deletion never went through the audit store.
	audits.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

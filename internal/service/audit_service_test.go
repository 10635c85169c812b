package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/auditlens/seo-audit/internal/db"
	"github.com/auditlens/seo-audit/internal/store"
)

type mockAuditStore struct {
	mock.Mock
}

var _ store.AuditStore = (*mockAuditStore)(nil)

func (m *mockAuditStore) Create(ctx context.Context, audit *db.Audit) error {
	args := m.Called(ctx, audit)
	if args.Error(0) == nil && audit.ID == 0 {
		audit.ID = 1
	}
	return args.Error(0)
}

func (m *mockAuditStore) GetByID(ctx context.Context, id uint) (*db.Audit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.Audit), args.Error(1)
}

func (m *mockAuditStore) GetByIDForUser(ctx context.Context, id, userID uint) (*db.Audit, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.Audit), args.Error(1)
}

func (m *mockAuditStore) List(ctx context.Context, userID uint, filter store.AuditListFilter) ([]db.Audit, int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]db.Audit), args.Get(1).(int64), args.Error(2)
}

func (m *mockAuditStore) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *mockAuditStore) Delete(ctx context.Context, id, userID uint) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockAuditStore) AppendStatusChange(ctx context.Context, change *db.StatusChange) error {
	return m.Called(ctx, change).Error(0)
}

func (m *mockAuditStore) StatusHistory(ctx context.Context, auditID uint) ([]db.StatusChange, error) {
	args := m.Called(ctx, auditID)
	return args.Get(0).([]db.StatusChange), args.Error(1)
}

type mockEnqueuer struct {
	mock.Mock
}

var _ WorkflowEnqueuer = (*mockEnqueuer)(nil)

func (m *mockEnqueuer) EnqueueAudit(ctx context.Context, auditID uint, url string) error {
	return m.Called(ctx, auditID, url).Error(0)
}

func (m *mockEnqueuer) EnqueueSitemap(ctx context.Context, auditID uint, sitemapURL string) error {
	return m.Called(ctx, auditID, sitemapURL).Error(0)
}

func (m *mockEnqueuer) EnqueueSigned(ctx context.Context, auditID uint) error {
	return m.Called(ctx, auditID).Error(0)
}

func TestTransitionStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    db.AuditStatus
		to      db.AuditStatus
		effects []Effect
		wantErr bool
	}{
		{"proposal to signed fires workflow", db.StatusProposal, db.StatusSigned, []Effect{EffectSignedWorkflow}, false},
		{"initial call to signed fires workflow", db.StatusInitialCall, db.StatusSigned, []Effect{EffectSignedWorkflow}, false},
		{"signed to signed fires nothing", db.StatusSigned, db.StatusSigned, nil, false},
		{"signed to completed fires nothing", db.StatusSigned, db.StatusCompleted, nil, false},
		{"proposal to in progress fires nothing", db.StatusProposal, db.StatusInProgress, nil, false},
		{"unknown status rejected", db.StatusProposal, db.AuditStatus("bogus"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effects, err := TransitionStatus(tt.from, tt.to)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.effects, effects)
		})
	}
}

func TestCreateAuditEnqueuesWorkflow(t *testing.T) {
	audits := new(mockAuditStore)
	enqueuer := new(mockEnqueuer)
	svc := NewAuditService(audits, enqueuer)

	audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	audits.On("AppendStatusChange", mock.Anything, mock.Anything).Return(nil)
	enqueuer.On("EnqueueAudit", mock.Anything, uint(1), "https://example.com/").Return(nil)

	audit, err := svc.Create(context.Background(), 10, CreateAuditInput{
		URL:        "https://example.com/",
		ClientName: "Acme Co",
	})
	require.NoError(t, err)

	assert.Equal(t, db.StatusInProgress, audit.Status)
	assert.False(t, audit.IsSitemapAudit)
	enqueuer.AssertCalled(t, "EnqueueAudit", mock.Anything, uint(1), "https://example.com/")
	enqueuer.AssertNotCalled(t, "EnqueueSitemap", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateSitemapAuditRequiresXMLSuffix(t *testing.T) {
	audits := new(mockAuditStore)
	enqueuer := new(mockEnqueuer)
	svc := NewAuditService(audits, enqueuer)

	_, err := svc.Create(context.Background(), 10, CreateAuditInput{
		URL:         "https://example.com/sitemap.html",
		SitemapMode: true,
	})
	assert.Error(t, err)
	audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	audits.On("AppendStatusChange", mock.Anything, mock.Anything).Return(nil)
	enqueuer.On("EnqueueSitemap", mock.Anything, uint(1), "https://example.com/sitemap.xml").Return(nil)

	audit, err := svc.Create(context.Background(), 10, CreateAuditInput{
		URL:         "https://example.com/sitemap.xml",
		SitemapMode: true,
	})
	require.NoError(t, err)
	assert.True(t, audit.IsSitemapAudit)
}

func TestCreateAuditRejectsBadURLs(t *testing.T) {
	audits := new(mockAuditStore)
	enqueuer := new(mockEnqueuer)
	svc := NewAuditService(audits, enqueuer)

	for _, bad := range []string{"", "not-a-url", "ftp://example.com/x", "/relative/path"} {
		_, err := svc.Create(context.Background(), 10, CreateAuditInput{URL: bad})
		assert.Error(t, err, "url %q", bad)
	}
	audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateToSignedEnqueuesSignedWorkflowOnce(t *testing.T) {
	audits := new(mockAuditStore)
	enqueuer := new(mockEnqueuer)
	svc := NewAuditService(audits, enqueuer)

	existing := &db.Audit{ID: 5, CreatedByID: 10, URL: "https://example.com/", Status: db.StatusInitialCall}
	audits.On("GetByIDForUser", mock.Anything, uint(5), uint(10)).Return(existing, nil)
	audits.On("UpdateFields", mock.Anything, uint(5), mock.Anything).Return(nil)
	audits.On("AppendStatusChange", mock.Anything, mock.Anything).Return(nil)
	enqueuer.On("EnqueueSigned", mock.Anything, uint(5)).Return(nil)

	signed := db.StatusSigned
	_, err := svc.Update(context.Background(), 10, 5, UpdateAuditInput{Status: &signed})
	require.NoError(t, err)

	enqueuer.AssertNumberOfCalls(t, "EnqueueSigned", 1)
}

func TestResavingSignedAuditDoesNotRetrigger(t *testing.T) {
	audits := new(mockAuditStore)
	enqueuer := new(mockEnqueuer)
	svc := NewAuditService(audits, enqueuer)

	existing := &db.Audit{ID: 5, CreatedByID: 10, URL: "https://example.com/", Status: db.StatusSigned}
	audits.On("GetByIDForUser", mock.Anything, uint(5), uint(10)).Return(existing, nil)
	audits.On("UpdateFields", mock.Anything, uint(5), mock.Anything).Return(nil)

	name := "Acme Renamed"
	signed := db.StatusSigned
	_, err := svc.Update(context.Background(), 10, 5, UpdateAuditInput{
		ClientName: &name,
		Status:     &signed,
	})
	require.NoError(t, err)

	enqueuer.AssertNotCalled(t, "EnqueueSigned", mock.Anything, mock.Anything)
	// Unchanged status writes no status-log row either.
	audits.AssertNotCalled(t, "AppendStatusChange", mock.Anything, mock.Anything)
}

func TestUpdateRecordsStatusChange(t *testing.T) {
	audits := new(mockAuditStore)
	enqueuer := new(mockEnqueuer)
	svc := NewAuditService(audits, enqueuer)

	existing := &db.Audit{ID: 5, CreatedByID: 10, URL: "https://example.com/", Status: db.StatusProposal}
	audits.On("GetByIDForUser", mock.Anything, uint(5), uint(10)).Return(existing, nil)
	audits.On("UpdateFields", mock.Anything, uint(5), mock.Anything).Return(nil)

	var change *db.StatusChange
	audits.On("AppendStatusChange", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			change = args.Get(1).(*db.StatusChange)
		}).
		Return(nil)

	next := db.StatusInitialCall
	_, err := svc.Update(context.Background(), 10, 5, UpdateAuditInput{Status: &next})
	require.NoError(t, err)

	require.NotNil(t, change)
	assert.Equal(t, db.StatusProposal, change.FromStatus)
	assert.Equal(t, db.StatusInitialCall, change.ToStatus)
	assert.Equal(t, uint(10), change.ChangedByID)
}

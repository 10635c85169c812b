package workflow

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/auditlens/seo-audit/internal/analyzer"
	"github.com/auditlens/seo-audit/internal/capture"
	"github.com/auditlens/seo-audit/internal/db"
	"github.com/auditlens/seo-audit/internal/keywords"
	"github.com/auditlens/seo-audit/internal/notify"
	"github.com/auditlens/seo-audit/internal/sitemap"
	"github.com/auditlens/seo-audit/internal/store"
)

type mockAuditStore struct {
	mock.Mock
}

var _ store.AuditStore = (*mockAuditStore)(nil)

func (m *mockAuditStore) Create(ctx context.Context, audit *db.Audit) error {
	return m.Called(ctx, audit).Error(0)
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

type mockPageCapture struct {
	mock.Mock
}

var _ capture.PageCapture = (*mockPageCapture)(nil)

func (m *mockPageCapture) Capture(ctx context.Context, url string) (*capture.Result, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*capture.Result), args.Error(1)
}

type mockAnalyzer struct {
	mock.Mock
}

var _ analyzer.Analyzer = (*mockAnalyzer)(nil)

func (m *mockAnalyzer) CritiqueDesign(ctx context.Context, desktop, mobile []byte, dctx analyzer.DesignContext) (*analyzer.DesignCritique, error) {
	args := m.Called(ctx, desktop, mobile, dctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analyzer.DesignCritique), args.Error(1)
}

func (m *mockAnalyzer) FindContentGaps(ctx context.Context, urls []string, domain string) (*analyzer.ContentGapReport, error) {
	args := m.Called(ctx, urls, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analyzer.ContentGapReport), args.Error(1)
}

func (m *mockAnalyzer) SynthesizeStrategy(ctx context.Context, input analyzer.StrategyInput, dataset *keywords.DomainData) (string, error) {
	args := m.Called(ctx, input, dataset)
	return args.String(0), args.Error(1)
}

type mockArtifactStore struct {
	mock.Mock
}

func (m *mockArtifactStore) Upload(ctx context.Context, data []byte, suggestedName string) (string, error) {
	args := m.Called(ctx, data, suggestedName)
	return args.String(0), args.Error(1)
}

type mockKeywordSource struct {
	mock.Mock
}

var _ keywords.Source = (*mockKeywordSource)(nil)

func (m *mockKeywordSource) Fetch(ctx context.Context, domain string) (*keywords.DomainData, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keywords.DomainData), args.Error(1)
}

type mockSitemapSource struct {
	mock.Mock
}

var _ sitemap.Source = (*mockSitemapSource)(nil)

func (m *mockSitemapSource) FetchAllURLs(ctx context.Context, sitemapURL string) ([]sitemap.Entry, error) {
	args := m.Called(ctx, sitemapURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sitemap.Entry), args.Error(1)
}

type mockEmailSender struct {
	mock.Mock
}

var _ notify.EmailSender = (*mockEmailSender)(nil)

func (m *mockEmailSender) Email(ctx context.Context, recipients []string, subject, htmlBody string) error {
	return m.Called(ctx, recipients, subject, htmlBody).Error(0)
}

type mockChatSender struct {
	mock.Mock
}

var _ notify.ChatSender = (*mockChatSender)(nil)

func (m *mockChatSender) Chat(ctx context.Context, channel, summary string, buttons []notify.ActionButton) error {
	return m.Called(ctx, channel, summary, buttons).Error(0)
}

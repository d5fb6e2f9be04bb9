package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportai/internal/model"
)

type memCompanyRepo struct {
	companies map[string]*model.CompanyInfo
}

func (r *memCompanyRepo) GetByID(_ context.Context, id string) (*model.CompanyInfo, error) {
	return r.companies[id], nil
}

func (r *memCompanyRepo) Upsert(_ context.Context, company *model.CompanyInfo) error {
	r.companies[company.ID] = company
	return nil
}

type memReportRepo struct {
	mu      sync.Mutex
	reports map[string]*model.Report
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{reports: make(map[string]*model.Report)}
}

func (r *memReportRepo) Create(_ context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *report
	r.reports[report.ID] = &clone
	return nil
}

func (r *memReportRepo) GetByID(_ context.Context, id string) (*model.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if report, ok := r.reports[id]; ok {
		clone := *report
		return &clone, nil
	}
	return nil, nil
}

func (r *memReportRepo) ListByCompany(_ context.Context, companyID string, _ int) ([]model.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Report
	for _, report := range r.reports {
		if report.CompanyID == companyID {
			out = append(out, *report)
		}
	}
	return out, nil
}

func (r *memReportRepo) MarkGenerating(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[id].Status = model.ReportGenerating
	return nil
}

func (r *memReportRepo) MarkReady(_ context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	report.Status = model.ReportReady
	report.ReadyAt = &now
	stored := r.reports[report.ID]
	stored.Status = model.ReportReady
	stored.Strategy = report.Strategy
	stored.Content = report.Content
	stored.PromptVersion = report.PromptVersion
	stored.ExpertSlugs = report.ExpertSlugs
	stored.InputTokens = report.InputTokens
	stored.OutputTokens = report.OutputTokens
	stored.ReadyAt = &now
	return nil
}

func (r *memReportRepo) MarkFailed(_ context.Context, id, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[id].Status = model.ReportFailed
	r.reports[id].Error = errMsg
	return nil
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	stages []string
}

func (b *recordingBroadcaster) BroadcastProgress(_ string, stage string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stages = append(b.stages, stage)
}

func (b *recordingBroadcaster) DisconnectReport(string) {}

func newTestReportService(client ModelClient) (*ReportService, *memReportRepo, *recordingBroadcaster) {
	assembler, _, _ := newTestAssembler()
	companies := &memCompanyRepo{companies: map[string]*model.CompanyInfo{
		"c1": {ID: "c1", Name: "Metro Media", Industry: "automotive"},
	}}
	reports := newMemReportRepo()
	svc := NewReportService(
		assembler,
		NewComplexityService(),
		NewOrchestratorService(client, testAIConfig()),
		companies,
		reports,
		testAIConfig(),
	)
	broadcaster := &recordingBroadcaster{}
	svc.SetBroadcaster(broadcaster)
	return svc, reports, broadcaster
}

func simpleRequest() ReportRequest {
	return ReportRequest{
		CompanyID: "c1",
		Campaign:  model.CampaignInfo{Name: "Spring Sale", OrderID: "ORD-1"},
		Tactics: []model.DetectedTactic{
			{Platform: "facebook", TacticType: "link_click", MatchConfidence: 0.95},
		},
	}
}

func multiAgentRequest() ReportRequest {
	req := simpleRequest()
	req.Tactics = append(req.Tactics,
		model.DetectedTactic{Platform: "google_ads", TacticType: "search", MatchConfidence: 0.9})
	return req
}

func TestCreateReportPersistsPendingRow(t *testing.T) {
	svc, reports, _ := newTestReportService(&recordingClient{})

	report, err := svc.CreateReport(context.Background(), simpleRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, model.ReportPending, report.Status)
	assert.Equal(t, DefaultPromptSlug, report.PromptSlug)

	stored, err := reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "ORD-1", stored.OrderID)
}

func TestCreateReportUnknownCompany(t *testing.T) {
	svc, _, _ := newTestReportService(&recordingClient{})

	req := simpleRequest()
	req.CompanyID = "ghost"
	_, err := svc.CreateReport(context.Background(), req)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestGenerateSingleCall(t *testing.T) {
	client := &recordingClient{}
	svc, reports, broadcaster := newTestReportService(client)

	report, err := svc.CreateReport(context.Background(), simpleRequest())
	require.NoError(t, err)

	svc.Generate(context.Background(), report.ID, simpleRequest())

	stored, err := reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportReady, stored.Status)
	assert.Equal(t, model.StrategySingleCall, stored.Strategy)
	assert.Equal(t, "analysis for single-model", stored.Content)
	assert.Equal(t, 3, stored.PromptVersion)
	assert.Empty(t, stored.ExpertSlugs)
	assert.NotNil(t, stored.ReadyAt)

	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, []string{StageAssembling, StageReady}, broadcaster.stages)
}

func TestGenerateMultiAgent(t *testing.T) {
	client := &recordingClient{}
	svc, reports, broadcaster := newTestReportService(client)

	report, err := svc.CreateReport(context.Background(), multiAgentRequest())
	require.NoError(t, err)

	svc.Generate(context.Background(), report.ID, multiAgentRequest())

	stored, err := reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportReady, stored.Status)
	assert.Equal(t, model.StrategyMultiAgent, stored.Strategy)
	assert.Equal(t, []string{"paid-social", "search"}, stored.ExpertSlugs)
	assert.Equal(t, "analysis for synthesis-model", stored.Content)
	assert.Equal(t, 300, stored.InputTokens)

	assert.Equal(t, []string{StageAssembling, StageExperts, StageSynthesizing, StageReady}, broadcaster.stages)
}

func TestGenerateModelFailureMarksFailed(t *testing.T) {
	client := &recordingClient{
		failWhen: func(InvokeRequest) error {
			return &InvokeError{Kind: InvokeErrAuth, Status: 401, Err: errors.New("bad key")}
		},
	}
	svc, reports, broadcaster := newTestReportService(client)

	report, err := svc.CreateReport(context.Background(), simpleRequest())
	require.NoError(t, err)

	svc.Generate(context.Background(), report.ID, simpleRequest())

	stored, err := reports.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportFailed, stored.Status)
	assert.Contains(t, stored.Error, "auth")
	assert.Empty(t, stored.Content)

	assert.Equal(t, StageFailed, broadcaster.stages[len(broadcaster.stages)-1])
}

func TestAssessComplexityPassthrough(t *testing.T) {
	svc, _, _ := newTestReportService(&recordingClient{})

	assessment := svc.AssessComplexity(multiAgentRequest().Tactics)
	assert.True(t, assessment.RequiresMultiAgent)
	assert.Equal(t, []string{"paid-social", "search"}, assessment.RecommendedExperts)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"reportai/internal/config"
	"reportai/internal/model"
	"reportai/internal/repository"
)

// ErrCompanyNotFound means the report request named a company that was
// never configured
var ErrCompanyNotFound = errors.New("company not found")

// Report generation stages pushed over the progress broadcaster
const (
	StageAssembling   = "assembling"
	StageExperts      = "experts_running"
	StageSynthesizing = "synthesizing"
	StageReady        = "ready"
	StageFailed       = "failed"
)

// ReportRequest is the payload that kicks off one report generation
type ReportRequest struct {
	CompanyID   string                 `json:"companyId"`
	PromptSlug  string                 `json:"promptSlug,omitempty"`
	Campaign    model.CampaignInfo     `json:"campaign"`
	Tactics     []model.DetectedTactic `json:"tactics"`
	Performance *model.FileDataset     `json:"performance,omitempty"`
	Pacing      *model.FileDataset     `json:"pacing,omitempty"`
}

// ReportService owns the report lifecycle: create the pending row, run
// assembly and orchestration, persist the outcome
type ReportService struct {
	assembler    *ContextAssembler
	complexity   *ComplexityService
	orchestrator *OrchestratorService
	companyRepo  repository.CompanyRepo
	reportRepo   repository.ReportRepo
	cfg          *config.AIConfig
	progress     ProgressBroadcaster
}

// NewReportService creates a new report service
func NewReportService(
	assembler *ContextAssembler,
	complexity *ComplexityService,
	orchestrator *OrchestratorService,
	companyRepo repository.CompanyRepo,
	reportRepo repository.ReportRepo,
	cfg *config.AIConfig,
) *ReportService {
	return &ReportService{
		assembler:    assembler,
		complexity:   complexity,
		orchestrator: orchestrator,
		companyRepo:  companyRepo,
		reportRepo:   reportRepo,
		cfg:          cfg,
	}
}

// SetBroadcaster wires the WebSocket hub after construction
func (s *ReportService) SetBroadcaster(b ProgressBroadcaster) {
	s.progress = b
}

// CreateReport validates the request, persists a pending report row, and
// returns it. Generation runs separately so the HTTP response is fast.
func (s *ReportService) CreateReport(ctx context.Context, req ReportRequest) (*model.Report, error) {
	company, err := s.companyRepo.GetByID(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}

	slug := req.PromptSlug
	if slug == "" {
		slug = DefaultPromptSlug
	}

	report := &model.Report{
		ID:         uuid.New().String(),
		CompanyID:  req.CompanyID,
		OrderID:    req.Campaign.OrderID,
		Status:     model.ReportPending,
		PromptSlug: slug,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Generate runs the full pipeline for a previously created report. Meant
// to be called from a goroutine; failures land on the report row, not the
// caller.
func (s *ReportService) Generate(ctx context.Context, reportID string, req ReportRequest) {
	start := time.Now()
	log.Printf("[Report] Generating report %s for order %s", reportID, req.Campaign.OrderID)

	if err := s.reportRepo.MarkGenerating(ctx, reportID); err != nil {
		log.Printf("[Report] Failed to mark report %s generating: %v", reportID, err)
		return
	}

	report, err := s.generate(ctx, reportID, req)
	if err != nil {
		log.Printf("[Report] Report %s failed: %v", reportID, err)
		if dbErr := s.reportRepo.MarkFailed(ctx, reportID, err.Error()); dbErr != nil {
			log.Printf("[Report] Failed to persist failure for %s: %v", reportID, dbErr)
		}
		s.broadcast(reportID, StageFailed, map[string]string{"error": err.Error()})
		return
	}

	if err := s.reportRepo.MarkReady(ctx, report); err != nil {
		log.Printf("[Report] Failed to persist report %s: %v", reportID, err)
		return
	}

	log.Printf("[Report] Report %s ready in %s (strategy %s, %d in / %d out tokens)",
		reportID, time.Since(start).Round(time.Millisecond), report.Strategy,
		report.InputTokens, report.OutputTokens)
	s.broadcast(reportID, StageReady, map[string]string{"reportId": reportID})
}

func (s *ReportService) generate(ctx context.Context, reportID string, req ReportRequest) (*model.Report, error) {
	company, err := s.companyRepo.GetByID(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}

	assessment := s.complexity.Assess(req.Tactics)

	s.broadcast(reportID, StageAssembling, nil)
	actx, err := s.assembler.Assemble(ctx, AssembleOptions{
		PromptSlug:  req.PromptSlug,
		Platforms:   assessment.UniquePlatforms,
		Industry:    company.Industry,
		Tactics:     req.Tactics,
		Campaign:    req.Campaign,
		Company:     *company,
		Performance: req.Performance,
		Pacing:      req.Pacing,
	})
	if err != nil {
		return nil, err
	}

	input := AnalysisInput{
		SystemPrompt: actx.SystemPrompt,
		CachedBlocks: s.assembler.CacheableBlocks(actx),
		Prompt:       s.assembler.BuildPrompt(actx, s.cfg.TokenBudget),
	}

	report := &model.Report{
		ID:            reportID,
		CompanyID:     req.CompanyID,
		OrderID:       req.Campaign.OrderID,
		PromptSlug:    actx.PromptSlug,
		PromptVersion: actx.PromptVersion,
	}

	if assessment.RequiresMultiAgent {
		s.broadcast(reportID, StageExperts, map[string]interface{}{
			"experts": assessment.RecommendedExperts,
		})
		result, err := s.orchestrator.RunMultiAgent(ctx, assessment.RecommendedExperts, input)
		if err == nil {
			s.broadcast(reportID, StageSynthesizing, nil)
			report.Strategy = model.StrategyMultiAgent
			report.Content = result.Content
			report.ExpertSlugs = assessment.RecommendedExperts
			report.InputTokens = result.Usage.InputTokens
			report.OutputTokens = result.Usage.OutputTokens
			return report, nil
		}
		if !errors.Is(err, ErrNoExperts) {
			return nil, fmt.Errorf("multi-agent run: %w", err)
		}
		log.Printf("[Report] Report %s matched no experts, falling back to single call", reportID)
	}

	result, err := s.orchestrator.RunSingleCall(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("single-call run: %w", err)
	}
	report.Strategy = model.StrategySingleCall
	report.Content = result.Text
	report.InputTokens = result.Usage.InputTokens
	report.OutputTokens = result.Usage.OutputTokens
	return report, nil
}

// GetReport retrieves one report row
func (s *ReportService) GetReport(ctx context.Context, id string) (*model.Report, error) {
	return s.reportRepo.GetByID(ctx, id)
}

// ListReports returns the most recent reports for a company
func (s *ReportService) ListReports(ctx context.Context, companyID string, limit int) ([]model.Report, error) {
	return s.reportRepo.ListByCompany(ctx, companyID, limit)
}

// AssessComplexity exposes the routing decision without generating,
// so the UI can preview which experts a campaign would get
func (s *ReportService) AssessComplexity(tactics []model.DetectedTactic) model.ComplexityAssessment {
	return s.complexity.Assess(tactics)
}

func (s *ReportService) broadcast(reportID, stage string, payload interface{}) {
	if s.progress == nil {
		return
	}
	s.progress.BroadcastProgress(reportID, stage, payload)
}

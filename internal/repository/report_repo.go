package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reportai/internal/model"
)

// ReportRepo is the postgres system of record for generated reports
type ReportRepo interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id string) (*model.Report, error)
	ListByCompany(ctx context.Context, companyID string, limit int) ([]model.Report, error)
	MarkGenerating(ctx context.Context, id string) error
	MarkReady(ctx context.Context, report *model.Report) error
	MarkFailed(ctx context.Context, id, errMsg string) error
}

type reportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepo creates a new report repository
func NewReportRepo(pool *pgxpool.Pool) ReportRepo {
	return &reportRepo{pool: pool}
}

const reportColumns = `id, company_id, order_id, status, strategy, content,
	prompt_slug, prompt_version, expert_slugs, input_tokens, output_tokens,
	error, created_at, updated_at, ready_at`

func (r *reportRepo) Create(ctx context.Context, report *model.Report) error {
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO reports (id, company_id, order_id, status, prompt_slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		report.ID, report.CompanyID, report.OrderID, report.Status,
		report.PromptSlug, report.CreatedAt, report.UpdatedAt)
	return err
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (*model.Report, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)

	report, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *reportRepo) ListByCompany(ctx context.Context, companyID string, limit int) ([]model.Report, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+reportColumns+` FROM reports
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

func (r *reportRepo) MarkGenerating(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE reports SET status = $1, updated_at = $2 WHERE id = $3`,
		model.ReportGenerating, time.Now(), id)
	return err
}

func (r *reportRepo) MarkReady(ctx context.Context, report *model.Report) error {
	now := time.Now()
	report.Status = model.ReportReady
	report.UpdatedAt = now
	report.ReadyAt = &now

	_, err := r.pool.Exec(ctx, `
		UPDATE reports SET
			status = $1, strategy = $2, content = $3, prompt_version = $4,
			expert_slugs = $5, input_tokens = $6, output_tokens = $7,
			updated_at = $8, ready_at = $9
		WHERE id = $10`,
		report.Status, report.Strategy, report.Content, report.PromptVersion,
		report.ExpertSlugs, report.InputTokens, report.OutputTokens,
		report.UpdatedAt, report.ReadyAt, report.ID)
	return err
}

func (r *reportRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE reports SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		model.ReportFailed, errMsg, time.Now(), id)
	return err
}

func scanReport(row pgx.Row) (*model.Report, error) {
	var report model.Report
	var strategy, content, errMsg *string
	var readyAt *time.Time

	err := row.Scan(
		&report.ID, &report.CompanyID, &report.OrderID, &report.Status,
		&strategy, &content, &report.PromptSlug, &report.PromptVersion,
		&report.ExpertSlugs, &report.InputTokens, &report.OutputTokens,
		&errMsg, &report.CreatedAt, &report.UpdatedAt, &readyAt)
	if err != nil {
		return nil, err
	}

	if strategy != nil {
		report.Strategy = model.Strategy(*strategy)
	}
	if content != nil {
		report.Content = *content
	}
	if errMsg != nil {
		report.Error = *errMsg
	}
	report.ReadyAt = readyAt
	return &report, nil
}

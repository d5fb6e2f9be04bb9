package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reportai/internal/model"
)

// CompanyRepo stores the media company configuration used during assembly
type CompanyRepo interface {
	GetByID(ctx context.Context, id string) (*model.CompanyInfo, error)
	Upsert(ctx context.Context, company *model.CompanyInfo) error
}

type companyRepo struct {
	pool *pgxpool.Pool
}

// NewCompanyRepo creates a new company repository
func NewCompanyRepo(pool *pgxpool.Pool) CompanyRepo {
	return &companyRepo{pool: pool}
}

func (r *companyRepo) GetByID(ctx context.Context, id string) (*model.CompanyInfo, error) {
	var company model.CompanyInfo
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, industry, website, custom_instructions
		FROM companies WHERE id = $1`, id).Scan(
		&company.ID, &company.Name, &company.Industry,
		&company.Website, &company.CustomInstructions)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepo) Upsert(ctx context.Context, company *model.CompanyInfo) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO companies (id, name, industry, website, custom_instructions, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			industry = EXCLUDED.industry,
			website = EXCLUDED.website,
			custom_instructions = EXCLUDED.custom_instructions,
			updated_at = EXCLUDED.updated_at`,
		company.ID, company.Name, company.Industry, company.Website,
		company.CustomInstructions, time.Now())
	return err
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"ghostpass/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RevenueProfileRepo implements ports.RevenueProfileRepository.
type RevenueProfileRepo struct {
	pool Pool
}

// NewRevenueProfileRepo creates a new RevenueProfileRepo.
func NewRevenueProfileRepo(pool Pool) *RevenueProfileRepo {
	return &RevenueProfileRepo{pool: pool}
}

const profileColumns = `id, name, valid_pct, vendor_pct, pool_pct, promoter_pct, executive_pct, residual, created_at, updated_at`

// Create inserts a new revenue profile.
func (r *RevenueProfileRepo) Create(ctx context.Context, p *domain.RevenueProfile) error {
	query := `INSERT INTO revenue_profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.ValidPct, p.VendorPct, p.PoolPct, p.PromoterPct, p.ExecutivePct,
		p.Residual, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert revenue profile: %w", err)
	}
	return nil
}

// GetByID fetches a revenue profile by UUID.
func (r *RevenueProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RevenueProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM revenue_profiles WHERE id = $1`

	p := &domain.RevenueProfile{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.ValidPct, &p.VendorPct, &p.PoolPct, &p.PromoterPct, &p.ExecutivePct,
		&p.Residual, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get revenue profile: %w", err)
	}
	return p, nil
}

// Update overwrites a profile's shares and residual category.
func (r *RevenueProfileRepo) Update(ctx context.Context, p *domain.RevenueProfile) error {
	query := `UPDATE revenue_profiles SET name = $1, valid_pct = $2, vendor_pct = $3, pool_pct = $4,
		promoter_pct = $5, executive_pct = $6, residual = $7, updated_at = NOW() WHERE id = $8`

	tag, err := r.pool.Exec(ctx, query,
		p.Name, p.ValidPct, p.VendorPct, p.PoolPct, p.PromoterPct, p.ExecutivePct, p.Residual, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update revenue profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("revenue profile not found: %s", p.ID)
	}
	return nil
}

// List fetches all revenue profiles by name.
func (r *RevenueProfileRepo) List(ctx context.Context) ([]domain.RevenueProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM revenue_profiles ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list revenue profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.RevenueProfile
	for rows.Next() {
		p := domain.RevenueProfile{}
		err := rows.Scan(
			&p.ID, &p.Name, &p.ValidPct, &p.VendorPct, &p.PoolPct, &p.PromoterPct, &p.ExecutivePct,
			&p.Residual, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan revenue profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revenue profile rows: %w", err)
	}
	return profiles, nil
}

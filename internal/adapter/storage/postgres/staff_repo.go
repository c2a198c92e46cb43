package postgres

import (
	"context"
	"errors"
	"fmt"

	"ghostpass/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StaffRepo implements ports.StaffRepository.
type StaffRepo struct {
	pool Pool
}

// NewStaffRepo creates a new StaffRepo.
func NewStaffRepo(pool Pool) *StaffRepo {
	return &StaffRepo{pool: pool}
}

const staffColumns = `id, username, password_hash, display_name, role, venue_id, revenue_profile_id, status, created_at, updated_at`

func scanStaff(row pgx.Row) (*domain.StaffAccount, error) {
	a := &domain.StaffAccount{}
	err := row.Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.DisplayName, &a.Role,
		&a.VenueID, &a.RevenueProfileID, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Create inserts a new staff account.
func (r *StaffRepo) Create(ctx context.Context, a *domain.StaffAccount) error {
	query := `INSERT INTO staff_accounts (` + staffColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Username, a.PasswordHash, a.DisplayName, a.Role,
		a.VenueID, a.RevenueProfileID, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert staff account: %w", err)
	}
	return nil
}

// GetByID fetches a staff account by UUID.
func (r *StaffRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffAccount, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_accounts WHERE id = $1`

	a, err := scanStaff(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get staff account by id: %w", err)
	}
	return a, nil
}

// GetByUsername fetches a staff account by username.
func (r *StaffRepo) GetByUsername(ctx context.Context, username string) (*domain.StaffAccount, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_accounts WHERE username = $1`

	a, err := scanStaff(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("get staff account by username: %w", err)
	}
	return a, nil
}

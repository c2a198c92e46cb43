package service

import (
	"context"
	"fmt"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService for staff dashboard accounts.
type AuthServiceImpl struct {
	staffRepo ports.StaffRepository
	hash      ports.HashService
	token     ports.TokenService
	audit     ports.AuditService
	log       zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	staffRepo ports.StaffRepository,
	hash ports.HashService,
	token ports.TokenService,
	audit ports.AuditService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		staffRepo: staffRepo,
		hash:      hash,
		token:     token,
		audit:     audit,
		log:       log,
	}
}

// Register creates a staff account with an Argon2id password hash.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*domain.StaffAccount, error) {
	switch req.Role {
	case domain.RoleAdmin, domain.RoleVenue, domain.RoleVendor:
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown role %q", req.Role))
	}
	if req.Role == domain.RoleVendor && req.RevenueProfileID == nil {
		return nil, apperror.Validation("vendor accounts require a revenue profile")
	}

	existing, err := s.staffRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	passwordHash, err := s.hash.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	account := &domain.StaffAccount{
		ID:               uuid.New(),
		Username:         req.Username,
		PasswordHash:     passwordHash,
		DisplayName:      req.DisplayName,
		Role:             req.Role,
		VenueID:          req.VenueID,
		RevenueProfileID: req.RevenueProfileID,
		Status:           domain.StaffStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.staffRepo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create staff account: %w", err))
	}

	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		ActorID:      &account.ID,
		Action:       domain.AuditActionRegister,
		ResourceType: "staff_account",
		ResourceID:   account.ID.String(),
		CreatedAt:    now,
	})

	s.log.Info().
		Str("account_id", account.ID.String()).
		Str("role", string(account.Role)).
		Msg("staff account registered")

	return account, nil
}

// Login verifies credentials and issues a JWT.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	account, err := s.staffRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("lookup username: %w", err))
	}
	if account == nil || !account.IsActive() {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hash.Verify(password, account.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.token.Generate(account)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		ActorID:      &account.ID,
		Action:       domain.AuditActionLogin,
		ResourceType: "staff_account",
		ResourceID:   account.ID.String(),
		CreatedAt:    time.Now().UTC(),
	})

	return token, expiresAt, nil
}

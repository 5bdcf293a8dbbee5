package services

import (
	"context"
	"errors"

	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/adapters/persistence/repositories"
	"nja-ledger/internal/config"
	"nja-ledger/internal/pkg/jwt"
	"nja-ledger/internal/pkg/password"

	"gorm.io/gorm"
)

// Auth service errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is pending approval")
)

// AuthService is the authentication boundary. It only resolves who the
// actor is and issues a token carrying that identity; every capability
// decision past this point belongs to the ledger services.
type AuthService struct {
	memberRepo *repositories.MemberRepository
	cfg        *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(memberRepo *repositories.MemberRepository, cfg *config.Config) *AuthService {
	return &AuthService{memberRepo: memberRepo, cfg: cfg}
}

// Login verifies credentials and returns an access token
func (s *AuthService) Login(ctx context.Context, email, pass string) (string, *models.Member, error) {
	member, err := s.memberRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !password.Verify(pass, member.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	if !member.IsActive {
		return "", nil, ErrAccountInactive
	}

	token, err := jwt.GenerateAccessToken(member.ID, member.Name, member.Role, s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return "", nil, err
	}
	return token, member, nil
}

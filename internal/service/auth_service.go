package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/repository"
)

// AuthService authenticates persons and issues access tokens.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error)
}

type authService struct {
	persons   repository.PersonRepository
	validator *validator.Validate
	secret    []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(personRepo repository.PersonRepository, validate *validator.Validate, secret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		persons:   personRepo,
		validator: validate,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, err
	}

	person, err := s.persons.GetByUsername(ctx, payload.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same failure as a wrong password, so usernames cannot be probed.
			return dto.TokenResponse{}, ErrInvalidCredentials
		}
		return dto.TokenResponse{}, err
	}
	if !person.IsActive {
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub":  person.ID,
		"role": person.Role,
		"iat":  issuedAt.Unix(),
		"exp":  expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	s.logger.Info().Str("person_id", person.ID).Msg("login succeeded")

	return dto.TokenResponse{
		Token:     signed,
		PersonID:  person.ID,
		Role:      person.Role,
		ExpiresIn: int64(s.tokenTTL.Seconds()),
	}, nil
}

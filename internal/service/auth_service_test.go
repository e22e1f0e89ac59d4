package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

const testSecret = "unit-test-secret"

func newAuthFixture(t *testing.T) AuthService {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	persons := newFakePersonRepo(
		models.Person{ID: "u100", Username: "jdoe", PasswordHash: string(hash), Role: models.RoleInstructor, IsActive: true},
		models.Person{ID: "u101", Username: "gone", PasswordHash: string(hash), Role: models.RoleInstructor, IsActive: false},
	)
	return NewAuthService(persons, newValidate(), testSecret, time.Hour, testLogger())
}

func TestLogin(t *testing.T) {
	svc := newAuthFixture(t)

	token, err := svc.Login(context.Background(), dto.LoginRequest{Username: "jdoe", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, "u100", token.PersonID)
	require.Equal(t, models.RoleInstructor, token.Role)
	require.Equal(t, int64(3600), token.ExpiresIn)

	parsed, err := jwt.Parse(token.Token, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, "u100", claims["sub"])
	require.Equal(t, models.RoleInstructor, claims["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "jdoe", Password: "nope"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newAuthFixture(t)

	// Same error as a wrong password, so the endpoint leaks nothing.
	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "s3cret"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "gone", Password: "s3cret"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avdonin/foodreel/internal/hash"
	"github.com/avdonin/foodreel/internal/models"
	"github.com/avdonin/foodreel/internal/tokens"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.Account{}, &models.Product{}, &models.CartItem{}, &models.Video{}, &models.Like{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTokenService(t *testing.T) (*TokenService, *gorm.DB) {
	db := initTestDB(t)
	return &TokenService{
		DB:            db,
		JWTSecret:     []byte("test_jwt_secret"),
		RefreshSecret: []byte("test_refresh_secret"),
	}, db
}

func createAccount(t *testing.T, db *gorm.DB, email, role string) *models.Account {
	pwHash, err := hash.HashPassword("secret")
	require.NoError(t, err)

	account := models.Account{
		Name:         "test_user",
		Email:        email,
		Role:         role,
		PasswordHash: pwHash,
	}
	require.NoError(t, db.Create(&account).Error)
	return &account
}

func TestIssueAndVerify(t *testing.T) {
	ts, db := newTokenService(t)
	account := createAccount(t, db, "a@x.com", models.RoleUser)

	pair, err := ts.IssueTokens(context.Background(), account.ID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	verified, err := ts.VerifyAccess(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, account.ID, verified.ID)
	require.Equal(t, "a@x.com", verified.Email)

	// the refresh token is stored hashed, never raw
	var stored models.Account
	require.NoError(t, db.First(&stored, account.ID).Error)
	require.Equal(t, tokens.Sha256Hex(pair.RefreshToken), stored.RefreshTokenHash)
	require.NotEqual(t, pair.RefreshToken, stored.RefreshTokenHash)
}

func TestIssueTokensUnknownAccount(t *testing.T) {
	ts, _ := newTokenService(t)

	_, err := ts.IssueTokens(context.Background(), 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyAccessRejectsGarbage(t *testing.T) {
	ts, _ := newTokenService(t)

	_, err := ts.VerifyAccess(context.Background(), "")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = ts.VerifyAccess(context.Background(), "not.a.token")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyAccessExpiredToken(t *testing.T) {
	ts, db := newTokenService(t)
	account := createAccount(t, db, "a@x.com", models.RoleUser)

	claims := tokens.AccessClaims{
		Email: account.Email,
		Name:  account.Name,
		Role:  account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	raw, err := tokens.SignAccessToken(claims, ts.JWTSecret)
	require.NoError(t, err)

	_, err = ts.VerifyAccess(context.Background(), raw)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyAccessDeletedAccount(t *testing.T) {
	ts, db := newTokenService(t)
	account := createAccount(t, db, "a@x.com", models.RoleUser)

	pair, err := ts.IssueTokens(context.Background(), account.ID)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.Account{}, account.ID).Error)

	_, err = ts.VerifyAccess(context.Background(), pair.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRotateInvalidatesPreviousRefresh(t *testing.T) {
	ts, db := newTokenService(t)
	account := createAccount(t, db, "a@x.com", models.RoleUser)

	first, err := ts.IssueTokens(context.Background(), account.ID)
	require.NoError(t, err)

	second, err := ts.Rotate(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// the rotated-out token no longer matches the stored hash
	_, err = ts.Rotate(context.Background(), first.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)

	// the fresh one still works
	_, err = ts.Rotate(context.Background(), second.RefreshToken)
	require.NoError(t, err)
}

func TestRevokeIsSoft(t *testing.T) {
	ts, db := newTokenService(t)
	account := createAccount(t, db, "a@x.com", models.RoleUser)

	pair, err := ts.IssueTokens(context.Background(), account.ID)
	require.NoError(t, err)

	require.NoError(t, ts.Revoke(context.Background(), account.ID))

	// refresh is dead
	_, err = ts.Rotate(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)

	// but the unexpired access token still authenticates
	verified, err := ts.VerifyAccess(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, account.ID, verified.ID)
}

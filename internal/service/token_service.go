package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avdonin/foodreel/internal/logging"
	"github.com/avdonin/foodreel/internal/models"
	"github.com/avdonin/foodreel/internal/tokens"
)

// TokenService owns the access/refresh token lifecycle. Exactly one refresh
// token is active per account: issuing a new pair overwrites the stored hash,
// which invalidates every previously issued refresh token. Access tokens are
// not tracked server-side, so revocation is soft until they expire.
type TokenService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

func (t *TokenService) IssueTokens(ctx context.Context, accountID uint) (*TokenPair, error) {
	var account models.Account
	if err := t.DB.WithContext(ctx).First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %d: %w", accountID, ErrNotFound)
		}
		return nil, err
	}
	return t.issueFor(ctx, &account)
}

func (t *TokenService) issueFor(ctx context.Context, account *models.Account) (*TokenPair, error) {
	accessExp := time.Now().Add(tokens.AccessTTL)
	accessClaims := tokens.AccessClaims{
		Email: account.Email,
		Name:  account.Name,
		Role:  account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(account.ID),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}
	accessToken, err := tokens.SignAccessToken(accessClaims, t.JWTSecret)
	if err != nil {
		return nil, err
	}

	refreshExp := time.Now().Add(tokens.RefreshTTL)
	refreshClaims := tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(account.ID),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
			ID:        uuid.NewString(),
		},
	}
	refreshToken, err := tokens.SignRefreshToken(refreshClaims, t.RefreshSecret)
	if err != nil {
		return nil, err
	}

	if err := t.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", account.ID).
		Update("refresh_token_hash", tokens.Sha256Hex(refreshToken)).Error; err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// VerifyAccess resolves a raw access token to the account it identifies.
// The account is re-read so that tokens of deleted accounts stop working
// before their natural expiry.
func (t *TokenService) VerifyAccess(ctx context.Context, rawToken string) (*models.Account, error) {
	if rawToken == "" {
		return nil, fmt.Errorf("missing token: %w", ErrUnauthorized)
	}
	claims, err := tokens.AccessClaimsFromToken(rawToken, t.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", ErrUnauthorized)
	}
	id, err := claims.AccountID()
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", ErrUnauthorized)
	}

	var account models.Account
	if err := t.DB.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account gone: %w", ErrUnauthorized)
		}
		return nil, err
	}
	return &account, nil
}

// Rotate exchanges a still-valid refresh token for a fresh pair. The
// presented token must hash to the stored value, so a rotated-out token
// cannot be replayed.
func (t *TokenService) Rotate(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "tokens.rotate")

	claims, err := tokens.RefreshClaimsFromToken(rawRefresh, t.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}
	id, err := claims.AccountID()
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}

	var account models.Account
	if err := t.DB.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account gone: %w", ErrUnauthorized)
		}
		return nil, err
	}
	if account.RefreshTokenHash == "" || account.RefreshTokenHash != tokens.Sha256Hex(rawRefresh) {
		l.Warn("refresh token superseded or revoked", "account_id", id)
		return nil, fmt.Errorf("refresh token revoked: %w", ErrUnauthorized)
	}

	return t.issueFor(ctx, &account)
}

// Revoke clears the stored refresh token hash (logout). Outstanding access
// tokens keep working until they expire.
func (t *TokenService) Revoke(ctx context.Context, accountID uint) error {
	return t.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("refresh_token_hash", "").Error
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/stocktrack/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "stocktrack"

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrUnknownUser  = errors.New("unknown user")
)

// UserStore persists identities
type UserStore interface {
	CreateAnonymous(ctx context.Context) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Provider issues anonymous identities and the signed tokens that let a
// device resume them.
type Provider struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewProvider creates a new Provider
func NewProvider(users UserStore, secret []byte, ttl time.Duration) *Provider {
	return &Provider{
		users:  users,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// SignInAnonymously creates a new anonymous identity and a token for it
func (p *Provider) SignInAnonymously(ctx context.Context) (*models.User, string, error) {
	u, err := p.users.CreateAnonymous(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create anonymous user: %w", err)
	}
	token, err := p.issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// SignInWithToken resumes the identity a previously issued token names
func (p *Provider) SignInWithToken(ctx context.Context, token string) (*models.User, error) {
	userID, err := p.Verify(token)
	if err != nil {
		return nil, err
	}
	u, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownUser, err)
	}
	return u, nil
}

// Verify checks a token's signature and expiry and returns its user id
func (p *Provider) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func (p *Provider) issue(userID string) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

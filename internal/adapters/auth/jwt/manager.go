package jwt

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-insurance-api/internal/ports/auth"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretRequired = errors.New("jwt secret required")
	ErrTokenEmpty     = errors.New("token is empty")
	ErrTokenInvalid   = errors.New("token invalid")
)

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwtlib.RegisteredClaims
}

// Manager firma y verifica tokens HS256 locales.
// Implementa auth.AuthVerifier para el middleware.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrSecretRequired
	}
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue genera un token para el usuario.
func (m *Manager) Issue(userID, email, role string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id required")
	}

	now := m.now()
	claims := tokenClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.ttl)),
		},
	}

	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify implementa auth.AuthVerifier.
func (m *Manager) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var tc tokenClaims
	parsed, err := jwtlib.ParseWithClaims(token, &tc,
		func(t *jwtlib.Token) (any, error) { return m.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}

	userID := strings.TrimSpace(tc.Subject)
	if userID == "" {
		return auth.Claims{}, ErrTokenInvalid
	}

	role := tc.Role
	if !auth.ValidRole(role) {
		role = auth.RoleOwner
	}

	return auth.Claims{
		UserID: userID,
		Email:  tc.Email,
		Role:   role,
	}, nil
}

package userauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService issues and validates HS256 access tokens.
type TokenService struct {
	signingKey []byte
	ttlMinutes int
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// NewTokenService creates a TokenService from config.
func NewTokenService(config Config, opts ...TokenServiceOption) *TokenService {
	ts := &TokenService{
		signingKey: []byte(config.GetSigningKey()),
		ttlMinutes: config.GetAccessTokenTTLMinutes(),
		issuer:     config.GetIssuer(),
		audience:   jwt.ClaimStrings(config.GetAudience()),
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

type TokenServiceOption func(*TokenService)

func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenService) {
		ts.logger = normalizeLogger(logger)
	}
}

// Generate creates a signed access token for the user. The subject is
// the user ID; phone and role travel as custom claims.
func (ts *TokenService) Generate(user *User) (string, error) {
	if user == nil {
		return "", errors.New("user must not be nil", errors.CategoryInternal)
	}

	now := time.Now()
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   user.ID.String(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.ttlMinutes) * time.Minute)),
			ID:        uuid.NewString(),
		},
		Phone:    user.Phone,
		UserRole: user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign access token")
	}

	return signed, nil
}

// IsValid reports whether the token carries a valid signature and has
// not expired. It answers yes or no, never an error.
func (ts *TokenService) IsValid(tokenString string) bool {
	_, err := ts.Validate(tokenString)
	return err == nil
}

// ExtractUserID returns the subject claim as a UUID. Signature and
// expiry are checked on the way.
func (ts *TokenService) ExtractUserID(tokenString string) (uuid.UUID, error) {
	claims, err := ts.Validate(tokenString)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenMalformed
	}

	return id, nil
}

// Validate parses and verifies a token string, returning structured
// claims. Expired tokens surface as ErrTokenExpired, everything else
// that fails verification as ErrTokenMalformed.
func (ts *TokenService) Validate(tokenString string) (*AccessClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

var _ TokenIssuer = (*TokenService)(nil)

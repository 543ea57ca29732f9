package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

const tokenTypeAccess = "access"

// JWTConfig represents JWT configuration
type JWTConfig struct {
	SecretKey string
	Issuer    string
}

// JWTService signs and validates the bearer tokens accepted by the API
type JWTService struct {
	config    JWTConfig
	secretKey []byte
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config:    config,
		secretKey: []byte(config.SecretKey),
	}
}

// GenerateToken issues an access token for subject valid for duration
func (j *JWTService) GenerateToken(subject string, duration time.Duration) (string, error) {
	if len(j.secretKey) == 0 {
		return "", errors.New("jwt secret is not configured")
	}

	now := time.Now()
	jti, err := j.generateJTI()
	if err != nil {
		return "", fmt.Errorf("failed to generate JTI: %w", err)
	}

	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			Issuer:    j.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			NotBefore: jwt.NewNumericDate(now),
		},
		TokenType: tokenTypeAccess,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates and parses an access token
func (j *JWTService) ValidateToken(tokenString string) (*JWTClaims, error) {
	if len(j.secretKey) == 0 {
		return nil, errors.New("jwt secret is not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if j.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	if claims.TokenType != tokenTypeAccess {
		return nil, errors.New("invalid token type, expected access token")
	}

	return claims, nil
}

// ExtractTokenFromBearer extracts token from "Bearer <token>" format.
// It returns an empty string when the header uses another scheme.
func ExtractTokenFromBearer(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func (j *JWTService) generateJTI() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

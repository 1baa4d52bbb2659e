package jwt

import (
	"errors"
	"socialnet/backend/internal/config"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenTTL  = time.Minute * 30
	refreshTokenTTL = time.Hour * 24 * 7
)

// TokenPair bundles the short-lived access token with its refresh token.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// GenerateTokenPair creates a new access+refresh token pair for a given user ID.
func GenerateTokenPair(userID uint) (*TokenPair, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub": userID,
		"typ": "access",
		"exp": now.Add(accessTokenTTL).Unix(),
		"iat": now.Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).
		SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		return nil, err
	}

	refreshClaims := jwt.MapClaims{
		"sub": userID,
		"typ": "refresh",
		"jti": uuid.NewString(),
		"exp": now.Add(refreshTokenTTL).Unix(),
		"iat": now.Unix(),
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).
		SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// ParseToken validates a token of the given type ("access" or "refresh")
// and returns the user ID it was issued for.
func ParseToken(tokenString, tokenType string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	if typ, _ := claims["typ"].(string); typ != tokenType {
		return 0, errors.New("wrong token type")
	}
	userIDFloat, ok := claims["sub"].(float64)
	if !ok {
		return 0, errors.New("missing subject claim")
	}

	return uint(userIDFloat), nil
}

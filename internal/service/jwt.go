package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

var ErrInvalidToken = errors.New("invalid token")

func InitJWT(secret string) {
	if secret == "" {
		panic("jwt secret is not set")
	}
	jwtSecret = []byte(secret)
}

// GeneratePlayerToken issues the token handed out when a player joins a
// session. It scopes the player to that one session.
func GeneratePlayerToken(playerID, sessionID int64) (string, error) {
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"player_id":  playerID,
		"session_id": sessionID,
		"exp":        time.Now().Add(24 * time.Hour).Unix(),
		"iat":        now,
		"nbf":        now,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParsePlayerToken returns the player and session ids from a player
// token.
func ParsePlayerToken(tokenString string) (playerID, sessionID int64, err error) {
	claims, err := parse(tokenString)
	if err != nil {
		return 0, 0, err
	}
	pid, ok := claims["player_id"].(float64)
	if !ok {
		return 0, 0, ErrInvalidToken
	}
	sid, ok := claims["session_id"].(float64)
	if !ok {
		return 0, 0, ErrInvalidToken
	}
	return int64(pid), int64(sid), nil
}

// GenerateAdminToken issues a short-lived token for the experimenter
// console after the shared admin secret checks out.
func GenerateAdminToken() (string, error) {
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(12 * time.Hour).Unix(),
		"iat":  now,
		"nbf":  now,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseAdminToken verifies an admin token.
func ParseAdminToken(tokenString string) error {
	claims, err := parse(tokenString)
	if err != nil {
		return err
	}
	if role, ok := claims["role"].(string); !ok || role != "admin" {
		return ErrInvalidToken
	}
	return nil
}

func parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	now := time.Now().Unix()
	if exp, ok := claims["exp"].(float64); ok && int64(exp) < now {
		return nil, errors.New("token expired")
	}
	if nbf, ok := claims["nbf"].(float64); ok && int64(nbf) > now {
		return nil, errors.New("token not valid yet")
	}
	return claims, nil
}

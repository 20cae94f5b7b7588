package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and verifies the cookie token that points at a session.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) Encode(s *Session) (string, error) {
	claims := jwt.MapClaims{
		"sid":     s.ID,
		"user_id": s.UserID,
		"exp":     s.ExpiresAt.Unix(),
		"iat":     s.CreatedAt.Unix(),
		"nbf":     s.CreatedAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode returns the session id and user id carried by tokenString.
func (c *Codec) Decode(tokenString string) (string, int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithLeeway(5*time.Second))

	if err != nil || !token.Valid {
		return "", 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", 0, errors.New("invalid claims")
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", 0, errors.New("sid not found")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return "", 0, errors.New("user_id not found")
	}

	return sid, int64(userID), nil
}

package utils

import (
	"crypto/md5"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"content-studio/infrastructure/logger"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// MD5Hash returns the hex digest used for stored passwords.
func MD5Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

func GenerateToken(payload map[string]interface{}, secretKey string) (string, error) {
	var claims jwt.MapClaims = payload
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}

// utils/jwt.go
package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"assethub/config"
)

type Claims struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName,omitempty"`
	jwt.RegisteredClaims
}

func GenerateJWT(email, name, role, companyName string) (string, error) {
	claims := Claims{
		Email:       email,
		Name:        name,
		Role:        role,
		CompanyName: companyName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.JWTExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTKey)
}

func ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return config.JWTKey, nil
	})

	if err != nil || !token.Valid {
		return nil, err
	}

	return claims, nil
}

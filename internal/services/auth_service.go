package services

import (
	"fmt"
	"log"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService guards the admin surface (order listing and status updates).
// There is no user table here: a single admin credential, stored as a bcrypt
// hash in configuration, is exchanged for a JWT. User management proper
// belongs to the surrounding system.
type AuthService struct {
	adminPasswordHash []byte
	jwtSecret         []byte
	tokenDurat        time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(adminPasswordHash, jwtSecret string) *AuthService {
	return &AuthService{
		adminPasswordHash: []byte(adminPasswordHash),
		jwtSecret:         []byte(jwtSecret),
		tokenDurat:        24 * time.Hour, // Token valid for 24 hours
	}
}

// Login checks the admin password against the configured hash and returns a
// signed JWT on success.
func (s *AuthService) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(password)); err != nil {
		// Never reveal whether the hash is configured or the password wrong
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":  time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// HashAdminPassword is a helper for provisioning the configured credential.
func HashAdminPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

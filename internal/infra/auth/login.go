package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator valida a conta admin configurada no ambiente.
type Authenticator struct {
	email        string
	passwordHash []byte
	jwt          *JWTManager
}

func NewAuthenticator(email, passwordHash string, jwt *JWTManager) *Authenticator {
	return &Authenticator{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		jwt:          jwt,
	}
}

// Login devolve um token admin. Sem conta configurada nada passa.
func (a *Authenticator) Login(email, password string) (string, error) {
	if a.email == "" || len(a.passwordHash) == 0 {
		return "", ErrInvalidCredentials
	}

	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.email)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !emailOK || passErr != nil {
		return "", ErrInvalidCredentials
	}

	return a.jwt.GenerateToken(a.email, RoleAdmin)
}

// HashPassword gera o valor de ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

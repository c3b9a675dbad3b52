package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleSuperAdmin   = "superadmin"
	RoleCompanyAdmin = "company_admin"
	RoleHRAdmin      = "hr_admin"
	RoleManager      = "manager"
	RoleEmployee     = "employee"
)

var allRoles = []string{RoleSuperAdmin, RoleCompanyAdmin, RoleHRAdmin, RoleManager, RoleEmployee}

func ValidRole(role string) bool {
	for _, r := range allRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsManagerTier reports whether role may set evaluation scores and
// evaluation statuses on other users' goals.
func IsManagerTier(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleHRAdmin, RoleManager:
		return true
	}
	return false
}

// IsAdminTier reports whether role administers the organization: user and
// cycle management, grade bands, exports.
func IsAdminTier(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleHRAdmin:
		return true
	}
	return false
}

// UserContext is the authenticated caller as hydrated from JWT claims.
type UserContext struct {
	UserID    string
	OrgID     string
	Role      string
	SessionID string
}

type Claims struct {
	UserID    string `json:"uid"`
	OrgID     string `json:"org"`
	Role      string `json:"role"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// HashToken stores only a digest of session and reset tokens so a leaked
// table does not leak usable tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func GenerateToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

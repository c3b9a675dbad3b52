package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Fatalf("CheckPassword rejected correct password: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("CheckPassword accepted wrong password")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	claims := Claims{UserID: "user-1", OrgID: "org-1", Role: RoleManager}
	token, err := GenerateToken("test-secret", claims, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	parsed, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if parsed.UserID != "user-1" || parsed.OrgID != "org-1" || parsed.Role != RoleManager {
		t.Fatalf("claims = %+v", parsed)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("test-secret", Claims{UserID: "user-1"}, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("ParseToken accepted token signed with a different secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("test-secret", Claims{UserID: "user-1"}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken("test-secret", token); err == nil {
		t.Fatal("ParseToken accepted expired token")
	}
}

func TestRoleTiers(t *testing.T) {
	tests := []struct {
		role        string
		managerTier bool
		adminTier   bool
	}{
		{RoleSuperAdmin, true, true},
		{RoleCompanyAdmin, true, true},
		{RoleHRAdmin, true, true},
		{RoleManager, true, false},
		{RoleEmployee, false, false},
	}
	for _, tc := range tests {
		if got := IsManagerTier(tc.role); got != tc.managerTier {
			t.Fatalf("IsManagerTier(%s) = %v", tc.role, got)
		}
		if got := IsAdminTier(tc.role); got != tc.adminTier {
			t.Fatalf("IsAdminTier(%s) = %v", tc.role, got)
		}
	}

	if ValidRole("director") {
		t.Fatal("ValidRole accepted unknown role")
	}
	if !ValidRole(RoleEmployee) {
		t.Fatal("ValidRole rejected employee")
	}
}

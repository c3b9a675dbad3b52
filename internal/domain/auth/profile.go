package auth

import (
	"context"
	"log/slog"
	"time"
)

type Profile struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	Email          string `json:"email"`
	FullName       string `json:"fullName"`
	Role           string `json:"role"`
	Status         string `json:"status"`
	Department     string `json:"department"`
	JobTitle       string `json:"jobTitle"`
	JobLevel       string `json:"jobLevel"`
	ManagerID      string `json:"managerId"`
}

type ProfileStore interface {
	ProfileByUserID(ctx context.Context, userID string) (Profile, error)
}

// ResolveProfile fetches the caller's profile after a successful credential
// check, retrying with a fixed delay on failure. Once the attempt budget is
// spent it degrades to a bare employee profile instead of failing the
// login: a user whose profile row is temporarily unreadable keeps reduced
// access rather than being locked out.
func ResolveProfile(ctx context.Context, store ProfileStore, userID string, attempts int, delay time.Duration) Profile {
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		profile, err := store.ProfileByUserID(ctx, userID)
		if err == nil {
			return profile
		}
		slog.Warn("profile fetch failed", "userId", userID, "attempt", attempt, "err", err)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return degradedProfile(userID)
		case <-time.After(delay):
		}
	}

	return degradedProfile(userID)
}

func degradedProfile(userID string) Profile {
	return Profile{ID: userID, Role: RoleEmployee, Status: "active"}
}

package auth

import (
	"context"
	"errors"
	"testing"
)

type fakeProfileStore struct {
	failures int
	calls    int
	profile  Profile
}

func (f *fakeProfileStore) ProfileByUserID(ctx context.Context, userID string) (Profile, error) {
	f.calls++
	if f.calls <= f.failures {
		return Profile{}, errors.New("store unavailable")
	}
	return f.profile, nil
}

func TestResolveProfileFirstTry(t *testing.T) {
	store := &fakeProfileStore{profile: Profile{ID: "u1", Role: RoleManager, OrganizationID: "org-1"}}

	got := ResolveProfile(context.Background(), store, "u1", 3, 0)
	if got.Role != RoleManager || got.OrganizationID != "org-1" {
		t.Fatalf("profile = %+v", got)
	}
	if store.calls != 1 {
		t.Fatalf("calls = %d, want 1", store.calls)
	}
}

func TestResolveProfileRecoversWithinBudget(t *testing.T) {
	store := &fakeProfileStore{failures: 2, profile: Profile{ID: "u1", Role: RoleHRAdmin}}

	got := ResolveProfile(context.Background(), store, "u1", 3, 0)
	if got.Role != RoleHRAdmin {
		t.Fatalf("profile = %+v, want recovered hr_admin", got)
	}
	if store.calls != 3 {
		t.Fatalf("calls = %d, want 3", store.calls)
	}
}

func TestResolveProfileDegradesAfterBudget(t *testing.T) {
	store := &fakeProfileStore{failures: 10, profile: Profile{ID: "u1", Role: RoleManager}}

	got := ResolveProfile(context.Background(), store, "u1", 3, 0)
	if store.calls != 3 {
		t.Fatalf("calls = %d, want 3", store.calls)
	}
	if got.Role != RoleEmployee {
		t.Fatalf("degraded role = %q, want employee", got.Role)
	}
	if got.ID != "u1" {
		t.Fatalf("degraded id = %q, want u1", got.ID)
	}
	if got.OrganizationID != "" {
		t.Fatalf("degraded profile should carry no organization, got %q", got.OrganizationID)
	}
}

func TestResolveProfileZeroBudgetStillTriesOnce(t *testing.T) {
	store := &fakeProfileStore{profile: Profile{ID: "u1", Role: RoleEmployee}}

	ResolveProfile(context.Background(), store, "u1", 0, 0)
	if store.calls != 1 {
		t.Fatalf("calls = %d, want 1", store.calls)
	}
}

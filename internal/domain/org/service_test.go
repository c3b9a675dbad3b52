package org

import (
	"context"
	"errors"
	"testing"

	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/scoring"
)

type fakeStore struct {
	orgs        map[string]Organization
	profiles    map[string]Profile
	edges       ManagerGraph
	orgBands    []scoring.Band
	globalBands []scoring.Band
	replaced    []scoring.Band
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orgs:     map[string]Organization{},
		profiles: map[string]Profile{},
		edges:    ManagerGraph{},
	}
}

func (f *fakeStore) CreateOrganization(_ context.Context, name, slug, appName string) (string, error) {
	id := "org-" + slug
	f.orgs[id] = Organization{ID: id, Name: name, Slug: slug, AppName: appName}
	return id, nil
}

func (f *fakeStore) OrganizationByID(_ context.Context, id string) (Organization, error) {
	o, ok := f.orgs[id]
	if !ok {
		return Organization{}, errors.New("no rows")
	}
	return o, nil
}

func (f *fakeStore) ListOrganizations(_ context.Context) ([]Organization, error) { return nil, nil }

func (f *fakeStore) UpdateOrganization(_ context.Context, id, name, appName string) error {
	o := f.orgs[id]
	o.Name, o.AppName = name, appName
	f.orgs[id] = o
	return nil
}

func (f *fakeStore) DeleteOrganization(_ context.Context, id string) error {
	delete(f.orgs, id)
	return nil
}

func (f *fakeStore) SlugTaken(_ context.Context, slug string) (bool, error) {
	for _, o := range f.orgs {
		if o.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListProfiles(_ context.Context, _, _, _ string) ([]Profile, error) {
	return nil, nil
}

func (f *fakeStore) ProfileByID(_ context.Context, _, id string) (Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return Profile{}, errors.New("no rows")
	}
	return p, nil
}

func (f *fakeStore) CreateUser(_ context.Context, email, _ string) (string, error) {
	return "user-" + email, nil
}

func (f *fakeStore) CreateProfile(_ context.Context, p Profile) error {
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, _ string, p Profile) error {
	f.profiles[p.ID] = p
	if p.ManagerID == "" {
		delete(f.edges, p.ID)
	} else {
		f.edges[p.ID] = p.ManagerID
	}
	return nil
}

func (f *fakeStore) DeleteProfile(_ context.Context, _, id string) error {
	delete(f.profiles, id)
	return nil
}

func (f *fakeStore) ListSubordinates(_ context.Context, _, _ string) ([]Profile, error) {
	return nil, nil
}

func (f *fakeStore) ManagerEdges(_ context.Context, _ string) (ManagerGraph, error) {
	return f.edges, nil
}

func (f *fakeStore) OrgBands(_ context.Context, _ string) ([]scoring.Band, error) {
	return f.orgBands, nil
}

func (f *fakeStore) GlobalBands(_ context.Context) ([]scoring.Band, error) {
	return f.globalBands, nil
}

func (f *fakeStore) ReplaceOrgBands(_ context.Context, _ string, bands []scoring.Band) error {
	f.replaced = bands
	return nil
}

func (f *fakeStore) WelcomeMessage(_ context.Context, orgID string) (WelcomeMessage, error) {
	return WelcomeMessage{OrganizationID: orgID}, nil
}

func (f *fakeStore) UpsertWelcomeMessage(_ context.Context, _, _, _ string) error { return nil }

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corp", "acme-corp"},
		{"  Big  Data, Inc.  ", "big-data-inc"},
		{"ALLCAPS", "allcaps"},
		{"---", ""},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateOrganizationSlugConflict(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.CreateOrganization(ctx, "Acme Corp", "")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	if first.Slug != "acme-corp" || first.AppName != "Acme Corp" {
		t.Fatalf("organization = %+v", first)
	}

	if _, err := svc.CreateOrganization(ctx, "Acme! Corp", ""); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("err = %v, want ErrSlugTaken", err)
	}
}

func TestUpdateMemberManagerRules(t *testing.T) {
	store := newFakeStore()
	store.profiles["emp"] = Profile{ID: "emp", Role: auth.RoleEmployee, Status: StatusActive}
	store.profiles["peer"] = Profile{ID: "peer", Role: auth.RoleEmployee, Status: StatusActive}
	store.profiles["m1"] = Profile{ID: "m1", Role: auth.RoleManager, Status: StatusActive}
	store.profiles["m2"] = Profile{ID: "m2", Role: auth.RoleManager, Status: StatusActive}
	store.profiles["hr"] = Profile{ID: "hr", Role: auth.RoleHRAdmin, Status: StatusActive}
	svc := NewService(store)
	ctx := context.Background()

	// Plain employees cannot be assigned as managers.
	emp := store.profiles["emp"]
	emp.ManagerID = "peer"
	if _, err := svc.UpdateMember(ctx, "org-1", emp); !errors.Is(err, ErrNotAManager) {
		t.Fatalf("err = %v, want ErrNotAManager", err)
	}

	// Admin-tier roles administer the org but are not reporting-chain
	// targets; only the manager role may hold subordinates.
	emp.ManagerID = "hr"
	if _, err := svc.UpdateMember(ctx, "org-1", emp); !errors.Is(err, ErrNotAManager) {
		t.Fatalf("err = %v, want ErrNotAManager for admin-tier target", err)
	}

	// Valid assignment.
	emp.ManagerID = "m1"
	updated, err := svc.UpdateMember(ctx, "org-1", emp)
	if err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	if updated.ManagerID != "m1" {
		t.Fatalf("manager = %q", updated.ManagerID)
	}

	// m1 reports to m2; pointing m2 back at m1 would close a loop.
	m1 := store.profiles["m1"]
	m1.ManagerID = "m2"
	if _, err := svc.UpdateMember(ctx, "org-1", m1); err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	m2 := store.profiles["m2"]
	m2.ManagerID = "m1"
	if _, err := svc.UpdateMember(ctx, "org-1", m2); !errors.Is(err, ErrManagerCycle) {
		t.Fatalf("err = %v, want ErrManagerCycle", err)
	}
}

func TestEffectiveBandsFallbackChain(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	// Nothing stored anywhere: built-in defaults.
	bands, err := svc.EffectiveBands(ctx, "org-1")
	if err != nil {
		t.Fatalf("EffectiveBands: %v", err)
	}
	if len(bands) != 5 || bands[0].GradeText != "Unsatisfactory" {
		t.Fatalf("bands = %+v", bands)
	}

	// Stored globals win over built-ins.
	store.globalBands = []scoring.Band{{MinScore: 0, MaxScore: 100, GradeText: "Global", GradeLevel: 1}}
	bands, err = svc.EffectiveBands(ctx, "org-1")
	if err != nil {
		t.Fatalf("EffectiveBands: %v", err)
	}
	if len(bands) != 1 || bands[0].GradeText != "Global" {
		t.Fatalf("bands = %+v", bands)
	}

	// Org bands win over everything.
	store.orgBands = []scoring.Band{{MinScore: 0, MaxScore: 100, GradeText: "OK", GradeLevel: 3}}
	grade, err := svc.Grade(ctx, "org-1", 95)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if grade.Text != "OK" || grade.Level != 3 {
		t.Fatalf("grade = %+v", grade)
	}
}

func TestReplaceBandsValidates(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	bad := []scoring.Band{{MinScore: 60, MaxScore: 40, GradeText: "A", GradeLevel: 1}}
	if err := svc.ReplaceBands(context.Background(), "org-1", bad); err == nil {
		t.Fatal("ReplaceBands accepted inverted band")
	}
	if store.replaced != nil {
		t.Fatal("invalid bands reached the store")
	}

	good := scoring.DefaultBands()
	if err := svc.ReplaceBands(context.Background(), "org-1", good); err != nil {
		t.Fatalf("ReplaceBands: %v", err)
	}
	if len(store.replaced) != 5 {
		t.Fatalf("stored %d bands, want 5", len(store.replaced))
	}
}

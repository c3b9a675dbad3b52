package org

import (
	"context"

	"perfdash/internal/domain/scoring"
)

type StoreAPI interface {
	CreateOrganization(ctx context.Context, name, slug, appName string) (string, error)
	OrganizationByID(ctx context.Context, id string) (Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	UpdateOrganization(ctx context.Context, id, name, appName string) error
	DeleteOrganization(ctx context.Context, id string) error
	SlugTaken(ctx context.Context, slug string) (bool, error)

	ListProfiles(ctx context.Context, orgID, role, status string) ([]Profile, error)
	ProfileByID(ctx context.Context, orgID, id string) (Profile, error)
	CreateUser(ctx context.Context, email, passwordHash string) (string, error)
	CreateProfile(ctx context.Context, p Profile) error
	UpdateProfile(ctx context.Context, orgID string, p Profile) error
	DeleteProfile(ctx context.Context, orgID, id string) error
	ListSubordinates(ctx context.Context, orgID, managerID string) ([]Profile, error)
	ManagerEdges(ctx context.Context, orgID string) (ManagerGraph, error)

	OrgBands(ctx context.Context, orgID string) ([]scoring.Band, error)
	GlobalBands(ctx context.Context) ([]scoring.Band, error)
	ReplaceOrgBands(ctx context.Context, orgID string, bands []scoring.Band) error

	WelcomeMessage(ctx context.Context, orgID string) (WelcomeMessage, error)
	UpsertWelcomeMessage(ctx context.Context, orgID, title, body string) error
}

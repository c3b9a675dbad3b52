package org

import (
	"context"
	"errors"
	"strings"

	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/scoring"
)

var (
	ErrSlugTaken    = errors.New("org: slug already in use")
	ErrInvalidName  = errors.New("org: organization name yields an empty slug")
	ErrInvalidRole  = errors.New("org: unknown role")
	ErrNotAManager  = errors.New("org: manager target does not have the manager role")
	ErrManagerCycle = errors.New("org: assignment would make the reporting chain circular")
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

// Slugify derives an organization slug from its display name. Slugs are
// fixed at creation and never updated afterwards.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *Service) CreateOrganization(ctx context.Context, name, appName string) (Organization, error) {
	slug := Slugify(name)
	if slug == "" {
		return Organization{}, ErrInvalidName
	}
	taken, err := s.Store.SlugTaken(ctx, slug)
	if err != nil {
		return Organization{}, err
	}
	if taken {
		return Organization{}, ErrSlugTaken
	}

	if appName == "" {
		appName = name
	}
	id, err := s.Store.CreateOrganization(ctx, name, slug, appName)
	if err != nil {
		return Organization{}, err
	}
	return s.Store.OrganizationByID(ctx, id)
}

func (s *Service) Organization(ctx context.Context, id string) (Organization, error) {
	return s.Store.OrganizationByID(ctx, id)
}

func (s *Service) ListOrganizations(ctx context.Context) ([]Organization, error) {
	return s.Store.ListOrganizations(ctx)
}

func (s *Service) UpdateOrganization(ctx context.Context, id, name, appName string) error {
	return s.Store.UpdateOrganization(ctx, id, name, appName)
}

func (s *Service) DeleteOrganization(ctx context.Context, id string) error {
	return s.Store.DeleteOrganization(ctx, id)
}

type NewMember struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"fullName"`
	Role       string `json:"role"`
	Department string `json:"department"`
	JobTitle   string `json:"jobTitle"`
	JobLevel   string `json:"jobLevel"`
	ManagerID  string `json:"managerId"`
}

func (s *Service) CreateMember(ctx context.Context, orgID string, in NewMember) (Profile, error) {
	if !auth.ValidRole(in.Role) {
		return Profile{}, ErrInvalidRole
	}
	if err := s.checkManagerAssignment(ctx, orgID, "", in.ManagerID); err != nil {
		return Profile{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Profile{}, err
	}
	userID, err := s.Store.CreateUser(ctx, in.Email, hash)
	if err != nil {
		return Profile{}, err
	}

	profile := Profile{
		ID:             userID,
		OrganizationID: orgID,
		Email:          in.Email,
		FullName:       in.FullName,
		Role:           in.Role,
		Status:         StatusActive,
		Department:     in.Department,
		JobTitle:       in.JobTitle,
		JobLevel:       in.JobLevel,
		ManagerID:      in.ManagerID,
	}
	if err := s.Store.CreateProfile(ctx, profile); err != nil {
		return Profile{}, err
	}
	return s.Store.ProfileByID(ctx, orgID, userID)
}

func (s *Service) ListProfiles(ctx context.Context, orgID, role, status string) ([]Profile, error) {
	return s.Store.ListProfiles(ctx, orgID, role, status)
}

func (s *Service) Profile(ctx context.Context, orgID, id string) (Profile, error) {
	return s.Store.ProfileByID(ctx, orgID, id)
}

func (s *Service) UpdateMember(ctx context.Context, orgID string, p Profile) (Profile, error) {
	if !auth.ValidRole(p.Role) {
		return Profile{}, ErrInvalidRole
	}
	if !ValidStatus(p.Status) {
		return Profile{}, errors.New("org: unknown status")
	}
	if err := s.checkManagerAssignment(ctx, orgID, p.ID, p.ManagerID); err != nil {
		return Profile{}, err
	}
	if err := s.Store.UpdateProfile(ctx, orgID, p); err != nil {
		return Profile{}, err
	}
	return s.Store.ProfileByID(ctx, orgID, p.ID)
}

func (s *Service) DeleteMember(ctx context.Context, orgID, id string) error {
	return s.Store.DeleteProfile(ctx, orgID, id)
}

func (s *Service) Subordinates(ctx context.Context, orgID, managerID string) ([]Profile, error) {
	return s.Store.ListSubordinates(ctx, orgID, managerID)
}

// checkManagerAssignment enforces the two reporting-chain rules: the target
// must actually hold the manager role, and the assignment must keep the
// chain acyclic.
func (s *Service) checkManagerAssignment(ctx context.Context, orgID, userID, managerID string) error {
	if managerID == "" {
		return nil
	}
	target, err := s.Store.ProfileByID(ctx, orgID, managerID)
	if err != nil {
		return err
	}
	if target.Role != auth.RoleManager {
		return ErrNotAManager
	}

	graph, err := s.Store.ManagerEdges(ctx, orgID)
	if err != nil {
		return err
	}
	if WouldCreateCycle(graph, userID, managerID) {
		return ErrManagerCycle
	}
	return nil
}

// EffectiveBands returns the band table grade resolution uses for an
// organization: its own bands when present, otherwise the stored global
// defaults, otherwise the built-in defaults.
func (s *Service) EffectiveBands(ctx context.Context, orgID string) ([]scoring.Band, error) {
	if orgID != "" {
		bands, err := s.Store.OrgBands(ctx, orgID)
		if err != nil {
			return nil, err
		}
		if len(bands) > 0 {
			return bands, nil
		}
	}
	bands, err := s.Store.GlobalBands(ctx)
	if err != nil {
		return nil, err
	}
	if len(bands) > 0 {
		return bands, nil
	}
	return scoring.DefaultBands(), nil
}

func (s *Service) Grade(ctx context.Context, orgID string, score int) (scoring.Grade, error) {
	bands, err := s.EffectiveBands(ctx, orgID)
	if err != nil {
		return scoring.Grade{}, err
	}
	return scoring.ResolveGrade(score, bands, scoring.DefaultBands()), nil
}

func (s *Service) ReplaceBands(ctx context.Context, orgID string, bands []scoring.Band) error {
	if err := scoring.ValidateBands(bands); err != nil {
		return err
	}
	return s.Store.ReplaceOrgBands(ctx, orgID, bands)
}

func (s *Service) Welcome(ctx context.Context, orgID string) (WelcomeMessage, error) {
	return s.Store.WelcomeMessage(ctx, orgID)
}

func (s *Service) SetWelcome(ctx context.Context, orgID, title, body string) error {
	return s.Store.UpsertWelcomeMessage(ctx, orgID, title, body)
}

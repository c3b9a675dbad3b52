package org

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perfdash/internal/domain/scoring"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateOrganization(ctx context.Context, name, slug, appName string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO organizations (name, slug, app_name)
    VALUES ($1, $2, $3)
    RETURNING id
  `, name, slug, appName).Scan(&id)
	return id, err
}

func (s *Store) OrganizationByID(ctx context.Context, id string) (Organization, error) {
	var out Organization
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, slug, COALESCE(app_name, ''), created_at
    FROM organizations
    WHERE id = $1
  `, id).Scan(&out.ID, &out.Name, &out.Slug, &out.AppName, &out.CreatedAt)
	return out, err
}

func (s *Store) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, slug, COALESCE(app_name, ''), created_at
    FROM organizations
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Organization{}
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.AppName, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateOrganization touches name and app_name only; the slug is immutable
// once set.
func (s *Store) UpdateOrganization(ctx context.Context, id, name, appName string) error {
	_, err := s.DB.Exec(ctx, "UPDATE organizations SET name = $1, app_name = $2 WHERE id = $3", name, appName, id)
	return err
}

func (s *Store) DeleteOrganization(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM organizations WHERE id = $1", id)
	return err
}

func (s *Store) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM organizations WHERE slug = $1", slug).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

const profileColumns = `
    id, COALESCE(organization_id::text, ''), email, full_name, role, status,
    COALESCE(department, ''), COALESCE(job_title, ''), COALESCE(job_level, ''),
    COALESCE(manager_id::text, ''), created_at, updated_at`

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.Email, &p.FullName, &p.Role, &p.Status,
		&p.Department, &p.JobTitle, &p.JobLevel, &p.ManagerID, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (s *Store) ListProfiles(ctx context.Context, orgID, role, status string) ([]Profile, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+profileColumns+`
    FROM profiles
    WHERE organization_id = $1
      AND ($2 = '' OR role = $2)
      AND ($3 = '' OR status = $3)
    ORDER BY full_name
  `, orgID, role, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ProfileByID(ctx context.Context, orgID, id string) (Profile, error) {
	return scanProfile(s.DB.QueryRow(ctx, `
    SELECT `+profileColumns+`
    FROM profiles
    WHERE organization_id = $1 AND id = $2
  `, orgID, id))
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id", email, passwordHash).Scan(&id)
	return id, err
}

func (s *Store) CreateProfile(ctx context.Context, p Profile) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO profiles (id, organization_id, email, full_name, role, status, department, job_title, job_level, manager_id)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, '')::uuid)
  `, p.ID, p.OrganizationID, p.Email, p.FullName, p.Role, p.Status, p.Department, p.JobTitle, p.JobLevel, p.ManagerID)
	return err
}

func (s *Store) UpdateProfile(ctx context.Context, orgID string, p Profile) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE profiles
    SET full_name = $1, role = $2, status = $3, department = $4, job_title = $5,
        job_level = $6, manager_id = NULLIF($7, '')::uuid, updated_at = now()
    WHERE organization_id = $8 AND id = $9
  `, p.FullName, p.Role, p.Status, p.Department, p.JobTitle, p.JobLevel, p.ManagerID, orgID, p.ID)
	return err
}

func (s *Store) DeleteProfile(ctx context.Context, orgID, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM profiles WHERE organization_id = $1 AND id = $2", orgID, id)
	return err
}

func (s *Store) ListSubordinates(ctx context.Context, orgID, managerID string) ([]Profile, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+profileColumns+`
    FROM profiles
    WHERE organization_id = $1 AND manager_id = $2 AND status = 'active'
    ORDER BY full_name
  `, orgID, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ManagerEdges(ctx context.Context, orgID string) (ManagerGraph, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, manager_id
    FROM profiles
    WHERE organization_id = $1 AND manager_id IS NOT NULL
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	graph := ManagerGraph{}
	for rows.Next() {
		var id, managerID string
		if err := rows.Scan(&id, &managerID); err != nil {
			return nil, err
		}
		graph[id] = managerID
	}
	return graph, rows.Err()
}

func (s *Store) OrgBands(ctx context.Context, orgID string) ([]scoring.Band, error) {
	return s.queryBands(ctx, "SELECT min_score, max_score, grade_text, grade_level FROM performance_grades WHERE organization_id = $1 ORDER BY min_score", orgID)
}

func (s *Store) GlobalBands(ctx context.Context) ([]scoring.Band, error) {
	return s.queryBands(ctx, "SELECT min_score, max_score, grade_text, grade_level FROM performance_grades WHERE organization_id IS NULL ORDER BY min_score")
}

func (s *Store) queryBands(ctx context.Context, query string, args ...any) ([]scoring.Band, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []scoring.Band{}
	for rows.Next() {
		var b scoring.Band
		if err := rows.Scan(&b.MinScore, &b.MaxScore, &b.GradeText, &b.GradeLevel); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ReplaceOrgBands swaps an organization's band set in one transaction so a
// concurrent read never sees a half-written table.
func (s *Store) ReplaceOrgBands(ctx context.Context, orgID string, bands []scoring.Band) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM performance_grades WHERE organization_id = $1", orgID); err != nil {
		return err
	}
	for _, b := range bands {
		_, err := tx.Exec(ctx, `
      INSERT INTO performance_grades (organization_id, min_score, max_score, grade_text, grade_level)
      VALUES ($1, $2, $3, $4, $5)
    `, orgID, b.MinScore, b.MaxScore, b.GradeText, b.GradeLevel)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) WelcomeMessage(ctx context.Context, orgID string) (WelcomeMessage, error) {
	var out WelcomeMessage
	err := s.DB.QueryRow(ctx, `
    SELECT organization_id, title, body, updated_at
    FROM welcome_messages
    WHERE organization_id = $1
  `, orgID).Scan(&out.OrganizationID, &out.Title, &out.Body, &out.UpdatedAt)
	return out, err
}

func (s *Store) UpsertWelcomeMessage(ctx context.Context, orgID, title, body string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO welcome_messages (organization_id, title, body)
    VALUES ($1, $2, $3)
    ON CONFLICT (organization_id) DO UPDATE SET title = $2, body = $3, updated_at = now()
  `, orgID, title, body)
	return err
}

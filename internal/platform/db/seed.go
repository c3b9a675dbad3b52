package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/scoring"
	"perfdash/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	orgID, err := ensureOrganization(ctx, pool, cfg.SeedOrgName, cfg.SeedOrgSlug)
	if err != nil {
		return err
	}

	if err := ensureDefaultGrades(ctx, pool); err != nil {
		return err
	}

	if err := ensureSuperAdmin(ctx, pool, orgID, cfg.SeedSuperAdminEmail, cfg.SeedSuperAdminPassword); err != nil {
		return err
	}

	return nil
}

func ensureOrganization(ctx context.Context, pool *pgxpool.Pool, name, slug string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM organizations WHERE slug = $1", slug).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx,
		"INSERT INTO organizations (name, slug, app_name) VALUES ($1, $2, $1) RETURNING id",
		name, slug,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ensureDefaultGrades inserts the global grade bands (organization_id NULL)
// that ResolveGrade falls back to when an organization has no custom bands.
func ensureDefaultGrades(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM performance_grades WHERE organization_id IS NULL").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, band := range scoring.DefaultBands() {
		_, err := pool.Exec(ctx,
			"INSERT INTO performance_grades (organization_id, min_score, max_score, grade_text, grade_level) VALUES (NULL, $1, $2, $3, $4)",
			band.MinScore, band.MaxScore, band.GradeText, band.GradeLevel,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureSuperAdmin(ctx context.Context, pool *pgxpool.Pool, orgID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	err = pool.QueryRow(ctx,
		"INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id",
		email, hash,
	).Scan(&id)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO profiles (id, organization_id, email, full_name, role, status)
		 VALUES ($1, $2, $3, 'Super Admin', $4, 'active')
		 ON CONFLICT (id) DO NOTHING`,
		id, orgID, email, auth.RoleSuperAdmin,
	)
	return err
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"restaurant-pos/internal/models"
)

const profileColumns = "id, email, password_hash, role, is_active, created_at, updated_at"

// CreateProfile inserts a new profile
func (s *Store) CreateProfile(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := s.db.GetContext(ctx, p, query, p.ID, p.Email, p.PasswordHash, p.Role, p.IsActive)
	if isUniqueViolation(err) {
		return fmt.Errorf("profile %s: %w", p.Email, ErrDuplicate)
	}
	return err
}

// GetProfileByID retrieves a profile by ID
func (s *Store) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	return s.getProfile(ctx, "id", id)
}

// GetProfileByEmail retrieves a profile by email
func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return s.getProfile(ctx, "email", email)
}

func (s *Store) getProfile(ctx context.Context, column, value string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.GetContext(ctx, &p, "SELECT "+profileColumns+" FROM profiles WHERE "+column+" = $1", value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", value, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles retrieves all profiles, newest first
func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	profiles := []models.Profile{}
	err := s.db.SelectContext(ctx, &profiles, "SELECT "+profileColumns+" FROM profiles ORDER BY created_at DESC")
	return profiles, err
}

// UpdateProfileAccess sets role and activation of a profile
func (s *Store) UpdateProfileAccess(ctx context.Context, id, role string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET role = $1, is_active = $2, updated_at = NOW() WHERE id = $3",
		role, active, id)
	if err != nil {
		return err
	}
	return expectAffected(res, "profile "+id)
}

// DeleteProfile removes a profile
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res, "profile "+id)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant-pos/internal/auth"
	"restaurant-pos/internal/models"
	"restaurant-pos/internal/store"
	"restaurant-pos/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 6

// LoginResponse is returned on successful login
type LoginResponse struct {
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
}

// UserService manages accounts and their access
type UserService struct {
	store  ProfileStore
	tokens *auth.TokenIssuer
	logger *zap.Logger
}

// NewUserService creates a user service
func NewUserService(store ProfileStore, tokens *auth.TokenIssuer) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		logger: util.WithComponent("users"),
	}
}

// Register creates an inactive vendedor account pending admin approval
func (u *UserService) Register(ctx context.Context, email, password string) (*models.Profile, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") || len(password) < minPasswordLength {
		return nil, ErrInvalidRegistration
	}

	profile, err := u.createProfile(ctx, email, password, models.RoleVendedor, false)
	if err != nil {
		return nil, err
	}

	u.logger.Info("User registered, pending approval", zap.String("user_id", profile.ID), zap.String("email", email))
	return profile, nil
}

// EnsureAdmin creates an active admin account for email unless one is
// already registered
func (u *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}

	_, err := u.store.GetProfileByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	if len(password) < minPasswordLength {
		return ErrInvalidRegistration
	}

	profile, err := u.createProfile(ctx, email, password, models.RoleAdmin, true)
	if err != nil && !errors.Is(err, ErrEmailTaken) {
		return err
	}
	if profile != nil {
		u.logger.Info("Bootstrap admin created", zap.String("user_id", profile.ID), zap.String("email", email))
	}
	return nil
}

// Login checks credentials and issues an access token
func (u *UserService) Login(ctx context.Context, email, password string) (resp *LoginResponse, err error) {
	ctx, span := util.StartSpan(ctx, "UserService.Login")
	defer func() { util.EndSpan(span, err) }()

	outcome := "success"
	defer func() { util.LoginAttemptsTotal.WithLabelValues(outcome).Inc() }()

	profile, err := u.store.GetProfileByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		outcome = "invalid_credentials"
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		outcome = "error"
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !auth.CheckPassword(profile.PasswordHash, password) {
		outcome = "invalid_credentials"
		return nil, ErrInvalidCredentials
	}
	if !profile.IsActive {
		outcome = "inactive"
		return nil, ErrAccountInactive
	}

	token, err := u.tokens.GenerateToken(profile.ID, profile.Email, profile.Role)
	if err != nil {
		outcome = "error"
		return nil, err
	}

	u.logger.Info("User logged in", zap.String("user_id", profile.ID), zap.String("role", profile.Role))
	return &LoginResponse{Token: token, Profile: profile}, nil
}

// Authorize resolves a bearer token to the current, active profile
func (u *UserService) Authorize(ctx context.Context, token string) (*models.Profile, error) {
	claims, err := u.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	profile, err := u.store.GetProfileByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !profile.IsActive {
		return nil, ErrAccountInactive
	}
	return profile, nil
}

// List returns every profile, newest first
func (u *UserService) List(ctx context.Context) ([]models.Profile, error) {
	profiles, err := u.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// Activate approves an account
func (u *UserService) Activate(ctx context.Context, id string) (*models.Profile, error) {
	return u.Update(ctx, id, "", boolPtr(true))
}

// Deactivate blocks an account
func (u *UserService) Deactivate(ctx context.Context, id string) (*models.Profile, error) {
	return u.Update(ctx, id, "", boolPtr(false))
}

// Update changes the role and/or activation of an account. An empty role or
// nil active keeps the current value.
func (u *UserService) Update(ctx context.Context, id, role string, active *bool) (*models.Profile, error) {
	if role != "" && !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	profile, err := u.getProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	newRole, newActive := profile.Role, profile.IsActive
	if role != "" {
		newRole = role
	}
	if active != nil {
		newActive = *active
	}
	if profile.IsAdmin() && (newRole != models.RoleAdmin || !newActive) {
		return nil, ErrAdminProtected
	}

	if err := u.store.UpdateProfileAccess(ctx, id, newRole, newActive); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	profile.Role, profile.IsActive = newRole, newActive
	u.logger.Info("User access updated",
		zap.String("user_id", id),
		zap.String("role", newRole),
		zap.Bool("active", newActive))
	return profile, nil
}

// Delete removes an account
func (u *UserService) Delete(ctx context.Context, id string) error {
	profile, err := u.getProfile(ctx, id)
	if err != nil {
		return err
	}
	if profile.IsAdmin() {
		return ErrAdminProtected
	}

	if err := u.store.DeleteProfile(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	u.logger.Info("User deleted", zap.String("user_id", id))
	return nil
}

func (u *UserService) getProfile(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := u.store.GetProfileByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

func (u *UserService) createProfile(ctx context.Context, email, password, role string, active bool) (*models.Profile, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	if err := u.store.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func boolPtr(b bool) *bool {
	return &b
}

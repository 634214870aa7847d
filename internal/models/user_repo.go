package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/postgrest-go"
)

func (su *SupabaseRepo) CreateUser(ctx context.Context, req *SignUpRequest) (interface{}, error) {
	// The profile and role rows are created by the on-signup trigger from
	// this metadata.
	signed := types.SignupRequest{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
		Data: map[string]interface{}{
			"full_name": strings.TrimSpace(req.FullName),
			"phone":     strings.TrimSpace(req.Phone),
			"role":      string(req.Role),
		},
	}

	res, err := su.supabaseClient.Auth.Signup(signed)
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(strings.ToLower(errMsg), "already registered") {
			return nil, ErrAccountExists
		}

		if strings.Contains(errMsg, "null value in column") {
			return nil, fmt.Errorf("%w: required field is missing", ErrInvalidSignUp)
		}

		if strings.Contains(errMsg, "unique constraint") {
			return nil, ErrAccountExists
		}

		if strings.Contains(errMsg, "invalid input syntax") {
			return nil, fmt.Errorf("%w: invalid input format", ErrInvalidSignUp)
		}

		return nil, fmt.Errorf("failed to create user")
	}
	return res, nil
}

func (su *SupabaseRepo) AuthenticateUser(ctx context.Context, email, password string) (interface{}, error) {
	resp, err := su.supabaseClient.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate user: %v", err)
	}
	return resp, nil
}

func (su *SupabaseRepo) RefreshToken(ctx context.Context, refreshToken string) (interface{}, error) {
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %v", err)
	}
	return resp, nil
}

func (su *SupabaseRepo) ListProfiles(ctx context.Context) ([]UserProfile, error) {
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	raw, _, err := client.From(ProfilesTable).
		Select("*", "", false).
		Order("created_at", newestFirst).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %v", err)
	}

	profiles := []UserProfile{}
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile rows: %v", err)
	}
	return profiles, nil
}

func (su *SupabaseRepo) GetProfile(ctx context.Context, userId uuid.UUID) (*UserProfile, error) {
	if userId == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	raw, status, err := client.From(ProfilesTable).
		Select("*", "", false).
		Eq("user_id", userId.String()).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%v", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to get profile: %v", err)
	}

	var profiles []UserProfile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile rows: %v", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

func (su *SupabaseRepo) DeleteProfile(ctx context.Context, userId uuid.UUID) error {
	if userId == uuid.Nil {
		return fmt.Errorf("no valid UUID provided")
	}
	client, err := su.client(ctx)
	if err != nil {
		return err
	}

	if _, _, err := client.From(ProfilesTable).Delete("", "").Eq("user_id", userId.String()).Execute(); err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}
	return nil
}

func (su *SupabaseRepo) ListRoles(ctx context.Context) ([]UserRole, error) {
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	raw, _, err := client.From(RolesTable).Select("*", "", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %v", err)
	}

	roles := []UserRole{}
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal role rows: %v", err)
	}
	return roles, nil
}

func (su *SupabaseRepo) GetRole(ctx context.Context, userId uuid.UUID) (*UserRole, error) {
	client, err := su.client(ctx)
	if err != nil {
		return nil, err
	}

	raw, _, err := client.From(RolesTable).
		Select("*", "", false).
		Eq("user_id", userId.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %v", err)
	}

	var roles []UserRole
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal role rows: %v", err)
	}
	if len(roles) == 0 {
		return nil, nil
	}
	return &roles[0], nil
}

func (su *SupabaseRepo) UpdateRole(ctx context.Context, userId uuid.UUID, role Role) error {
	client, err := su.client(ctx)
	if err != nil {
		return err
	}

	_, _, err = client.From(RolesTable).
		Update(map[string]interface{}{"role": role}, "minimal", "").
		Eq("user_id", userId.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update role: %v", err)
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joshua-takyi/estately/internal/cache"
	"github.com/joshua-takyi/estately/internal/models"
)

const (
	NoticeRoleUpdated     = "User role updated successfully"
	NoticeRoleUpdateError = "Error updating user role"
	NoticeUserDeleted     = "User deleted successfully"
	NoticeUserDeleteError = "Error deleting user"
)

type UserService struct {
	authRepo models.AuthRepo
	profiles models.ProfileRepo
	roles    models.RoleRepo
	cache    *cache.Coordinator
	logger   *slog.Logger
}

func NewUserService(authRepo models.AuthRepo, profiles models.ProfileRepo, roles models.RoleRepo, c *cache.Coordinator, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		authRepo: authRepo,
		profiles: profiles,
		roles:    roles,
		cache:    c,
		logger:   logger,
	}
}

func (us *UserService) CreateUser(ctx context.Context, req *models.SignUpRequest) (interface{}, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, &ValidationError{Err: err}
	}
	return us.authRepo.CreateUser(ctx, req)
}

func (us *UserService) AuthenticateUser(ctx context.Context, req *models.SignInRequest) (interface{}, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, &ValidationError{Err: err}
	}
	response, err := us.authRepo.AuthenticateUser(ctx, req.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return response, nil
}

func (us *UserService) RefreshToken(ctx context.Context, refreshToken string) (interface{}, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}
	response, err := us.authRepo.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return response, nil
}

// GetRole returns the user's first role row, or buyer when there is none.
func (us *UserService) GetRole(ctx context.Context, userId uuid.UUID) (models.Role, error) {
	role, err := us.roles.GetRole(ctx, userId)
	if err != nil {
		return "", fmt.Errorf("failed to get user role: %w", err)
	}
	if role == nil {
		return models.RoleBuyer, nil
	}
	return role.Role, nil
}

func (us *UserService) GetProfile(ctx context.Context, userId uuid.UUID) (*models.UserProfile, error) {
	profile, err := us.profiles.GetProfile(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// ListAllUsers returns every profile, newest first, with its role rows.
func (us *UserService) ListAllUsers(ctx context.Context) ([]models.UserWithRoles, error) {
	key := cache.NewKey(KeyAllUsers, nil)
	return cache.Fetch(ctx, us.cache, key, func(ctx context.Context) ([]models.UserWithRoles, error) {
		profiles, err := us.profiles.ListProfiles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list profiles: %w", err)
		}
		roles, err := us.roles.ListRoles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list roles: %w", err)
		}
		return joinRoles(profiles, roles), nil
	})
}

// joinRoles groups role rows by user id and attaches them to the profiles,
// keeping the profile order.
func joinRoles(profiles []models.UserProfile, roles []models.UserRole) []models.UserWithRoles {
	byUser := make(map[uuid.UUID][]models.UserRole, len(roles))
	for _, r := range roles {
		byUser[r.UserId] = append(byUser[r.UserId], r)
	}

	users := make([]models.UserWithRoles, 0, len(profiles))
	for _, p := range profiles {
		userRoles := byUser[p.UserId]
		if userRoles == nil {
			userRoles = []models.UserRole{}
		}
		users = append(users, models.UserWithRoles{UserProfile: p, Roles: userRoles})
	}
	return users
}

func (us *UserService) UpdateUserRole(ctx context.Context, userId uuid.UUID, role models.Role) error {
	if userId == uuid.Nil {
		return ErrInvalidID
	}
	parsed, err := models.ParseRole(string(role))
	if err != nil {
		return &ValidationError{Err: fmt.Errorf("%w: %v", ErrInvalidRole, err)}
	}

	m := mutation{
		name:        "update-user-role",
		invalidates: []string{KeyAllUsers},
		success:     NoticeRoleUpdated,
		failure:     NoticeRoleUpdateError,
	}
	_, err = runMutation(ctx, us.cache, us.logger, m, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, us.roles.UpdateRole(ctx, userId, parsed)
	})
	return err
}

// DeleteUser removes the user's profile row. Listings and favourites that
// reference the user may go with it, and single listings embed the seller's
// profile, so their views are dropped too.
func (us *UserService) DeleteUser(ctx context.Context, userId uuid.UUID) error {
	if userId == uuid.Nil {
		return ErrInvalidID
	}
	m := mutation{
		name: "delete-user",
		invalidates: []string{
			KeyAllUsers,
			KeyProperties,
			KeyProperty,
			KeyMyProperties,
			KeyAllPropertiesAdmin,
			KeyFavorites,
			KeyFavoriteIds,
		},
		success: NoticeUserDeleted,
		failure: NoticeUserDeleteError,
	}
	_, err := runMutation(ctx, us.cache, us.logger, m, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, us.profiles.DeleteProfile(ctx, userId)
	})
	return err
}

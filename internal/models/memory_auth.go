package models

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
	"golang.org/x/crypto/bcrypt"
)

const memoryTokenTTL = time.Hour

// MemoryAuth issues HS256 tokens for accounts kept in memory. It pairs with
// MemoryRepo, which receives the profile and role rows on sign-up.
type MemoryAuth struct {
	mu       sync.Mutex
	repo     *MemoryRepo
	secret   []byte
	accounts map[string]memoryAccount
	refresh  map[string]string
}

type memoryAccount struct {
	user         types.User
	passwordHash []byte
}

func NewMemoryAuth(repo *MemoryRepo, secret string) *MemoryAuth {
	return &MemoryAuth{
		repo:     repo,
		secret:   []byte(secret),
		accounts: make(map[string]memoryAccount),
		refresh:  make(map[string]string),
	}
}

func (a *MemoryAuth) CreateUser(ctx context.Context, req *SignUpRequest) (interface{}, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.accounts[email]; ok {
		return nil, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := types.User{
		ID:        uuid.New(),
		Email:     email,
		Role:      "authenticated",
		CreatedAt: now,
		UpdatedAt: now,
		UserMetadata: map[string]interface{}{
			"full_name": strings.TrimSpace(req.FullName),
			"role":      string(req.Role),
		},
	}
	a.accounts[email] = memoryAccount{user: user, passwordHash: hash}

	var phone *string
	if p := strings.TrimSpace(req.Phone); p != "" {
		phone = &p
	}
	a.repo.AddProfile(UserProfile{
		UserId:   user.ID,
		FullName: strings.TrimSpace(req.FullName),
		Email:    email,
		Phone:    phone,
	}, req.Role)

	return &types.SignupResponse{User: user}, nil
}

func (a *MemoryAuth) AuthenticateUser(ctx context.Context, email, password string) (interface{}, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	account, ok := a.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, fmt.Errorf("failed to authenticate user: invalid login credentials")
	}
	if err := bcrypt.CompareHashAndPassword(account.passwordHash, []byte(password)); err != nil {
		return nil, fmt.Errorf("failed to authenticate user: invalid login credentials")
	}
	return a.issue(account.user)
}

func (a *MemoryAuth) RefreshToken(ctx context.Context, refreshToken string) (interface{}, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	email, ok := a.refresh[refreshToken]
	if !ok {
		return nil, fmt.Errorf("failed to refresh token: invalid refresh token")
	}
	delete(a.refresh, refreshToken)
	return a.issue(a.accounts[email].user)
}

// issue must be called with a.mu held.
func (a *MemoryAuth) issue(user types.User) (*types.TokenResponse, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"aud":   "authenticated",
		"iat":   now.Unix(),
		"exp":   now.Add(memoryTokenTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %v", err)
	}

	refreshToken := uuid.NewString()
	a.refresh[refreshToken] = user.Email

	return &types.TokenResponse{
		Session: types.Session{
			AccessToken:  signed,
			RefreshToken: refreshToken,
			TokenType:    "bearer",
			ExpiresIn:    int(memoryTokenTTL.Seconds()),
			ExpiresAt:    now.Add(memoryTokenTTL).Unix(),
			User:         user,
		},
	}, nil
}

var _ AuthRepo = (*MemoryAuth)(nil)

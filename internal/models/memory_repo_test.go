package models

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

func seedProperty(t *testing.T, m *MemoryRepo, seller uuid.UUID, title string) *Property {
	t.Helper()
	in := PropertyInput{Title: title, Price: 1000, PropertyType: TypeHouse, Address: "2 Oxford Street", City: "Osu"}
	p, err := m.CreateProperty(context.Background(), in.ToProperty(seller))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return p
}

func TestMemoryRepoNewestFirst(t *testing.T) {
	m := NewMemoryRepo("")
	seller := uuid.New()
	first := seedProperty(t, m, seller, "First listing")
	second := seedProperty(t, m, seller, "Second listing")

	got, err := m.ListProperties(context.Background(), PropertyFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Id != second.Id || got[1].Id != first.Id {
		t.Errorf("expected newest first")
	}
}

func TestMemoryRepoUpdateProperty(t *testing.T) {
	m := NewMemoryRepo("")
	ctx := context.Background()
	p := seedProperty(t, m, uuid.New(), "Listing to update")

	update := PropertyUpdate{Title: ptr("Updated listing"), Bedrooms: ptr(4)}
	updated, err := m.UpdateProperty(ctx, p.Id, update.Fields())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Updated listing" || updated.Bedrooms == nil || *updated.Bedrooms != 4 {
		t.Errorf("unexpected update result %+v", updated)
	}

	_, err = m.UpdateProperty(ctx, uuid.New(), update.Fields())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if _, err := m.UpdateProperty(ctx, p.Id, map[string]interface{}{"owner": "x"}); err == nil {
		t.Error("expected unknown column to fail")
	}
}

func TestMemoryRepoDeleteCascades(t *testing.T) {
	m := NewMemoryRepo("")
	ctx := context.Background()
	user := uuid.New()
	p := seedProperty(t, m, uuid.New(), "Listing to delete")

	if _, err := m.AddPropertyImage(ctx, &PropertyImage{PropertyId: p.Id, ImageURL: "https://x.test/a.jpg", IsPrimary: true}); err != nil {
		t.Fatalf("add image: %v", err)
	}
	if _, err := m.AddFavorite(ctx, user, p.Id); err != nil {
		t.Fatalf("add favourite: %v", err)
	}

	if err := m.DeleteProperty(ctx, p.Id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := m.GetProperty(ctx, p.Id); got != nil {
		t.Error("property still present")
	}
	if ids, _ := m.ListFavoritePropertyIDs(ctx, user); len(ids) != 0 {
		t.Errorf("favourites not removed: %v", ids)
	}
	if _, err := m.AddPropertyImage(ctx, &PropertyImage{PropertyId: p.Id, ImageURL: "https://x.test/b.jpg"}); err == nil {
		t.Error("expected adding an image to a deleted listing to fail")
	}
}

func TestMemoryRepoFavoritesAreUnique(t *testing.T) {
	m := NewMemoryRepo("")
	ctx := context.Background()
	user, property := uuid.New(), uuid.New()

	a, err := m.AddFavorite(ctx, user, property)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, err := m.AddFavorite(ctx, user, property)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if a.Id != b.Id {
		t.Error("second add should return the existing row")
	}
	if favs, _ := m.ListFavorites(ctx, user); len(favs) != 1 {
		t.Errorf("expected one favourite, got %d", len(favs))
	}
}

func TestMemoryRepoClearPrimaryImage(t *testing.T) {
	m := NewMemoryRepo("")
	ctx := context.Background()
	p := seedProperty(t, m, uuid.New(), "Listing with images")

	for i := 0; i < 2; i++ {
		if _, err := m.AddPropertyImage(ctx, &PropertyImage{PropertyId: p.Id, ImageURL: "https://x.test/i.jpg", IsPrimary: true, DisplayOrder: i}); err != nil {
			t.Fatalf("add image: %v", err)
		}
	}
	if err := m.ClearPrimaryImage(ctx, p.Id); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ := m.GetProperty(ctx, p.Id)
	for _, img := range got.Images {
		if img.IsPrimary {
			t.Errorf("image %d still primary", img.DisplayOrder)
		}
	}
}

func TestMemoryRepoProfilesAndRoles(t *testing.T) {
	m := NewMemoryRepo("")
	ctx := context.Background()
	older, newer := uuid.New(), uuid.New()
	m.AddProfile(UserProfile{UserId: older, CreatedAt: time.Now().Add(-time.Hour)}, RoleSeller)
	m.AddProfile(UserProfile{UserId: newer}, RoleBuyer)

	profiles, _ := m.ListProfiles(ctx)
	if len(profiles) != 2 || profiles[0].UserId != newer {
		t.Fatalf("expected newest profile first, got %+v", profiles)
	}

	if err := m.UpdateRole(ctx, newer, RoleAdmin); err != nil {
		t.Fatalf("update role: %v", err)
	}
	role, _ := m.GetRole(ctx, newer)
	if role == nil || role.Role != RoleAdmin {
		t.Errorf("expected admin, got %+v", role)
	}

	if err := m.DeleteProfile(ctx, newer); err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	if p, _ := m.GetProfile(ctx, newer); p != nil {
		t.Error("profile still present")
	}
	if r, _ := m.GetRole(ctx, newer); r != nil {
		t.Error("role still present")
	}
}

func TestMemoryRepoObjects(t *testing.T) {
	m := NewMemoryRepo("https://cdn.test")
	ctx := context.Background()

	if err := m.Upload(ctx, "p/1.jpg", "image/jpeg", strings.NewReader("bytes")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := m.Upload(ctx, "p/1.jpg", "image/jpeg", strings.NewReader("bytes")); err == nil {
		t.Error("expected duplicate path to fail")
	}
	url, _ := m.PublicURL("p/1.jpg")
	if url != "https://cdn.test/p/1.jpg" {
		t.Errorf("unexpected url %q", url)
	}
}

func TestMemoryAuthLifecycle(t *testing.T) {
	m := NewMemoryRepo("")
	auth := NewMemoryAuth(m, "secret")
	ctx := context.Background()
	req := &SignUpRequest{FullName: "Efua Mensah", Email: "Efua@Example.com", Password: "secret1", Role: RoleSeller}

	if _, err := auth.CreateUser(ctx, req); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := auth.CreateUser(ctx, req); !errors.Is(err, ErrAccountExists) {
		t.Errorf("expected ErrAccountExists for a duplicate email, got %v", err)
	}

	res, err := auth.AuthenticateUser(ctx, "efua@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	session := res.(*types.TokenResponse)
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", session)
	}

	refreshed, err := auth.RefreshToken(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.(*types.TokenResponse).RefreshToken == session.RefreshToken {
		t.Error("refresh token should rotate")
	}
	if _, err := auth.RefreshToken(ctx, session.RefreshToken); err == nil {
		t.Error("used refresh token should be rejected")
	}

	role, _ := m.GetRole(ctx, session.User.ID)
	if role == nil || role.Role != RoleSeller {
		t.Errorf("expected seller role row, got %+v", role)
	}
}

func TestFavouriteDocumentOrdering(t *testing.T) {
	user := uuid.New()
	a, b := uuid.New(), uuid.New()
	now := time.Now()
	doc := FavouriteDocument{
		UserID: user.String(),
		Items: map[string]FavouriteItem{
			b.String(): {ID: uuid.NewString(), PropertyID: b.String(), AddedAt: now},
			a.String(): {ID: uuid.NewString(), PropertyID: a.String(), AddedAt: now.Add(-time.Minute)},
		},
	}
	favs, err := doc.Favorites()
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}
	if len(favs) != 2 || favs[0].PropertyId != a || favs[1].PropertyId != b {
		t.Errorf("expected oldest first, got %+v", favs)
	}

	doc.Items["bad"] = FavouriteItem{ID: "nope", PropertyID: "bad"}
	if _, err := doc.Favorites(); err == nil {
		t.Error("expected malformed ids to fail")
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/estately/internal/cache"
	"github.com/joshua-takyi/estately/internal/models"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixture struct {
	repo       *models.MemoryRepo
	cache      *cache.Coordinator
	properties *PropertyService
	favourites *FavouriteService
	users      *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := models.NewMemoryRepo("https://cdn.example.com")
	c := cache.NewCoordinator(cache.NewMemoryStore(), quietLogger)
	return &fixture{
		repo:       repo,
		cache:      c,
		properties: NewPropertyService(repo, repo, repo, repo, c, quietLogger),
		favourites: NewFavouriteService(repo, repo, c, quietLogger),
		users:      NewUserService(models.NewMemoryAuth(repo, "test-secret"), repo, repo, c, quietLogger),
	}
}

func intPtr(v int) *int { return &v }

func validInput(title string, price float64, bedrooms int) *models.PropertyInput {
	return &models.PropertyInput{
		Title:        title,
		Price:        price,
		PropertyType: models.TypeHouse,
		Bedrooms:     intPtr(bedrooms),
		Address:      "12 Harbour Street",
		City:         "Accra",
	}
}

func mustCreate(t *testing.T, f *fixture, seller uuid.UUID, in *models.PropertyInput) *models.Property {
	t.Helper()
	p, err := f.properties.CreateProperty(context.Background(), seller, in)
	if err != nil {
		t.Fatalf("create property: %v", err)
	}
	return p
}

func TestListPropertiesAppliesEveryFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := uuid.New()

	cheap := mustCreate(t, f, seller, validInput("Cheap bungalow", 150000, 3))
	small := mustCreate(t, f, seller, validInput("Small family house", 250000, 2))
	match := mustCreate(t, f, seller, validInput("Large family house", 300000, 4))

	got, err := f.properties.ListProperties(ctx, models.PropertyFilters{MinPrice: 200000, Bedrooms: 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Id != match.Id {
		t.Fatalf("expected only %s, got %v", match.Id, ids(got))
	}
	for _, p := range got {
		if p.Id == cheap.Id || p.Id == small.Id {
			t.Errorf("property %s should have been filtered out", p.Id)
		}
	}

	got, err = f.properties.ListProperties(ctx, models.PropertyFilters{Search: "FAMILY"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 search matches, got %d", len(got))
	}
	if got[0].Id != match.Id {
		t.Errorf("expected newest first, got %v", ids(got))
	}
}

func ids(props []models.PropertyWithImages) []uuid.UUID {
	res := make([]uuid.UUID, 0, len(props))
	for _, p := range props {
		res = append(res, p.Id)
	}
	return res
}

func TestCreatePropertyShowsInMyProperties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := uuid.New()

	before, err := f.properties.ListMyProperties(ctx, seller)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(before) != 0 {
		t.Fatalf("expected no listings, got %d", len(before))
	}

	created := mustCreate(t, f, seller, validInput("Seaside villa", 900000, 5))
	if created.Status != models.StatusActive {
		t.Errorf("expected active status, got %s", created.Status)
	}
	if created.SellerId != seller {
		t.Errorf("expected seller %s, got %s", seller, created.SellerId)
	}

	after, err := f.properties.ListMyProperties(ctx, seller)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(after) != 1 || after[0].Id != created.Id {
		t.Fatalf("expected the new listing, got %v", ids(after))
	}
}

func TestListMyPropertiesDisabledWithoutUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.properties.ListMyProperties(context.Background(), uuid.Nil)
	if !errors.Is(err, cache.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestGetPropertyMissingReturnsNil(t *testing.T) {
	f := newFixture(t)
	got, err := f.properties.GetProperty(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil property, got %+v", got)
	}
}

func TestGetPropertyAttachesSellerProfile(t *testing.T) {
	f := newFixture(t)
	seller := uuid.New()
	f.repo.AddProfile(models.UserProfile{UserId: seller, FullName: "Ama Mensah", Email: "ama@example.com"}, models.RoleSeller)
	created := mustCreate(t, f, seller, validInput("Garden apartment", 120000, 2))

	got, err := f.properties.GetProperty(context.Background(), created.Id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.SellerProfile == nil {
		t.Fatalf("expected seller profile, got %+v", got)
	}
	if got.SellerProfile.FullName != "Ama Mensah" {
		t.Errorf("unexpected seller %q", got.SellerProfile.FullName)
	}
}

func TestCreatePropertyValidationNeverReachesGateway(t *testing.T) {
	f := newFixture(t)
	in := validInput("Bad", 0, 1)

	_, err := f.properties.CreateProperty(context.Background(), uuid.New(), in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	all, _ := f.repo.ListProperties(context.Background(), models.PropertyFilters{})
	if len(all) != 0 {
		t.Errorf("expected no rows written, got %d", len(all))
	}
}

type failingPropertyRepo struct {
	*models.MemoryRepo
	listCalls int
}

func (r *failingPropertyRepo) ListProperties(ctx context.Context, filters models.PropertyFilters) ([]models.PropertyWithImages, error) {
	r.listCalls++
	return r.MemoryRepo.ListProperties(ctx, filters)
}

func (r *failingPropertyRepo) CreateProperty(ctx context.Context, property *models.Property) (*models.Property, error) {
	return nil, fmt.Errorf("permission denied for table properties")
}

func TestFailedMutationLeavesCacheIntact(t *testing.T) {
	repo := &failingPropertyRepo{MemoryRepo: models.NewMemoryRepo("")}
	c := cache.NewCoordinator(cache.NewMemoryStore(), quietLogger)
	ps := NewPropertyService(repo, repo, repo, repo, c, quietLogger)
	ctx := context.Background()

	if _, err := ps.ListProperties(ctx, models.PropertyFilters{}); err != nil {
		t.Fatalf("list: %v", err)
	}

	_, err := ps.CreateProperty(ctx, uuid.New(), validInput("Townhouse near the park", 200000, 3))
	var merr *MutationError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MutationError, got %v", err)
	}
	if merr.Title != NoticePropertyCreateError {
		t.Errorf("unexpected title %q", merr.Title)
	}
	if !strings.Contains(merr.Err.Error(), "permission denied") {
		t.Errorf("expected backend description, got %v", merr.Err)
	}

	if _, err := ps.ListProperties(ctx, models.PropertyFilters{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.listCalls != 1 {
		t.Errorf("expected cached listing to survive, got %d fetches", repo.listCalls)
	}
}

func TestUpdatePropertyRefreshesSingleView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mustCreate(t, f, uuid.New(), validInput("Old title here", 100000, 1))

	if _, err := f.properties.GetProperty(ctx, created.Id); err != nil {
		t.Fatalf("get: %v", err)
	}

	sold := models.StatusSold
	title := "New title here"
	if _, err := f.properties.UpdateProperty(ctx, created.Id, &models.PropertyUpdate{Title: &title, Status: &sold}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := f.properties.GetProperty(ctx, created.Id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != title || got.Status != models.StatusSold {
		t.Errorf("expected updated row, got %q/%s", got.Title, got.Status)
	}
}

func TestUpdatePropertyRejectsEmptyUpdate(t *testing.T) {
	f := newFixture(t)
	_, err := f.properties.UpdateProperty(context.Background(), uuid.New(), &models.PropertyUpdate{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDeletePropertyWithoutImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mustCreate(t, f, uuid.New(), validInput("Plot of land", 50000, 0))

	if got, _ := f.properties.ListProperties(ctx, models.PropertyFilters{}); len(got) != 1 {
		t.Fatalf("expected one listing, got %d", len(got))
	}
	if err := f.properties.DeleteProperty(ctx, created.Id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := f.properties.ListProperties(ctx, models.PropertyFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected listing gone, got %v", ids(got))
	}
}

func TestAddPrimaryImageDemotesPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mustCreate(t, f, uuid.New(), validInput("Corner condo", 180000, 2))

	first, err := f.properties.AddPropertyImage(ctx, created.Id, "https://cdn.example.com/a.jpg", true, 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := f.properties.AddPropertyImage(ctx, created.Id, "https://cdn.example.com/b.jpg", true, 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	got, _ := f.properties.GetProperty(ctx, created.Id)
	primaries := 0
	for _, img := range got.Images {
		if img.IsPrimary {
			primaries++
			if img.Id != second.Id {
				t.Errorf("expected %s to be primary, got %s", second.Id, img.Id)
			}
		}
		if img.Id == first.Id && img.IsPrimary {
			t.Error("first image should have been demoted")
		}
	}
	if primaries != 1 {
		t.Errorf("expected exactly one primary image, got %d", primaries)
	}
}

func TestDeletePropertyImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mustCreate(t, f, uuid.New(), validInput("Penthouse suite", 700000, 3))
	img, err := f.properties.AddPropertyImage(ctx, created.Id, "https://cdn.example.com/p.jpg", true, 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got, _ := f.properties.GetProperty(ctx, created.Id); len(got.Images) != 1 {
		t.Fatalf("expected one image")
	}

	if err := f.properties.DeletePropertyImage(ctx, img.Id); err != nil {
		t.Fatalf("delete image: %v", err)
	}
	got, _ := f.properties.GetProperty(ctx, created.Id)
	if len(got.Images) != 0 {
		t.Errorf("expected no images, got %d", len(got.Images))
	}
}

func files(n int) []ImageFile {
	res := make([]ImageFile, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, ImageFile{
			Name:        fmt.Sprintf("photo-%d.PNG", i),
			ContentType: "image/png",
			Data:        strings.NewReader("image bytes"),
		})
	}
	return res
}

func TestUploadPropertyImagesOrdersAndMarksPrimary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mustCreate(t, f, uuid.New(), validInput("Lake house retreat", 400000, 4))

	added := f.properties.UploadPropertyImages(ctx, created.Id, nil, files(3))
	if len(added) != 3 {
		t.Fatalf("expected 3 images, got %d", len(added))
	}

	got, _ := f.properties.GetProperty(ctx, created.Id)
	for i, img := range got.Images {
		if img.DisplayOrder != i {
			t.Errorf("image %d has display_order %d", i, img.DisplayOrder)
		}
		if img.IsPrimary != (img.DisplayOrder == 0) {
			t.Errorf("image with order %d has is_primary=%v", img.DisplayOrder, img.IsPrimary)
		}
		if !strings.HasPrefix(img.ImageURL, "https://cdn.example.com/"+created.Id.String()+"/") {
			t.Errorf("unexpected url %q", img.ImageURL)
		}
		if !strings.HasSuffix(img.ImageURL, ".png") {
			t.Errorf("expected lower-cased extension in %q", img.ImageURL)
		}
	}

	more := f.properties.UploadPropertyImages(ctx, created.Id, got.Images, files(1))
	if len(more) != 1 || more[0].DisplayOrder != 3 || more[0].IsPrimary {
		t.Errorf("appended image should be order 3 and not primary, got %+v", more)
	}
}

type flakyStore struct {
	models.ObjectStore
	calls  int
	failOn int
}

func (s *flakyStore) Upload(ctx context.Context, path, contentType string, data io.Reader) error {
	s.calls++
	if s.calls == s.failOn {
		return fmt.Errorf("storage unavailable")
	}
	return s.ObjectStore.Upload(ctx, path, contentType, data)
}

func TestUploadPropertyImagesSkipsFailedFiles(t *testing.T) {
	tests := []struct {
		name        string
		failOn      int
		wantOrders  []int
		wantPrimary int
	}{
		{name: "middle file fails", failOn: 2, wantOrders: []int{0, 2}, wantPrimary: 0},
		{name: "first file fails", failOn: 1, wantOrders: []int{1, 2}, wantPrimary: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := models.NewMemoryRepo("https://cdn.example.com")
			store := &flakyStore{ObjectStore: repo, failOn: tt.failOn}
			c := cache.NewCoordinator(nil, quietLogger)
			ps := NewPropertyService(repo, repo, repo, store, c, quietLogger)
			ctx := context.Background()

			created, err := ps.CreateProperty(ctx, uuid.New(), validInput("Duplex in town", 220000, 3))
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			added := ps.UploadPropertyImages(ctx, created.Id, nil, files(3))
			if len(added) != len(tt.wantOrders) {
				t.Fatalf("expected %d images after one failure, got %d", len(tt.wantOrders), len(added))
			}
			for i, img := range added {
				if img.DisplayOrder != tt.wantOrders[i] {
					t.Errorf("image %d has order %d, want %d", i, img.DisplayOrder, tt.wantOrders[i])
				}
				if img.IsPrimary != (img.DisplayOrder == tt.wantPrimary) {
					t.Errorf("image with order %d has is_primary=%v", img.DisplayOrder, img.IsPrimary)
				}
			}
		})
	}
}

func TestUploadAfterDeletingPrimaryImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mustCreate(t, f, uuid.New(), validInput("Garden cottage", 180000, 2))

	first := f.properties.UploadPropertyImages(ctx, created.Id, nil, files(2))
	if len(first) != 2 {
		t.Fatalf("expected 2 images, got %d", len(first))
	}
	if err := f.properties.DeletePropertyImage(ctx, first[0].Id); err != nil {
		t.Fatalf("delete image: %v", err)
	}

	cur, _ := f.properties.GetProperty(ctx, created.Id)
	more := f.properties.UploadPropertyImages(ctx, created.Id, cur.Images, files(1))
	if len(more) != 1 {
		t.Fatalf("expected 1 image, got %d", len(more))
	}
	if more[0].DisplayOrder != 2 {
		t.Errorf("new image should follow order 1, got %d", more[0].DisplayOrder)
	}

	got, _ := f.properties.GetProperty(ctx, created.Id)
	orders := map[int]int{}
	primaries := 0
	for _, img := range got.Images {
		orders[img.DisplayOrder]++
		if img.IsPrimary {
			primaries++
		}
	}
	if primaries != 1 {
		t.Errorf("expected exactly one primary image, got %d", primaries)
	}
	for order, n := range orders {
		if n > 1 {
			t.Errorf("display order %d used %d times", order, n)
		}
	}
}

func TestImagePath(t *testing.T) {
	id := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	at := time.UnixMilli(1700000000123)

	tests := []struct {
		name string
		file string
		want string
	}{
		{"keeps extension", "front.jpeg", "7c9e6679-7425-40de-944b-e07fc1f90ae7/1700000000123_2.jpeg"},
		{"lower-cases extension", "BACK.PNG", "7c9e6679-7425-40de-944b-e07fc1f90ae7/1700000000123_2.png"},
		{"defaults to jpg", "blob", "7c9e6679-7425-40de-944b-e07fc1f90ae7/1700000000123_2.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := imagePath(id, at, 2, tt.file); got != tt.want {
				t.Errorf("imagePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	p := mustCreate(t, f, uuid.New(), validInput("Studio downtown", 90000, 1))

	favIds, err := f.favourites.ListFavoriteIds(ctx, user)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(favIds) != 0 {
		t.Fatalf("expected no favourites, got %v", favIds)
	}

	notice, err := f.favourites.ToggleFavorite(ctx, user, p.Id, false)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if notice != NoticeFavoriteAdded {
		t.Errorf("unexpected notice %q", notice)
	}
	favIds, _ = f.favourites.ListFavoriteIds(ctx, user)
	if len(favIds) != 1 || favIds[0] != p.Id {
		t.Fatalf("expected %s favourited, got %v", p.Id, favIds)
	}

	notice, err = f.favourites.ToggleFavorite(ctx, user, p.Id, true)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if notice != NoticeFavoriteRemoved {
		t.Errorf("unexpected notice %q", notice)
	}
	favIds, _ = f.favourites.ListFavoriteIds(ctx, user)
	if len(favIds) != 0 {
		t.Errorf("expected favourites back to empty, got %v", favIds)
	}
}

func TestToggleFavoriteTwiceAddsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	p := mustCreate(t, f, uuid.New(), validInput("Cottage by the hill", 130000, 2))

	for i := 0; i < 2; i++ {
		if _, err := f.favourites.ToggleFavorite(ctx, user, p.Id, false); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	favIds, _ := f.favourites.ListFavoriteIds(ctx, user)
	if len(favIds) != 1 {
		t.Errorf("expected a single favourite row, got %d", len(favIds))
	}
}

func TestListFavoritesJoinsProperties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	kept := mustCreate(t, f, uuid.New(), validInput("Kept listing house", 100000, 2))
	gone := mustCreate(t, f, uuid.New(), validInput("Gone listing house", 100000, 2))

	for _, id := range []uuid.UUID{kept.Id, gone.Id} {
		if _, err := f.favourites.ToggleFavorite(ctx, user, id, false); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}

	got, err := f.favourites.ListFavorites(ctx, user)
	if err != nil {
		t.Fatalf("list favourites: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 favourites, got %d", len(got))
	}
	for _, fav := range got {
		if fav.Property == nil || fav.Property.Id != fav.PropertyId {
			t.Errorf("favourite %s not joined to its property", fav.Id)
		}
	}

	if err := f.properties.DeleteProperty(ctx, gone.Id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = f.favourites.ListFavorites(ctx, user)
	if err != nil {
		t.Fatalf("list favourites: %v", err)
	}
	if len(got) != 1 || got[0].PropertyId != kept.Id {
		t.Errorf("expected only the kept listing, got %+v", got)
	}
}

func TestJoinFavoritesMissingProperty(t *testing.T) {
	fav := models.Favorite{Id: uuid.New(), UserId: uuid.New(), PropertyId: uuid.New()}
	got := joinFavorites([]models.Favorite{fav}, nil)
	if len(got) != 1 || got[0].Property != nil {
		t.Errorf("expected nil property for a dangling favourite, got %+v", got)
	}
}

func TestListFavoritesDisabledWithoutUser(t *testing.T) {
	f := newFixture(t)
	if _, err := f.favourites.ListFavorites(context.Background(), uuid.Nil); !errors.Is(err, cache.ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
	if _, err := f.favourites.ListFavoriteIds(context.Background(), uuid.Nil); !errors.Is(err, cache.ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestUpdateUserRoleShowsInAllUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	f.repo.AddProfile(models.UserProfile{UserId: user, FullName: "Kofi Boateng", Email: "kofi@example.com"}, models.RoleBuyer)

	users, err := f.users.ListAllUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].PrimaryRole() != models.RoleBuyer {
		t.Fatalf("expected buyer, got %+v", users)
	}

	if err := f.users.UpdateUserRole(ctx, user, models.RoleSeller); err != nil {
		t.Fatalf("update role: %v", err)
	}
	users, err = f.users.ListAllUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if users[0].PrimaryRole() != models.RoleSeller {
		t.Errorf("expected seller, got %s", users[0].PrimaryRole())
	}
}

func TestUpdateUserRoleRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)
	err := f.users.UpdateUserRole(context.Background(), uuid.New(), models.Role("landlord"))
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestDeleteUserDropsFromAllUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	f.repo.AddProfile(models.UserProfile{UserId: a, FullName: "Esi Owusu", Email: "esi@example.com"}, models.RoleSeller)
	f.repo.AddProfile(models.UserProfile{UserId: b, FullName: "Yaw Asante", Email: "yaw@example.com"}, models.RoleBuyer)

	if users, _ := f.users.ListAllUsers(ctx); len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if err := f.users.DeleteUser(ctx, a); err != nil {
		t.Fatalf("delete: %v", err)
	}
	users, _ := f.users.ListAllUsers(ctx)
	if len(users) != 1 || users[0].UserId != b {
		t.Errorf("expected only %s left, got %+v", b, users)
	}
}

func TestDeleteUserRefreshesCachedListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := uuid.New()
	f.repo.AddProfile(models.UserProfile{UserId: seller, FullName: "Kofi Boateng", Email: "kofi@example.com"}, models.RoleSeller)
	created := mustCreate(t, f, seller, validInput("Seaside bungalow", 260000, 3))

	before, _ := f.properties.GetProperty(ctx, created.Id)
	if before == nil || before.SellerProfile == nil {
		t.Fatal("expected the seller profile on the cached listing")
	}

	if err := f.users.DeleteUser(ctx, seller); err != nil {
		t.Fatalf("delete: %v", err)
	}

	after, err := f.properties.GetProperty(ctx, created.Id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after != nil && after.SellerProfile != nil {
		t.Errorf("listing still carries deleted seller %q", after.SellerProfile.FullName)
	}
}

func TestJoinRolesKeepsProfileOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	profiles := []models.UserProfile{{UserId: a}, {UserId: b}}
	roles := []models.UserRole{
		{UserId: b, Role: models.RoleAdmin},
		{UserId: a, Role: models.RoleSeller},
		{UserId: b, Role: models.RoleSeller},
	}

	got := joinRoles(profiles, roles)
	if got[0].UserId != a || got[1].UserId != b {
		t.Fatal("profile order changed")
	}
	if len(got[1].Roles) != 2 || got[1].PrimaryRole() != models.RoleAdmin {
		t.Errorf("unexpected roles for b: %+v", got[1].Roles)
	}

	none := joinRoles([]models.UserProfile{{UserId: uuid.New()}}, nil)
	if none[0].Roles == nil || none[0].PrimaryRole() != models.RoleBuyer {
		t.Errorf("expected empty roles defaulting to buyer, got %+v", none[0].Roles)
	}
}

func TestGetRoleDefaultsToBuyer(t *testing.T) {
	f := newFixture(t)
	role, err := f.users.GetRole(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get role: %v", err)
	}
	if role != models.RoleBuyer {
		t.Errorf("expected buyer, got %s", role)
	}
}

func TestSignUpThenSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := &models.SignUpRequest{
		FullName:        "Abena Darko",
		Email:           "abena@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Role:            models.RoleSeller,
	}
	if _, err := f.users.CreateUser(ctx, req); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := f.users.AuthenticateUser(ctx, &models.SignInRequest{Email: req.Email, Password: "wrong-pass"}); err == nil {
		t.Error("expected wrong password to fail")
	}
	if _, err := f.users.AuthenticateUser(ctx, &models.SignInRequest{Email: req.Email, Password: req.Password}); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	users, _ := f.users.ListAllUsers(ctx)
	if len(users) != 1 || users[0].PrimaryRole() != models.RoleSeller {
		t.Errorf("expected the new seller in all users, got %+v", users)
	}
}

func TestSignUpRejectsMismatchedPasswords(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.CreateUser(context.Background(), &models.SignUpRequest{
		FullName:        "Abena Darko",
		Email:           "abena@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret124",
		Role:            models.RoleBuyer,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

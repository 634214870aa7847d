package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PropertyType string

const (
	TypeHouse      PropertyType = "house"
	TypeApartment  PropertyType = "apartment"
	TypeLand       PropertyType = "land"
	TypeCommercial PropertyType = "commercial"
	TypeVilla      PropertyType = "villa"
	TypeCondo      PropertyType = "condo"
)

type PropertyStatus string

const (
	StatusActive   PropertyStatus = "active"
	StatusSold     PropertyStatus = "sold"
	StatusPending  PropertyStatus = "pending"
	StatusInactive PropertyStatus = "inactive"
)

type Property struct {
	Id            uuid.UUID      `json:"id"`
	SellerId      uuid.UUID      `json:"seller_id"`
	Title         string         `json:"title"`
	Description   *string        `json:"description"`
	Price         float64        `json:"price"`
	PropertyType  PropertyType   `json:"property_type"`
	Status        PropertyStatus `json:"status"`
	Bedrooms      *int           `json:"bedrooms"`
	Bathrooms     *int           `json:"bathrooms"`
	AreaSqft      *float64       `json:"area_sqft"`
	Address       string         `json:"address"`
	City          string         `json:"city"`
	State         *string        `json:"state"`
	Country       string         `json:"country"`
	ZipCode       *string        `json:"zip_code"`
	ContactNumber *string        `json:"contact_number"`
	Latitude      *float64       `json:"latitude"`
	Longitude     *float64       `json:"longitude"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// PropertyImage is a row of property_images. At most one image per listing
// is expected to carry IsPrimary.
type PropertyImage struct {
	Id           uuid.UUID `json:"id"`
	PropertyId   uuid.UUID `json:"property_id"`
	ImageURL     string    `json:"image_url"`
	IsPrimary    bool      `json:"is_primary"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// NextImageSlot returns the display order following the highest one in images
// and whether any of them is primary.
func NextImageSlot(images []PropertyImage) (next int, hasPrimary bool) {
	for _, img := range images {
		if img.DisplayOrder >= next {
			next = img.DisplayOrder + 1
		}
		if img.IsPrimary {
			hasPrimary = true
		}
	}
	return next, hasPrimary
}

// PropertyWithImages is the shape returned by every property read: the row,
// its embedded images and, for single fetches, the seller's profile.
type PropertyWithImages struct {
	Property
	Images        []PropertyImage `json:"property_images"`
	SellerProfile *UserProfile    `json:"seller_profile,omitempty"`
}

// PropertyInput is the payload accepted when a seller lists a property.
type PropertyInput struct {
	Title         string       `json:"title" validate:"required,min=5,max=100"`
	Description   *string      `json:"description" validate:"omitempty,max=2000"`
	Price         float64      `json:"price" validate:"gte=1"`
	PropertyType  PropertyType `json:"property_type" validate:"required,oneof=house apartment land commercial villa condo"`
	Bedrooms      *int         `json:"bedrooms" validate:"omitempty,min=0"`
	Bathrooms     *int         `json:"bathrooms" validate:"omitempty,min=0"`
	AreaSqft      *float64     `json:"area_sqft" validate:"omitempty,min=0"`
	Address       string       `json:"address" validate:"required,min=5,max=200"`
	City          string       `json:"city" validate:"required,min=2,max=100"`
	State         *string      `json:"state" validate:"omitempty,max=100"`
	Country       string       `json:"country" validate:"omitempty,max=100"`
	ZipCode       *string      `json:"zip_code" validate:"omitempty,max=20"`
	ContactNumber *string      `json:"contact_number" validate:"omitempty,max=20"`
	Latitude      *float64     `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude     *float64     `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

// ToProperty builds a new active listing owned by sellerId.
func (in *PropertyInput) ToProperty(sellerId uuid.UUID) *Property {
	country := strings.TrimSpace(in.Country)
	if country == "" {
		country = "USA"
	}
	now := time.Now().UTC()
	return &Property{
		Id:            uuid.New(),
		SellerId:      sellerId,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Price:         in.Price,
		PropertyType:  in.PropertyType,
		Status:        StatusActive,
		Bedrooms:      in.Bedrooms,
		Bathrooms:     in.Bathrooms,
		AreaSqft:      in.AreaSqft,
		Address:       strings.TrimSpace(in.Address),
		City:          strings.TrimSpace(in.City),
		State:         in.State,
		Country:       country,
		ZipCode:       in.ZipCode,
		ContactNumber: in.ContactNumber,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// PropertyUpdate is a partial update; nil fields are left untouched.
type PropertyUpdate struct {
	Title         *string         `json:"title" validate:"omitempty,min=5,max=100"`
	Description   *string         `json:"description" validate:"omitempty,max=2000"`
	Price         *float64        `json:"price" validate:"omitempty,gte=1"`
	PropertyType  *PropertyType   `json:"property_type" validate:"omitempty,oneof=house apartment land commercial villa condo"`
	Status        *PropertyStatus `json:"status" validate:"omitempty,oneof=active sold pending inactive"`
	Bedrooms      *int            `json:"bedrooms" validate:"omitempty,min=0"`
	Bathrooms     *int            `json:"bathrooms" validate:"omitempty,min=0"`
	AreaSqft      *float64        `json:"area_sqft" validate:"omitempty,min=0"`
	Address       *string         `json:"address" validate:"omitempty,min=5,max=200"`
	City          *string         `json:"city" validate:"omitempty,min=2,max=100"`
	State         *string         `json:"state" validate:"omitempty,max=100"`
	Country       *string         `json:"country" validate:"omitempty,max=100"`
	ZipCode       *string         `json:"zip_code" validate:"omitempty,max=20"`
	ContactNumber *string         `json:"contact_number" validate:"omitempty,max=20"`
	Latitude      *float64        `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude     *float64        `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

// Fields returns the column/value pairs to send to the backend. updated_at is
// always refreshed.
func (u *PropertyUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if u.Title != nil {
		fields["title"] = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Price != nil {
		fields["price"] = *u.Price
	}
	if u.PropertyType != nil {
		fields["property_type"] = *u.PropertyType
	}
	if u.Status != nil {
		fields["status"] = *u.Status
	}
	if u.Bedrooms != nil {
		fields["bedrooms"] = *u.Bedrooms
	}
	if u.Bathrooms != nil {
		fields["bathrooms"] = *u.Bathrooms
	}
	if u.AreaSqft != nil {
		fields["area_sqft"] = *u.AreaSqft
	}
	if u.Address != nil {
		fields["address"] = strings.TrimSpace(*u.Address)
	}
	if u.City != nil {
		fields["city"] = strings.TrimSpace(*u.City)
	}
	if u.State != nil {
		fields["state"] = *u.State
	}
	if u.Country != nil {
		fields["country"] = *u.Country
	}
	if u.ZipCode != nil {
		fields["zip_code"] = *u.ZipCode
	}
	if u.ContactNumber != nil {
		fields["contact_number"] = *u.ContactNumber
	}
	if u.Latitude != nil {
		fields["latitude"] = *u.Latitude
	}
	if u.Longitude != nil {
		fields["longitude"] = *u.Longitude
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
	}
	return fields
}

// Apply copies the supplied fields onto p.
func (u *PropertyUpdate) Apply(p *Property) {
	if u.Title != nil {
		p.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		p.Description = u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.PropertyType != nil {
		p.PropertyType = *u.PropertyType
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Bedrooms != nil {
		p.Bedrooms = u.Bedrooms
	}
	if u.Bathrooms != nil {
		p.Bathrooms = u.Bathrooms
	}
	if u.AreaSqft != nil {
		p.AreaSqft = u.AreaSqft
	}
	if u.Address != nil {
		p.Address = strings.TrimSpace(*u.Address)
	}
	if u.City != nil {
		p.City = strings.TrimSpace(*u.City)
	}
	if u.State != nil {
		p.State = u.State
	}
	if u.Country != nil {
		p.Country = *u.Country
	}
	if u.ZipCode != nil {
		p.ZipCode = u.ZipCode
	}
	if u.ContactNumber != nil {
		p.ContactNumber = u.ContactNumber
	}
	if u.Latitude != nil {
		p.Latitude = u.Latitude
	}
	if u.Longitude != nil {
		p.Longitude = u.Longitude
	}
	p.UpdatedAt = time.Now().UTC()
}

// PropertyFilters narrows a listing query. Zero values mean "not supplied".
type PropertyFilters struct {
	Search       string
	PropertyType PropertyType
	MinPrice     float64
	MaxPrice     float64
	Bedrooms     int
	Bathrooms    int
	City         string
	Status       PropertyStatus
	SellerId     uuid.UUID
}

// Params returns the supplied filters as strings, used for cache keys.
func (f PropertyFilters) Params() map[string]string {
	params := make(map[string]string)
	if f.Search != "" {
		params["search"] = f.Search
	}
	if f.PropertyType != "" {
		params["property_type"] = string(f.PropertyType)
	}
	if f.MinPrice > 0 {
		params["min_price"] = strconv.FormatFloat(f.MinPrice, 'f', -1, 64)
	}
	if f.MaxPrice > 0 {
		params["max_price"] = strconv.FormatFloat(f.MaxPrice, 'f', -1, 64)
	}
	if f.Bedrooms > 0 {
		params["bedrooms"] = strconv.Itoa(f.Bedrooms)
	}
	if f.Bathrooms > 0 {
		params["bathrooms"] = strconv.Itoa(f.Bathrooms)
	}
	if f.City != "" {
		params["city"] = f.City
	}
	if f.Status != "" {
		params["status"] = string(f.Status)
	}
	if f.SellerId != uuid.Nil {
		params["seller_id"] = f.SellerId.String()
	}
	return params
}

// searchReplacer strips characters that would break a PostgREST or() list.
var searchReplacer = strings.NewReplacer(",", " ", "(", " ", ")", " ", "%", " ", "*", " ")

// searchTerm is the search text as sent to the backend. An empty result
// means no search filter.
func searchTerm(s string) string {
	return strings.TrimSpace(searchReplacer.Replace(s))
}

// Matches reports whether p satisfies every supplied filter. It mirrors the
// predicates SupabaseRepo sends to PostgREST.
func (f PropertyFilters) Matches(p *Property) bool {
	if search := searchTerm(f.Search); search != "" {
		needle := strings.ToLower(search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.City), needle) &&
			!strings.Contains(strings.ToLower(p.Address), needle) {
			return false
		}
	}
	if f.PropertyType != "" && p.PropertyType != f.PropertyType {
		return false
	}
	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	if f.Bedrooms > 0 && (p.Bedrooms == nil || *p.Bedrooms < f.Bedrooms) {
		return false
	}
	if f.Bathrooms > 0 && (p.Bathrooms == nil || *p.Bathrooms < f.Bathrooms) {
		return false
	}
	if f.City != "" && !strings.Contains(strings.ToLower(p.City), strings.ToLower(f.City)) {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.SellerId != uuid.Nil && p.SellerId != f.SellerId {
		return false
	}
	return true
}

func ParsePropertyType(s string) (PropertyType, error) {
	switch t := PropertyType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeHouse, TypeApartment, TypeLand, TypeCommercial, TypeVilla, TypeCondo:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported property type: %q", s)
	}
}

func ParsePropertyStatus(s string) (PropertyStatus, error) {
	switch st := PropertyStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusSold, StatusPending, StatusInactive:
		return st, nil
	default:
		return "", fmt.Errorf("unsupported property status: %q", s)
	}
}

package helpers

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/joshua-takyi/estately/internal/models"
)

// ParsePropertyFilters reads listing filters from query parameters. Empty and
// zero values are treated as not supplied.
func ParsePropertyFilters(q url.Values) (models.PropertyFilters, error) {
	var f models.PropertyFilters
	var err error

	f.Search = strings.TrimSpace(q.Get("search"))
	f.City = strings.TrimSpace(q.Get("city"))

	if s := firstOf(q, "type", "property_type"); s != "" && s != "all" {
		if f.PropertyType, err = models.ParsePropertyType(s); err != nil {
			return f, err
		}
	}
	if s := q.Get("status"); s != "" && s != "all" {
		if f.Status, err = models.ParsePropertyStatus(s); err != nil {
			return f, err
		}
	}
	if f.MinPrice, err = parseFloat(q, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parseFloat(q, "max_price"); err != nil {
		return f, err
	}
	if f.Bedrooms, err = parseInt(q, "bedrooms"); err != nil {
		return f, err
	}
	if f.Bathrooms, err = parseInt(q, "bathrooms"); err != nil {
		return f, err
	}
	return f, nil
}

func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func parseFloat(q url.Values, key string) (float64, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseInt(q url.Values, key string) (int, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

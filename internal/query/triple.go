package query

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// TripleFilters are the three parameter groups an LLM-shaped retailer entry carries.
type TripleFilters struct {
	URLParams      map[string]any `json:"url_params,omitempty"`
	PathComponents map[string]any `json:"path_components,omitempty"`
	BodyParams     map[string]any `json:"body_params,omitempty"`
}

// FilterTriple is the {url, filters:{url_params, path_components, body_params}}
// shape some completions produce per retailer instead of the adapter format.
type FilterTriple struct {
	URL     string        `json:"url,omitempty"`
	Filters TripleFilters `json:"filters"`
}

// TripleFromMap recognizes a decoded JSON object as a FilterTriple.
func TripleFromMap(m map[string]any) (*FilterTriple, bool) {
	raw, ok := m["filters"]
	if !ok {
		return nil, false
	}
	if _, ok := raw.(map[string]any); !ok {
		return nil, false
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, false
	}
	var triple FilterTriple
	if err := json.Unmarshal(data, &triple); err != nil {
		return nil, false
	}
	return &triple, true
}

// ToStructured maps the retailer-flavoured parameter names back onto the
// canonical query. Path components take precedence over url params, which
// take precedence over body params.
func (t *FilterTriple) ToStructured() Structured {
	sources := []map[string]any{
		t.Filters.PathComponents,
		t.Filters.URLParams,
		t.Filters.BodyParams,
	}

	var q Structured
	if v := lookupString(sources, "make"); v != "" {
		q.Makes = []string{v}
	}
	if v := lookupString(sources, "model"); v != "" {
		q.Models = []string{v}
	}
	if v := lookupString(sources, "trim"); v != "" {
		q.Trims = []string{v}
	}

	q.Year = lookupInt(sources, "year")
	q.YearMin = lookupInt(sources, "startYear", "yearMin")
	q.YearMax = lookupInt(sources, "endYear", "yearMax")
	q.MinPrice = lookupInt(sources, "priceMin", "minPrice")
	q.MaxPrice = lookupInt(sources, "priceMax", "maxPrice", "budget")
	q.MileageMax = lookupInt(sources, "mileageMax", "maxMileage")

	q.ExteriorColor = lookupString(sources, "extColor", "exteriorColor", "color")
	q.InteriorColor = lookupString(sources, "intColor", "interiorColor")
	q.Drivetrain = lookupString(sources, "driveGroup", "drivetrain")
	q.FuelType = lookupString(sources, "fuelTypeGroup", "fuelType")
	q.Transmission = lookupString(sources, "transmissionCode", "transmission")
	q.BodyType = lookupString(sources, "bodyStyle", "bodyType")

	zip := lookupString(sources, "zip", "postalCode")
	radius := lookupInt(sources, "searchRadius", "distance", "radius")
	if zip != "" || radius != nil {
		q.Location = &Location{Zip: zip}
		if radius != nil {
			q.Location.Radius = *radius
		}
	}

	return q
}

func lookupString(sources []map[string]any, keys ...string) string {
	for _, src := range sources {
		for _, key := range keys {
			v, ok := src[key]
			if !ok || v == nil {
				continue
			}
			switch val := v.(type) {
			case string:
				if s := strings.TrimSpace(val); s != "" {
					return s
				}
			case float64:
				return strconv.FormatFloat(val, 'f', -1, 64)
			case []any:
				for _, item := range val {
					if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
						return strings.TrimSpace(s)
					}
				}
			}
		}
	}
	return ""
}

func lookupInt(sources []map[string]any, keys ...string) *int {
	for _, src := range sources {
		for _, key := range keys {
			v, ok := src[key]
			if !ok || v == nil {
				continue
			}
			if n, ok := AsInt(v); ok {
				return &n
			}
		}
	}
	return nil
}

// AsInt accepts JSON numbers and numeric strings ("2023", "100,000", "$50000").
func AsInt(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		return int(val), true
	case int:
		return val, true
	case json.Number:
		n, err := val.Int64()
		return int(n), err == nil
	case string:
		cleaned := strings.NewReplacer(",", "", "$", "", " ", "").Replace(val)
		n, err := strconv.Atoi(cleaned)
		return n, err == nil
	}
	return 0, false
}

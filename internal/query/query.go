// Package query holds the retailer-agnostic representation of a vehicle search.
package query

import "strings"

// Location is where the buyer searches from. Radius is in miles.
type Location struct {
	Zip    string `json:"zip,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Radius int    `json:"radius,omitempty"`
}

// Structured is the canonical search intent. Every field is optional and no
// field carries retailer vocabulary; adapters translate it per retailer.
type Structured struct {
	Makes  []string `json:"makes,omitempty"`
	Models []string `json:"models,omitempty"`
	Trims  []string `json:"trims,omitempty"`

	Year    *int `json:"year,omitempty"`
	YearMin *int `json:"yearMin,omitempty"`
	YearMax *int `json:"yearMax,omitempty"`

	MinPrice   *int `json:"minPrice,omitempty"`
	MaxPrice   *int `json:"maxPrice,omitempty"`
	MileageMax *int `json:"mileageMax,omitempty"`

	ExteriorColor string `json:"exteriorColor,omitempty"`
	InteriorColor string `json:"interiorColor,omitempty"`

	Drivetrain   string `json:"drivetrain,omitempty"`
	FuelType     string `json:"fuelType,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	BodyType     string `json:"bodyType,omitempty"`
	CarSize      string `json:"carSize,omitempty"`
	Doors        string `json:"doors,omitempty"`
	Cylinders    string `json:"cylinders,omitempty"`

	Features []string `json:"features,omitempty"`

	Location *Location `json:"location,omitempty"`
}

// Int returns a pointer to v, for populating optional numeric fields.
func Int(v int) *int {
	return &v
}

// FirstMake returns the highest-priority make, or "".
func (q *Structured) FirstMake() string {
	return first(q.Makes)
}

// FirstModel returns the highest-priority model, or "".
func (q *Structured) FirstModel() string {
	return first(q.Models)
}

// FirstTrim returns the first trim, or "".
func (q *Structured) FirstTrim() string {
	return first(q.Trims)
}

// YearBounds returns the inclusive year range. Explicit yearMin/yearMax win
// over a single year, which otherwise stands for both bounds.
func (q *Structured) YearBounds() (min, max *int) {
	min, max = q.YearMin, q.YearMax
	if q.Year != nil {
		if min == nil {
			min = q.Year
		}
		if max == nil {
			max = q.Year
		}
	}
	return min, max
}

// Zip returns the query ZIP code or def when none was given.
func (q *Structured) Zip(def string) string {
	if q.Location != nil && strings.TrimSpace(q.Location.Zip) != "" {
		return strings.TrimSpace(q.Location.Zip)
	}
	return def
}

// Radius returns the search radius in miles or def when none was given.
func (q *Structured) Radius(def int) int {
	if q.Location != nil && q.Location.Radius > 0 {
		return q.Location.Radius
	}
	return def
}

func first(values []string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Retailer identifiers, in the order results are reported.
const (
	AutoTrader = "autotrader"
	CarGurus   = "cargurus"
	CarMax     = "carmax"
	Carvana    = "carvana"
	TrueCar    = "truecar"
)

// Retailers returns every supported retailer identifier.
func Retailers() []string {
	return []string{AutoTrader, CarGurus, CarMax, Carvana, TrueCar}
}

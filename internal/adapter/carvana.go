package adapter

import (
	"strings"

	"sjsage522/carsearch/internal/modelname"
	"sjsage522/carsearch/internal/query"
)

// CarvanaParams is the Carvana scraper input. The model is the visible filter
// label with spaces ("Sierra 3500"); there is no separate series field.
type CarvanaParams struct {
	Make          string   `json:"make,omitempty"`
	Model         string   `json:"model,omitempty"`
	Trims         []string `json:"trims,omitempty"`
	Year          *int     `json:"year,omitempty"`
	Drivetrain    string   `json:"drivetrain,omitempty"`
	ExteriorColor string   `json:"exteriorColor,omitempty"`
	InteriorColor string   `json:"interiorColor,omitempty"`
	Transmission  string   `json:"transmission,omitempty"`
	FuelType      string   `json:"fuelType,omitempty"`
	Features      []string `json:"features,omitempty"`
}

// Carvana adapts q for Carvana. It takes a single year: the explicit year,
// else the lower bound, else the upper bound.
func (a *Adapters) Carvana(q query.Structured) CarvanaParams {
	year := q.Year
	if year == nil {
		year = q.YearMin
	}
	if year == nil {
		year = q.YearMax
	}

	p := CarvanaParams{
		Make:          q.FirstMake(),
		Year:          year,
		Drivetrain:    translate(q.Drivetrain, canonicalDrivetrain, titledDrivetrain, titleWords),
		ExteriorColor: strings.TrimSpace(q.ExteriorColor),
		InteriorColor: strings.TrimSpace(q.InteriorColor),
		Transmission:  translate(q.Transmission, canonicalTransmission, titledTransmission, titleWords),
		FuelType:      translate(q.FuelType, canonicalFuel, titledFuel, titleWords),
	}
	if m := q.FirstModel(); m != "" {
		p.Model = modelname.StripHD(modelname.Normalize(m, query.Carvana))
	}
	if trims := nonBlank(q.Trims); len(trims) > 0 {
		p.Trims = trims
	}
	if features := nonBlank(q.Features); len(features) > 0 {
		p.Features = features
	}
	return p
}

package adapter

import (
	"strconv"
	"strings"

	"sjsage522/carsearch/helpers"
	"sjsage522/carsearch/internal/modelname"
	"sjsage522/carsearch/internal/query"
)

const carMaxBase = "https://www.carmax.com/cars"

// CarMaxParams is the CarMax scraper input. The array fields are never nil so
// they serialize as [] rather than null.
type CarMaxParams struct {
	Makes        []string `json:"makes"`
	Models       []string `json:"models"`
	Trims        []string `json:"trims"`
	Colors       []string `json:"colors"`
	BodyType     string   `json:"bodyType,omitempty"`
	FuelType     string   `json:"fuelType,omitempty"`
	Drivetrain   string   `json:"drivetrain,omitempty"`
	Transmission string   `json:"transmission,omitempty"`
	MinPrice     *int     `json:"minPrice,omitempty"`
	MaxPrice     *int     `json:"maxPrice,omitempty"`
	YearMin      *int     `json:"yearMin,omitempty"`
	YearMax      *int     `json:"yearMax,omitempty"`
	CarSize      string   `json:"carSize,omitempty"`
	Doors        string   `json:"doors,omitempty"`
	Cylinders    string   `json:"cylinders,omitempty"`
	Features     []string `json:"features"`
}

// CarMax adapts q for CarMax. Makes and models are paired positionally and
// truncated to the shorter list; models lose their HD suffix.
func (a *Adapters) CarMax(q query.Structured) CarMaxParams {
	makes := nonBlank(q.Makes)
	models := modelname.NormalizeAll(nonBlank(q.Models), query.CarMax)
	for i, m := range models {
		models[i] = modelname.StripHD(m)
	}
	n := len(makes)
	if len(models) < n {
		n = len(models)
	}

	colors := []string{}
	for _, c := range []string{q.ExteriorColor, q.InteriorColor} {
		if c = strings.TrimSpace(c); c != "" {
			colors = append(colors, c)
		}
	}

	lo, hi := q.YearBounds()
	return CarMaxParams{
		Makes:        makes[:n],
		Models:       models[:n],
		Trims:        nonBlank(q.Trims),
		Colors:       colors,
		BodyType:     strings.TrimSpace(q.BodyType),
		FuelType:     translate(q.FuelType, canonicalFuel, carMaxFuel, titleWords),
		Drivetrain:   translate(q.Drivetrain, canonicalDrivetrain, titledDrivetrain, titleWords),
		Transmission: translate(q.Transmission, canonicalTransmission, titledTransmission, titleWords),
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		YearMin:      lo,
		YearMax:      hi,
		CarSize:      strings.TrimSpace(q.CarSize),
		Doors:        strings.TrimSpace(q.Doors),
		Cylinders:    strings.TrimSpace(q.Cylinders),
		Features:     nonBlank(q.Features),
	}
}

// URL chains the filters into a CarMax path:
// /cars/{make}/{model}/.../{global filters}/{features}/{trims}/{colors}?price=min-max
// CarMax has no year filter in its URLs, so years are left to the caller.
func (p CarMaxParams) URL() string {
	var parts []string
	push := func(values ...string) {
		for _, v := range values {
			if slug := helpers.Slugify(v); slug != "" {
				parts = append(parts, slug)
			}
		}
	}

	n := len(p.Makes)
	if len(p.Models) < n {
		n = len(p.Models)
	}
	for i := 0; i < n; i++ {
		push(p.Makes[i], p.Models[i])
	}
	push(p.BodyType, p.FuelType, p.Drivetrain, p.Transmission, p.CarSize, p.Doors, p.Cylinders)
	push(p.Features...)
	push(p.Trims...)
	push(p.Colors...)

	u := carMaxBase
	if len(parts) > 0 {
		u += "/" + strings.Join(parts, "/")
	}

	params := orderedParams{}
	if p.MinPrice != nil || p.MaxPrice != nil {
		params.add("price", bound(p.MinPrice)+"-"+bound(p.MaxPrice))
	}
	params.add("showreservedcars", "false")
	return u + "?" + params.encode()
}

func bound(v *int) string {
	if v == nil || *v == 0 {
		return ""
	}
	return strconv.Itoa(*v)
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

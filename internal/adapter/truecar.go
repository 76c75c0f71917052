package adapter

import (
	"strings"

	"sjsage522/carsearch/internal/query"
)

// TrueCarParams is the TrueCar scraper input. The model keeps its HD suffix.
type TrueCarParams struct {
	Make         string   `json:"make,omitempty"`
	Model        string   `json:"model,omitempty"`
	Trims        []string `json:"trims,omitempty"`
	StartYear    *int     `json:"startYear,omitempty"`
	EndYear      *int     `json:"endYear,omitempty"`
	Budget       *int     `json:"budget,omitempty"`
	PostalCode   string   `json:"postalCode"`
	SearchRadius int      `json:"searchRadius"`
	BodyStyle    string   `json:"bodyStyle,omitempty"`
	Drivetrain   string   `json:"drivetrain,omitempty"`
	FuelType     string   `json:"fuelType,omitempty"`
}

// TrueCar adapts q for TrueCar. Budget is the price ceiling; postalCode and
// searchRadius are always set.
func (a *Adapters) TrueCar(q query.Structured) TrueCarParams {
	lo, hi := q.YearBounds()
	p := TrueCarParams{
		Make:         q.FirstMake(),
		Model:        q.FirstModel(),
		StartYear:    lo,
		EndYear:      hi,
		Budget:       q.MaxPrice,
		PostalCode:   q.Zip(a.zip),
		SearchRadius: q.Radius(a.radius),
		BodyStyle:    strings.TrimSpace(q.BodyType),
		Drivetrain:   translate(q.Drivetrain, canonicalDrivetrain, truecarDrivetrain, verbatim),
		FuelType:     translate(q.FuelType, canonicalFuel, titledFuel, verbatim),
	}
	if trims := nonBlank(q.Trims); len(trims) > 0 {
		p.Trims = trims
	}
	return p
}

var truecarDrivetrain = map[string]string{
	driveFour:  "4WD",
	driveAll:   "AWD",
	driveFront: "FWD",
	driveRear:  "RWD",
	driveTwo:   "2WD",
}

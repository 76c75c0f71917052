package adapter

import (
	"strconv"
	"strings"

	"sjsage522/carsearch/internal/query"
)

const carGurusSearchURL = "https://www.cargurus.com/search"

// CarGurusParams is the CarGurus scraper input. The model keeps its HD suffix
// since CarGurus lists HD trucks separately.
type CarGurusParams struct {
	Make          string `json:"make,omitempty"`
	Model         string `json:"model,omitempty"`
	Zip           string `json:"zip"`
	Distance      int    `json:"distance"`
	Trim          string `json:"trim,omitempty"`
	YearMin       *int   `json:"yearMin,omitempty"`
	YearMax       *int   `json:"yearMax,omitempty"`
	MinPrice      *int   `json:"minPrice,omitempty"`
	MaxPrice      *int   `json:"maxPrice,omitempty"`
	ExteriorColor string `json:"exteriorColor,omitempty"`
	InteriorColor string `json:"interiorColor,omitempty"`
	Drivetrain    string `json:"drivetrain,omitempty"`
	FuelType      string `json:"fuelType,omitempty"`
	Transmission  string `json:"transmission,omitempty"`
	MileageMax    *int   `json:"mileageMax,omitempty"`
}

// CarGurus adapts q for CarGurus. Only the first make, model and trim are
// used; zip and distance are always set.
func (a *Adapters) CarGurus(q query.Structured) CarGurusParams {
	lo, hi := q.YearBounds()
	return CarGurusParams{
		Make:          q.FirstMake(),
		Model:         q.FirstModel(),
		Zip:           q.Zip(a.zip),
		Distance:      q.Radius(a.radius),
		Trim:          q.FirstTrim(),
		YearMin:       lo,
		YearMax:       hi,
		MinPrice:      q.MinPrice,
		MaxPrice:      q.MaxPrice,
		ExteriorColor: strings.TrimSpace(q.ExteriorColor),
		InteriorColor: strings.TrimSpace(q.InteriorColor),
		Drivetrain:    translate(q.Drivetrain, canonicalDrivetrain, carGurusDrivetrain, upperSnake),
		FuelType:      translate(q.FuelType, canonicalFuel, carGurusFuel, upperSnake),
		Transmission:  translate(q.Transmission, canonicalTransmission, carGurusTransmission, upperSnake),
		MileageMax:    q.MileageMax,
	}
}

// SearchURL builds the listing URL once the make and model entity codes
// (e.g. m26 for GMC) are known. The trim path is repeated between the make
// and model paths the way CarGurus itself encodes it.
func (p CarGurusParams) SearchURL(makeCode, modelCode string) string {
	paths := makeCode + "," + makeCode + "/" + modelCode
	if p.Trim != "" {
		trim := strings.ReplaceAll(p.Trim, " ", "+")
		paths = makeCode + "," + makeCode + "/" + modelCode + "/" + trim + "," + makeCode + "/" + modelCode
	}

	params := orderedParams{}
	params.add("zip", p.Zip)
	params.add("distance", strconv.Itoa(p.Distance))
	params.addRaw("makeModelTrimPaths", paths)
	params.add("sourceContext", "carGurusHomePageModel")
	params.addInt("startYear", p.YearMin)
	params.addInt("endYear", p.YearMax)
	params.addInt("minPrice", p.MinPrice)
	params.addInt("maxPrice", p.MaxPrice)
	params.add("colors", p.ExteriorColor)
	params.add("interiorColor", p.InteriorColor)
	params.add("drivetrain", p.Drivetrain)
	params.add("fuelType", p.FuelType)
	params.add("transmission", p.Transmission)
	params.addInt("mileageMax", p.MileageMax)

	return carGurusSearchURL + "?" + params.encode()
}

package adapter

import (
	"net/url"
	"strconv"
	"strings"

	"sjsage522/carsearch/helpers"
	"sjsage522/carsearch/internal/modelname"
	"sjsage522/carsearch/internal/query"
)

const autoTraderBase = "https://www.autotrader.com/cars-for-sale"

// AutoTrader builds the search URL
// /cars-for-sale/{color}/{make}/{model}/{trim}?zip=..&searchRadius=..
// Path segments are slugs, absent ones are skipped, and the model never
// carries an HD suffix.
func (a *Adapters) AutoTrader(q query.Structured) string {
	var parts []string
	for _, p := range []string{
		q.ExteriorColor,
		q.FirstMake(),
		modelname.StripHD(q.FirstModel()),
		q.FirstTrim(),
	} {
		if slug := helpers.Slugify(p); slug != "" {
			parts = append(parts, url.PathEscape(slug))
		}
	}

	path := autoTraderBase
	if len(parts) > 0 {
		path += "/" + strings.Join(parts, "/")
	}

	params := orderedParams{}
	params.add("zip", q.Zip(a.zip))
	params.add("searchRadius", strconv.Itoa(q.Radius(a.radius)))

	lo, hi := q.YearBounds()
	params.addInt("startYear", lo)
	params.addInt("endYear", hi)
	params.addInt("minPrice", q.MinPrice)
	params.addInt("maxPrice", q.MaxPrice)
	params.add("driveGroup", translate(q.Drivetrain, canonicalDrivetrain, autoTraderDriveGroup, dropUnknown))

	return path + "?" + params.encode()
}

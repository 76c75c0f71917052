package adapter

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/carsearch/internal/query"
	"sjsage522/carsearch/pkg/errors"
)

func sierraQuery() query.Structured {
	return query.Structured{
		Makes:    []string{"GMC"},
		Models:   []string{"Sierra 3500HD"},
		Trims:    []string{"Denali Ultimate"},
		Location: &query.Location{Zip: "94002"},
		YearMin:  query.Int(2023),
		YearMax:  query.Int(2024),
		MaxPrice: query.Int(100000),
	}
}

func TestAutoTraderSierra(t *testing.T) {
	got := AutoTrader(sierraQuery())
	assert.Equal(t,
		"https://www.autotrader.com/cars-for-sale/gmc/sierra-3500/denali-ultimate?zip=94002&searchRadius=500&startYear=2023&endYear=2024&maxPrice=100000",
		got)

	u, err := url.Parse(got)
	require.NoError(t, err)
	want := url.Values{
		"zip":          {"94002"},
		"searchRadius": {"500"},
		"startYear":    {"2023"},
		"endYear":      {"2024"},
		"maxPrice":     {"100000"},
	}
	assert.Equal(t, want, u.Query())
}

func TestAutoTraderColorGoesFirst(t *testing.T) {
	q := sierraQuery()
	q.ExteriorColor = "Black"
	q.Drivetrain = "Four Wheel Drive"
	got := AutoTrader(q)
	assert.True(t, strings.HasPrefix(got, "https://www.autotrader.com/cars-for-sale/black/gmc/sierra-3500/denali-ultimate?"), got)
	assert.Contains(t, got, "driveGroup=AWD4WD")
}

func TestAutoTraderDefaultsOnEmptyQuery(t *testing.T) {
	assert.Equal(t, "https://www.autotrader.com/cars-for-sale?zip=94002&searchRadius=500", AutoTrader(query.Structured{}))

	custom := New("10001", 75)
	assert.Equal(t, "https://www.autotrader.com/cars-for-sale?zip=10001&searchRadius=75", custom.AutoTrader(query.Structured{}))
}

func TestAutoTraderSingleYearAndSlugModel(t *testing.T) {
	q := query.Structured{Makes: []string{"Ram"}, Models: []string{"sierra-2500hd"}, Year: query.Int(2021)}
	u, err := url.Parse(AutoTrader(q))
	require.NoError(t, err)
	assert.Equal(t, "/cars-for-sale/ram/sierra-2500", u.Path)
	assert.Equal(t, "2021", u.Query().Get("startYear"))
	assert.Equal(t, "2021", u.Query().Get("endYear"))
}

func TestTrueCarKeepsHDAndDivergesFromAutoTrader(t *testing.T) {
	q := sierraQuery()
	tc := TrueCar(q)
	assert.Equal(t, "Sierra 3500HD", tc.Model)
	assert.Equal(t, "GMC", tc.Make)
	assert.Equal(t, []string{"Denali Ultimate"}, tc.Trims)
	assert.Equal(t, query.Int(2023), tc.StartYear)
	assert.Equal(t, query.Int(2024), tc.EndYear)
	assert.Equal(t, query.Int(100000), tc.Budget)
	assert.Equal(t, "94002", tc.PostalCode)
	assert.Equal(t, 500, tc.SearchRadius)

	assert.NotContains(t, AutoTrader(q), "3500hd")
}

func TestCarGurus(t *testing.T) {
	q := sierraQuery()
	q.Trims = []string{"Denali Ultimate", "AT4"}
	q.Drivetrain = "4x4"
	q.FuelType = "Diesel"
	q.Transmission = "auto"
	q.ExteriorColor = "Black"
	q.MileageMax = query.Int(30000)
	q.Location = &query.Location{Zip: "10001", Radius: 150}

	p := CarGurus(q)
	assert.Equal(t, "GMC", p.Make)
	assert.Equal(t, "Sierra 3500HD", p.Model)
	assert.Equal(t, "Denali Ultimate", p.Trim)
	assert.Equal(t, "10001", p.Zip)
	assert.Equal(t, 150, p.Distance)
	assert.Equal(t, "FOUR_WHEEL_DRIVE", p.Drivetrain)
	assert.Equal(t, "DIESEL", p.FuelType)
	assert.Equal(t, "AUTOMATIC", p.Transmission)
	assert.Equal(t, query.Int(30000), p.MileageMax)
}

func TestCarGurusRequiredFields(t *testing.T) {
	data, err := json.Marshal(CarGurus(query.Structured{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"zip":"94002","distance":500}`, string(data))
}

func TestCarGurusSearchURL(t *testing.T) {
	p := CarGurus(sierraQuery())
	got := p.SearchURL("m26", "d2207")
	assert.Equal(t,
		"https://www.cargurus.com/search?zip=94002&distance=500&makeModelTrimPaths=m26,m26/d2207/Denali+Ultimate,m26/d2207&sourceContext=carGurusHomePageModel&startYear=2023&endYear=2024&maxPrice=100000",
		got)

	p.Trim = ""
	p.ExteriorColor = "Black"
	got = p.SearchURL("m26", "d2207")
	assert.Contains(t, got, "makeModelTrimPaths=m26,m26/d2207&")
	assert.Contains(t, got, "colors=Black")
}

func TestCarMaxTruncatesMismatchedPairs(t *testing.T) {
	p := CarMax(query.Structured{Makes: []string{"GMC", "Ford"}, Models: []string{"Sierra 3500HD"}})
	assert.Equal(t, []string{"GMC"}, p.Makes)
	assert.Equal(t, []string{"Sierra 3500"}, p.Models)

	p = CarMax(query.Structured{Makes: []string{"GMC"}})
	assert.Empty(t, p.Makes)
	assert.Empty(t, p.Models)
}

func TestCarMaxShape(t *testing.T) {
	q := sierraQuery()
	q.ExteriorColor = "Black"
	q.InteriorColor = "Tan"
	q.Drivetrain = "FOUR_WHEEL_DRIVE"
	q.FuelType = "gasoline"
	q.Features = []string{"Heated Seats"}

	p := CarMax(q)
	assert.Equal(t, []string{"Black", "Tan"}, p.Colors)
	assert.Equal(t, "Four Wheel Drive", p.Drivetrain)
	assert.Equal(t, "Gas", p.FuelType)
	assert.Equal(t, []string{"Denali Ultimate"}, p.Trims)
	assert.Equal(t, query.Int(2023), p.YearMin)

	assert.Equal(t,
		"https://www.carmax.com/cars/gmc/sierra-3500/gas/four-wheel-drive/heated-seats/denali-ultimate/black/tan?price=-100000&showreservedcars=false",
		p.URL())
}

func TestCarMaxEmptyArraysSerialize(t *testing.T) {
	data, err := json.Marshal(CarMax(query.Structured{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"makes":[],"models":[],"trims":[],"colors":[],"features":[]}`, string(data))
	assert.Equal(t, "https://www.carmax.com/cars?showreservedcars=false", CarMax(query.Structured{}).URL())
}

func TestCarMaxUnknownDrivetrainTitleCased(t *testing.T) {
	p := CarMax(query.Structured{Drivetrain: "SIX_WHEEL_DRIVE"})
	assert.Equal(t, "Six Wheel Drive", p.Drivetrain)
}

func TestCarvana(t *testing.T) {
	q := sierraQuery()
	q.Drivetrain = "4wd"
	p := Carvana(q)
	assert.Equal(t, "GMC", p.Make)
	assert.Equal(t, "Sierra 3500", p.Model)
	assert.Equal(t, query.Int(2023), p.Year)
	assert.Equal(t, []string{"Denali Ultimate"}, p.Trims)
	assert.Equal(t, "Four Wheel Drive", p.Drivetrain)

	p = Carvana(query.Structured{Models: []string{"Silverado 2500 HD"}, YearMax: query.Int(2020)})
	assert.Equal(t, "Silverado 2500", p.Model)
	assert.Equal(t, query.Int(2020), p.Year)

	p = Carvana(query.Structured{Year: query.Int(2019), YearMin: query.Int(2017)})
	assert.Equal(t, query.Int(2019), p.Year)
}

func TestCarvanaOmitsAbsentFields(t *testing.T) {
	data, err := json.Marshal(Carvana(query.Structured{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestDrivetrainVocabulary(t *testing.T) {
	testCases := []struct {
		in       string
		cargurus string
		truecar  string
		carmax   string
	}{
		{"Four Wheel Drive", "FOUR_WHEEL_DRIVE", "4WD", "Four Wheel Drive"},
		{"AWD", "ALL_WHEEL_DRIVE", "AWD", "All Wheel Drive"},
		{"Front-Wheel Drive", "FRONT_WHEEL_DRIVE", "FWD", "Front Wheel Drive"},
		{"rwd", "REAR_WHEEL_DRIVE", "RWD", "Rear Wheel Drive"},
		{"4x2", "FOUR_BY_TWO", "2WD", "Two Wheel Drive"},
		{"ALL_WHEEL_DRIVE", "ALL_WHEEL_DRIVE", "AWD", "All Wheel Drive"},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			q := query.Structured{Drivetrain: tc.in}
			assert.Equal(t, tc.cargurus, CarGurus(q).Drivetrain)
			assert.Equal(t, tc.truecar, TrueCar(q).Drivetrain)
			assert.Equal(t, tc.carmax, CarMax(q).Drivetrain)
		})
	}
}

func TestOnlyPresentFiltersEmitted(t *testing.T) {
	q := query.Structured{Makes: []string{"Toyota"}}
	data, err := json.Marshal(TrueCar(q))
	require.NoError(t, err)
	assert.JSONEq(t, `{"make":"Toyota","postalCode":"94002","searchRadius":500}`, string(data))
}

func TestRoundTripKeepsIntegers(t *testing.T) {
	q := sierraQuery()
	q.MinPrice = query.Int(20000)

	for retailer, out := range Default.AdaptAll(q) {
		if retailer == query.AutoTrader {
			continue
		}
		data, err := json.Marshal(out)
		require.NoError(t, err)

		var generic map[string]any
		require.NoError(t, json.Unmarshal(data, &generic))
		for key, v := range generic {
			if strings.Contains(strings.ToLower(key), "year") || strings.Contains(strings.ToLower(key), "price") || key == "budget" {
				_, isNumber := v.(float64)
				assert.True(t, isNumber, "%s.%s should be a number, got %T", retailer, key, v)
			}
		}
	}

	cases := []struct {
		name string
		in   any
		out  any
	}{
		{"cargurus", CarGurus(q), &CarGurusParams{}},
		{"carmax", CarMax(q), &CarMaxParams{}},
		{"carvana", Carvana(q), &CarvanaParams{}},
		{"truecar", TrueCar(q), &TrueCarParams{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.in)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(data, tc.out))
			again, err := json.Marshal(tc.out)
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
		})
	}
}

func TestAdaptRegistry(t *testing.T) {
	all := Default.AdaptAll(sierraQuery())
	assert.Len(t, all, 5)
	assert.IsType(t, "", all[query.AutoTrader])
	assert.IsType(t, CarGurusParams{}, all[query.CarGurus])
	assert.IsType(t, CarMaxParams{}, all[query.CarMax])
	assert.IsType(t, CarvanaParams{}, all[query.Carvana])
	assert.IsType(t, TrueCarParams{}, all[query.TrueCar])

	_, err := Default.Adapt("kbb", sierraQuery())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestFieldsFollowParamsTags(t *testing.T) {
	carvana := Fields(query.Carvana)
	assert.True(t, carvana["model"])
	assert.True(t, carvana["year"])
	assert.False(t, carvana["series"])
	assert.Len(t, carvana, 10)

	truecar := Fields(query.TrueCar)
	assert.True(t, truecar["postalCode"])
	assert.True(t, truecar["searchRadius"])

	assert.True(t, Fields(query.CarMax)["makes"])
	assert.True(t, Fields(query.CarGurus)["distance"])
	assert.Nil(t, Fields(query.AutoTrader))
	assert.Nil(t, Fields("kbb"))
}

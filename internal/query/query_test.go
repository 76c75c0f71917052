package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearBounds(t *testing.T) {
	testCases := []struct {
		name     string
		q        Structured
		min, max *int
	}{
		{"empty", Structured{}, nil, nil},
		{"single year", Structured{Year: Int(2022)}, Int(2022), Int(2022)},
		{"range", Structured{YearMin: Int(2020), YearMax: Int(2024)}, Int(2020), Int(2024)},
		{"range wins over year", Structured{Year: Int(2022), YearMin: Int(2021)}, Int(2021), Int(2022)},
		{"open ended", Structured{YearMax: Int(2019)}, nil, Int(2019)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			min, max := tc.q.YearBounds()
			assert.Equal(t, tc.min, min)
			assert.Equal(t, tc.max, max)
		})
	}
}

func TestLocationDefaults(t *testing.T) {
	var q Structured
	assert.Equal(t, "94002", q.Zip("94002"))
	assert.Equal(t, 500, q.Radius(500))

	q.Location = &Location{Zip: " 10001 ", Radius: 50}
	assert.Equal(t, "10001", q.Zip("94002"))
	assert.Equal(t, 50, q.Radius(500))
}

func TestFirstAccessorsSkipBlank(t *testing.T) {
	q := Structured{Makes: []string{" ", "GMC"}, Models: nil, Trims: []string{"Denali"}}
	assert.Equal(t, "GMC", q.FirstMake())
	assert.Equal(t, "", q.FirstModel())
	assert.Equal(t, "Denali", q.FirstTrim())
}

func TestStructuredJSONOmitsAbsentFields(t *testing.T) {
	q := Structured{Makes: []string{"GMC"}, MaxPrice: Int(100000)}
	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"makes":["GMC"],"maxPrice":100000}`, string(data))
}

func TestTripleToStructured(t *testing.T) {
	raw := `{
		"url": "https://www.cargurus.com/search?make=GMC",
		"filters": {
			"url_params": {"startYear": "2023", "endYear": 2024, "priceMax": "100,000", "zip": "94002", "distance": 250, "driveGroup": "AWD4WD"},
			"path_components": {"make": "GMC", "model": "Sierra 3500HD", "trim": "Denali Ultimate"},
			"body_params": {"extColor": "Black"}
		}
	}`
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	triple, ok := TripleFromMap(m)
	require.True(t, ok)
	assert.Equal(t, "https://www.cargurus.com/search?make=GMC", triple.URL)

	q := triple.ToStructured()
	assert.Equal(t, []string{"GMC"}, q.Makes)
	assert.Equal(t, []string{"Sierra 3500HD"}, q.Models)
	assert.Equal(t, []string{"Denali Ultimate"}, q.Trims)
	assert.Equal(t, Int(2023), q.YearMin)
	assert.Equal(t, Int(2024), q.YearMax)
	assert.Equal(t, Int(100000), q.MaxPrice)
	assert.Equal(t, "AWD4WD", q.Drivetrain)
	assert.Equal(t, "Black", q.ExteriorColor)
	require.NotNil(t, q.Location)
	assert.Equal(t, "94002", q.Location.Zip)
	assert.Equal(t, 250, q.Location.Radius)
}

func TestTripleFromMapRejectsAdapterShapes(t *testing.T) {
	_, ok := TripleFromMap(map[string]any{"make": "GMC", "zip": "94002"})
	assert.False(t, ok)

	_, ok = TripleFromMap(map[string]any{"filters": "not an object"})
	assert.False(t, ok)
}

func TestTripleIgnoresNonNumericNumbers(t *testing.T) {
	triple := FilterTriple{Filters: TripleFilters{URLParams: map[string]any{"maxPrice": "cheap", "yearMin": 2021.5}}}
	q := triple.ToStructured()
	assert.Nil(t, q.MaxPrice)
	assert.Nil(t, q.YearMin)
	assert.Nil(t, q.Location)
}

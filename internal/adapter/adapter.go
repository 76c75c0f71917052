// Package adapter translates a structured query into each retailer's native
// search input. Adapters are pure: they never invent values the query does
// not carry, apart from the location defaults some retailers require.
package adapter

import (
	"fmt"
	"reflect"
	"strings"

	"sjsage522/carsearch/internal/query"
	"sjsage522/carsearch/pkg/errors"
)

const (
	DefaultZip    = "94002"
	DefaultRadius = 500
)

// Adapters holds the location defaults applied when a query names none.
type Adapters struct {
	zip    string
	radius int
}

// New returns adapters using the given location defaults. Blank or
// non-positive values fall back to DefaultZip and DefaultRadius.
func New(zip string, radius int) *Adapters {
	if zip == "" {
		zip = DefaultZip
	}
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Adapters{zip: zip, radius: radius}
}

// Location returns the zip and radius applied when a query names none.
func (a *Adapters) Location() (zip string, radius int) {
	return a.zip, a.radius
}

// Default uses DefaultZip and DefaultRadius.
var Default = New(DefaultZip, DefaultRadius)

// Adapt runs the adapter for retailer. The result is a string for AutoTrader
// and a params struct for the others.
func (a *Adapters) Adapt(retailer string, q query.Structured) (any, error) {
	switch retailer {
	case query.AutoTrader:
		return a.AutoTrader(q), nil
	case query.CarGurus:
		return a.CarGurus(q), nil
	case query.CarMax:
		return a.CarMax(q), nil
	case query.Carvana:
		return a.Carvana(q), nil
	case query.TrueCar:
		return a.TrueCar(q), nil
	}
	return nil, errors.NewValidation(retailer, fmt.Sprintf("unknown retailer %q", retailer))
}

// AdaptAll runs every adapter, keyed by retailer.
func (a *Adapters) AdaptAll(q query.Structured) map[string]any {
	out := make(map[string]any, len(query.Retailers()))
	for _, r := range query.Retailers() {
		v, _ := a.Adapt(r, q)
		out[r] = v
	}
	return out
}

var paramTypes = map[string]reflect.Type{
	query.CarGurus: reflect.TypeOf(CarGurusParams{}),
	query.CarMax:   reflect.TypeOf(CarMaxParams{}),
	query.Carvana:  reflect.TypeOf(CarvanaParams{}),
	query.TrueCar:  reflect.TypeOf(TrueCarParams{}),
}

// Fields returns the JSON keys the retailer's params struct can carry. It is
// nil for AutoTrader and unknown retailers.
func Fields(retailer string) map[string]bool {
	t, ok := paramTypes[retailer]
	if !ok {
		return nil
	}
	fields := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			fields[name] = true
		}
	}
	return fields
}

// AutoTrader adapts q with the default location.
func AutoTrader(q query.Structured) string { return Default.AutoTrader(q) }

// CarGurus adapts q with the default location.
func CarGurus(q query.Structured) CarGurusParams { return Default.CarGurus(q) }

// CarMax adapts q.
func CarMax(q query.Structured) CarMaxParams { return Default.CarMax(q) }

// Carvana adapts q.
func Carvana(q query.Structured) CarvanaParams { return Default.Carvana(q) }

// TrueCar adapts q with the default location.
func TrueCar(q query.Structured) TrueCarParams { return Default.TrueCar(q) }

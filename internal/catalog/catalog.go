// Package catalog loads each retailer's enumerated filter vocabulary.
package catalog

import (
	"bytes"
	"encoding/json"
	"strings"

	"sjsage522/carsearch/helpers"
)

// Kind classifies a filter group.
type Kind string

const (
	KindEnumerated Kind = "enumerated"
	KindRange      Kind = "range"
)

// Option is one selectable value. Catalog files store options either as
// {"label","value"} objects or as bare strings.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
}

// UnmarshalJSON accepts a bare string or an object.
func (o *Option) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		o.Label, o.Value = s, s
		return nil
	}

	type plain Option
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Option(p)
	if o.Label == "" {
		o.Label = o.Value
	}
	return nil
}

// Range bounds a numeric filter. Bounds are kept as raw JSON since catalogs
// mix numbers and strings.
type Range struct {
	Min json.RawMessage `json:"min,omitempty"`
	Max json.RawMessage `json:"max,omitempty"`
}

// FilterGroup is one named filter on a retailer's search page.
type FilterGroup struct {
	Name    string   `json:"name"`
	Type    string   `json:"type,omitempty"`
	Label   string   `json:"label,omitempty"`
	Options []Option `json:"options,omitempty"`
	Range   *Range   `json:"range,omitempty"`
}

// Kind reports whether the group enumerates options or bounds a range.
func (g FilterGroup) Kind() Kind {
	if len(g.Options) > 0 {
		return KindEnumerated
	}
	return KindRange
}

// ModelFilters are the make/model specific options.
type ModelFilters struct {
	Trims       []string `json:"trims"`
	Colors      []string `json:"colors"`
	Drivetrains []string `json:"drivetrains"`
	Features    []string `json:"features"`
	FuelTypes   []string `json:"fuel_types"`
}

// GlobalFilters are options that apply regardless of make/model.
type GlobalFilters struct {
	BodyTypes      []string `json:"body_types"`
	FuelTypes      []string `json:"fuel_types"`
	Drivetrains    []string `json:"drivetrains"`
	Transmissions  []string `json:"transmissions"`
	ExteriorColors []string `json:"exterior_colors"`
	InteriorColors []string `json:"interior_colors"`
	CarSizes       []string `json:"car_sizes"`
	Doors          []string `json:"doors"`
	Cylinders      []string `json:"cylinders"`
	Features       []string `json:"features"`
}

// Catalog is a retailer's filter vocabulary. The filters key holds either a
// FilterGroup list or a make-slug -> model-slug -> ModelFilters object.
type Catalog struct {
	Retailer  string          `json:"retailer"`
	BaseURL   string          `json:"base_url,omitempty"`
	URLFormat json.RawMessage `json:"url_format,omitempty"`
	Filters   json.RawMessage `json:"filters,omitempty"`
	Global    *GlobalFilters  `json:"global_filters,omitempty"`

	groups []FilterGroup
	models map[string]map[string]ModelFilters
}

// UnmarshalJSON decodes the catalog and indexes whichever filters shape it carries.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	type plain Catalog
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Catalog(p)

	raw := bytes.TrimSpace(c.Filters)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '[':
		return json.Unmarshal(raw, &c.groups)
	case '{':
		return json.Unmarshal(raw, &c.models)
	}
	return nil
}

// NewCatalog builds a catalog from filter groups, as the harvester does.
func NewCatalog(retailer, baseURL string, groups []FilterGroup) (*Catalog, error) {
	raw, err := json.Marshal(groups)
	if err != nil {
		return nil, err
	}
	return &Catalog{Retailer: retailer, BaseURL: baseURL, Filters: raw, groups: groups}, nil
}

// Empty reports whether the catalog offers no grounding at all.
func (c *Catalog) Empty() bool {
	return len(c.groups) == 0 && len(c.models) == 0 && c.Global == nil
}

// Groups returns the catalog's filter groups.
func (c *Catalog) Groups() []FilterGroup {
	return c.groups
}

// Group finds a filter group by name, case-insensitively.
func (c *Catalog) Group(name string) (FilterGroup, bool) {
	for _, g := range c.groups {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return FilterGroup{}, false
}

// Options lists the labels of an enumerated group.
func (c *Catalog) Options(group string) []string {
	g, ok := c.Group(group)
	if !ok {
		return nil
	}
	labels := make([]string, 0, len(g.Options))
	for _, o := range g.Options {
		labels = append(labels, o.Label)
	}
	return labels
}

// Knows reports whether value is a legal option of group. grounded is false
// when the catalog has nothing to check against, in which case callers
// should accept the value.
func (c *Catalog) Knows(group, value string) (known, grounded bool) {
	g, ok := c.Group(group)
	if !ok || len(g.Options) == 0 {
		return false, false
	}
	return matchOption(g.Options, value), true
}

// KnowsMake checks a make against the "make" group. The nested model index
// only lists makes someone harvested, so a make it lacks is ungrounded
// rather than unknown.
func (c *Catalog) KnowsMake(makeName string) (known, grounded bool) {
	for _, name := range []string{"make", "makes"} {
		if known, grounded := c.Knows(name, makeName); grounded {
			return known, true
		}
	}
	if _, ok := c.models[helpers.Slugify(makeName)]; ok {
		return true, true
	}
	return false, false
}

// FiltersForModel returns the make/model specific options. Unknown pairs
// yield an all-empty record.
func (c *Catalog) FiltersForModel(makeName, model string) ModelFilters {
	mf, ok := c.models[helpers.Slugify(makeName)][helpers.Slugify(model)]
	if !ok {
		return ModelFilters{
			Trims:       []string{},
			Colors:      []string{},
			Drivetrains: []string{},
			Features:    []string{},
			FuelTypes:   []string{},
		}
	}
	return mf.filled()
}

// GlobalFilters returns the make/model agnostic options, empty when absent.
func (c *Catalog) GlobalFilters() GlobalFilters {
	if c.Global == nil {
		return GlobalFilters{}.filled()
	}
	return c.Global.filled()
}

func matchOption(options []Option, value string) bool {
	v := strings.TrimSpace(value)
	slug := helpers.Slugify(v)
	for _, o := range options {
		if strings.EqualFold(o.Label, v) || strings.EqualFold(o.Value, v) {
			return true
		}
		if helpers.Slugify(o.Label) == slug || helpers.Slugify(o.Value) == slug {
			return true
		}
	}
	return false
}

func (m ModelFilters) filled() ModelFilters {
	return ModelFilters{
		Trims:       orEmpty(m.Trims),
		Colors:      orEmpty(m.Colors),
		Drivetrains: orEmpty(m.Drivetrains),
		Features:    orEmpty(m.Features),
		FuelTypes:   orEmpty(m.FuelTypes),
	}
}

func (g GlobalFilters) filled() GlobalFilters {
	return GlobalFilters{
		BodyTypes:      orEmpty(g.BodyTypes),
		FuelTypes:      orEmpty(g.FuelTypes),
		Drivetrains:    orEmpty(g.Drivetrains),
		Transmissions:  orEmpty(g.Transmissions),
		ExteriorColors: orEmpty(g.ExteriorColors),
		InteriorColors: orEmpty(g.InteriorColors),
		CarSizes:       orEmpty(g.CarSizes),
		Doors:          orEmpty(g.Doors),
		Cylinders:      orEmpty(g.Cylinders),
		Features:       orEmpty(g.Features),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

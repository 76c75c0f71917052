// Package modelname maps heavy-duty model spellings onto the name each
// retailer lists them under.
package modelname

import (
	"regexp"
	"strings"
)

// defaultTable covers the HD and Classic families across GM, Ford and Ram.
var defaultTable = map[string]string{
	// GM
	"Sierra 1500HD":    "Sierra 1500",
	"Sierra 2500HD":    "Sierra 2500",
	"Sierra 3500HD":    "Sierra 3500",
	"Silverado 1500HD": "Silverado 1500",
	"Silverado 2500HD": "Silverado 2500",
	"Silverado 3500HD": "Silverado 3500",
	// Ford
	"F-150 HD": "F-150",
	"F-250 HD": "F-250",
	"F-350 HD": "F-350",
	// Ram
	"Ram 1500 Classic": "Ram 1500",
	"Ram 2500 Classic": "Ram 2500",
	"Ram 3500 Classic": "Ram 3500",
}

// overrides are consulted before the default table.
var overrides = map[string]map[string]string{
	"carmax": {
		"Sierra 3500HD": "Sierra 3500",
	},
	"carvana": {
		"Sierra 3500HD": "Sierra 3500",
	},
}

// bothVariants lists retailers that carry HD and non-HD models as distinct entries.
var bothVariants = map[string]bool{
	"autotrader": true,
	"truecar":    true,
	"cargurus":   true,
}

var (
	defaults = withSlugs(defaultTable)
	byRetail = func() map[string]map[string]string {
		m := make(map[string]map[string]string, len(overrides))
		for retailer, table := range overrides {
			m[retailer] = withSlugs(table)
		}
		return m
	}()

	hdSuffix = regexp.MustCompile(`(?i)(\d)[\s_-]*hd$`)
)

// Normalize returns the model name the retailer expects. Retailers that list
// both variants get model back untouched, as does any model without an HD or
// Classic variant.
func Normalize(model, retailer string) string {
	key := retailerKey(retailer)
	if bothVariants[key] {
		return model
	}

	slug := Slug(model)
	if table, ok := byRetail[key]; ok {
		if v, ok := lookup(table, model, slug); ok {
			return v
		}
	}
	if v, ok := lookup(defaults, model, slug); ok {
		return v
	}
	return model
}

// NormalizeAll applies Normalize to every entry, preserving order.
func NormalizeAll(models []string, retailer string) []string {
	out := make([]string, 0, len(models))
	for _, m := range models {
		out = append(out, Normalize(m, retailer))
	}
	return out
}

// ShouldNormalize reports whether model has a default-table entry that
// applies to retailer. It does not say whether Normalize would change it.
func ShouldNormalize(model, retailer string) bool {
	if bothVariants[retailerKey(retailer)] {
		return false
	}
	_, ok := lookup(defaults, model, Slug(model))
	return ok
}

// SupportsBoth reports whether retailer lists HD and non-HD models separately.
func SupportsBoth(retailer string) bool {
	return bothVariants[retailerKey(retailer)]
}

// StripHD drops a trailing HD designation that follows a digit, in display
// ("Sierra 3500HD", "Sierra 3500 HD") or slug ("sierra-3500hd") form. Names
// without one are returned unchanged.
func StripHD(model string) string {
	trimmed := strings.TrimSpace(model)
	if !hdSuffix.MatchString(trimmed) {
		return model
	}
	return hdSuffix.ReplaceAllString(trimmed, "$1")
}

// Slug is the lowercase, hyphenated key form used by the mapping tables.
func Slug(model string) string {
	s := strings.ToLower(model)
	s = strings.ReplaceAll(s, " ", "-")
	return strings.ReplaceAll(s, "_", "-")
}

func retailerKey(retailer string) string {
	k := strings.ToLower(strings.TrimSpace(retailer))
	k = strings.ReplaceAll(k, "-", "")
	return strings.ReplaceAll(k, "_", "")
}

func lookup(table map[string]string, model, slug string) (string, bool) {
	if v, ok := table[model]; ok {
		return v, true
	}
	if v, ok := table[slug]; ok {
		return v, true
	}
	return "", false
}

func withSlugs(table map[string]string) map[string]string {
	out := make(map[string]string, len(table)*2)
	for k, v := range table {
		out[k] = v
		out[Slug(k)] = Slug(v)
	}
	return out
}

// DefaultTable returns a copy of the display-form default mappings.
func DefaultTable() map[string]string {
	out := make(map[string]string, len(defaultTable))
	for k, v := range defaultTable {
		out[k] = v
	}
	return out
}

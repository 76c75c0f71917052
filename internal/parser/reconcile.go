package parser

import (
	"fmt"
	"net/url"
	"strings"

	"sjsage522/carsearch/internal/adapter"
	"sjsage522/carsearch/internal/catalog"
	"sjsage522/carsearch/internal/modelname"
	"sjsage522/carsearch/internal/query"
	"sjsage522/carsearch/pkg/errors"
)

// Keys holding years, prices, mileage or radii in any retailer's output.
var numericKeys = map[string]bool{
	"year":         true,
	"yearMin":      true,
	"yearMax":      true,
	"startYear":    true,
	"endYear":      true,
	"minPrice":     true,
	"maxPrice":     true,
	"budget":       true,
	"mileageMax":   true,
	"distance":     true,
	"searchRadius": true,
}

// Spellings completions use for a params field under another name.
var fieldAliases = map[string]string{
	"priceMin": "minPrice",
	"priceMax": "maxPrice",
	"zipCode":  "zip",
}

var carMaxArrays = []string{"makes", "models", "trims", "colors", "features"}

// reconciler brings LLM output in line with what the adapters would emit.
type reconciler struct {
	p        *Parser
	text     string
	catalogs map[string]*catalog.Catalog

	extracted *query.Structured
}

func (rc *reconciler) fallbackQuery() query.Structured {
	if rc.extracted == nil {
		q := Extract(rc.text)
		rc.extracted = &q
	}
	return *rc.extracted
}

func (rc *reconciler) location() (string, int) {
	zip, radius := rc.p.adapters.Location()
	q := rc.fallbackQuery()
	return q.Zip(zip), q.Radius(radius)
}

// reconcile returns a complete retailer map. Entries that are missing or
// cannot be repaired are replaced by the fallback adapter output; the second
// return value lists them.
func (rc *reconciler) reconcile(raw map[string]any) (map[string]any, []string) {
	out := make(map[string]any, len(query.Retailers()))
	var replaced []string

	for _, r := range query.Retailers() {
		v, err := rc.entry(r, raw[r])
		if err != nil {
			rc.p.log.Debug().Str("retailer", r).Err(err).Msg("Replacing retailer entry with fallback")
			v, _ = rc.p.adapters.Adapt(r, rc.fallbackQuery())
			replaced = append(replaced, r)
		}
		out[r] = v
	}
	return out, replaced
}

func (rc *reconciler) entry(retailer string, v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("missing")
	case string:
		if retailer != query.AutoTrader {
			return nil, fmt.Errorf("unexpected string")
		}
		return rc.autoTraderURL(val)
	case map[string]any:
		if triple, ok := query.TripleFromMap(val); ok {
			return rc.fromTriple(retailer, triple)
		}
		if retailer == query.AutoTrader {
			return nil, fmt.Errorf("unexpected object")
		}
		return rc.params(retailer, val), nil
	}
	return nil, fmt.Errorf("unexpected %T", v)
}

func (rc *reconciler) fromTriple(retailer string, triple *query.FilterTriple) (any, error) {
	q := triple.ToStructured()
	if q.Location == nil || q.Location.Zip == "" {
		zip, radius := rc.location()
		q.Location = &query.Location{Zip: zip, Radius: q.Radius(radius)}
	}
	rc.dropUnknownMakes(retailer, &q)
	return rc.p.adapters.Adapt(retailer, q)
}

// autoTraderURL strips HD from path segments and adds zip and searchRadius
// when the completion left them out.
func (rc *reconciler) autoTraderURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("not an https url: %q", raw)
	}

	segments := strings.Split(u.Path, "/")
	for i, seg := range segments {
		segments[i] = modelname.StripHD(seg)
	}
	u.Path = strings.Join(segments, "/")
	u.RawPath = ""

	zip, radius := rc.location()
	values := u.Query()
	var extra []string
	if values.Get("zip") == "" {
		extra = append(extra, "zip="+url.QueryEscape(zip))
	}
	if values.Get("searchRadius") == "" {
		extra = append(extra, fmt.Sprintf("searchRadius=%d", radius))
	}
	if len(extra) > 0 {
		if u.RawQuery != "" {
			extra = append([]string{u.RawQuery}, extra...)
		}
		u.RawQuery = strings.Join(extra, "&")
	}
	return u.String(), nil
}

func (rc *reconciler) params(retailer string, m map[string]any) map[string]any {
	foldSeries(m)

	fields := adapter.Fields(retailer)
	for alias, key := range fieldAliases {
		if v, ok := m[alias]; ok && fields[key] {
			if _, set := m[key]; !set {
				m[key] = v
			}
		}
	}
	for key, v := range m {
		if !fields[key] {
			rc.p.log.Debug().Str("retailer", retailer).Str("key", key).Msg("Dropping field the retailer does not take")
			delete(m, key)
			continue
		}
		if !numericKeys[key] {
			continue
		}
		if n, ok := query.AsInt(v); ok {
			m[key] = n
		} else {
			delete(m, key)
		}
	}

	zip, radius := rc.location()
	switch retailer {
	case query.CarGurus:
		rc.require(retailer, m, "zip", zip)
		rc.require(retailer, m, "distance", radius)
	case query.TrueCar:
		rc.require(retailer, m, "postalCode", zip)
		rc.require(retailer, m, "searchRadius", radius)
	case query.CarMax:
		for _, key := range carMaxArrays {
			m[key] = stringList(m[key])
		}
		models := modelname.NormalizeAll(stringList(m["models"]), query.CarMax)
		for i, model := range models {
			models[i] = modelname.StripHD(model)
		}
		m["models"] = models
	case query.Carvana:
		if model, ok := m["model"].(string); ok && model != "" {
			m["model"] = modelname.StripHD(modelname.Normalize(model, query.Carvana))
		}
	}

	rc.dropUnknownParamMakes(retailer, m)

	if retailer == query.CarMax {
		makes, models := m["makes"].([]string), m["models"].([]string)
		n := min(len(makes), len(models))
		m["makes"], m["models"] = makes[:n], models[:n]
	}
	return m
}

func (rc *reconciler) dropUnknownMakes(retailer string, q *query.Structured) {
	c, ok := rc.catalogs[retailer]
	if !ok {
		return
	}
	var makes, models []string
	for i, mk := range q.Makes {
		if known, grounded := c.KnowsMake(mk); grounded && !known {
			rc.p.log.Debug().Str("retailer", retailer).Str("make", mk).Msg("Dropping make unknown to catalog")
			continue
		}
		makes = append(makes, mk)
		if i < len(q.Models) {
			models = append(models, q.Models[i])
		}
	}
	if len(makes) == 0 {
		models = nil
	}
	q.Makes, q.Models = makes, models
}

func (rc *reconciler) dropUnknownParamMakes(retailer string, m map[string]any) {
	c, ok := rc.catalogs[retailer]
	if !ok {
		return
	}

	if retailer == query.CarMax {
		makes := m["makes"].([]string)
		models := m["models"].([]string)
		keptMakes, keptModels := []string{}, []string{}
		for i, mk := range makes {
			if known, grounded := c.KnowsMake(mk); grounded && !known {
				continue
			}
			keptMakes = append(keptMakes, mk)
			if i < len(models) {
				keptModels = append(keptModels, models[i])
			}
		}
		m["makes"], m["models"] = keptMakes, keptModels
		return
	}

	mk, ok := m["make"].(string)
	if !ok || mk == "" {
		return
	}
	if known, grounded := c.KnowsMake(mk); grounded && !known {
		rc.p.log.Debug().Str("retailer", retailer).Str("make", mk).Msg("Dropping make unknown to catalog")
		delete(m, "make")
		delete(m, "model")
	}
}

// foldSeries merges a separate series ("3500HD") into the model so the
// normalizer sees the full name.
func foldSeries(m map[string]any) {
	series, _ := m["series"].(string)
	delete(m, "series")
	series = strings.TrimSpace(series)
	model, ok := m["model"].(string)
	if series == "" || !ok || model == "" {
		return
	}
	if !strings.Contains(strings.ToLower(model), strings.ToLower(series)) {
		m["model"] = strings.TrimSpace(model) + " " + series
	}
}

// require fills a field the retailer cannot search without.
func (rc *reconciler) require(retailer string, m map[string]any, key string, value any) {
	if v, ok := m[key]; ok && v != nil && v != "" {
		return
	}
	rc.p.log.Debug().
		Err(errors.NewAdapterInput(retailer, key+" missing")).
		Interface("default", value).
		Msg("Applying location default")
	m[key] = value
}

// stringList accepts a JSON array or a lone string and never returns nil.
func stringList(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	case []string:
		for _, s := range val {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

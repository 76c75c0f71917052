package catalog

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/carsearch/pkg/errors"
)

// Selectors tell the harvester where a search page keeps its filter widgets.
type Selectors struct {
	Select   string // dropdowns, one group each
	Fieldset string // checkbox/radio groups
	Legend   string // group title inside a fieldset
	Range    string // numeric inputs carrying min/max attributes
}

// DefaultSelectors match plain HTML forms.
var DefaultSelectors = Selectors{
	Select:   "select[name]",
	Fieldset: "fieldset",
	Legend:   "legend",
	Range:    `input[type="range"][name], input[type="number"][name]`,
}

// Harvest builds a catalog from a retailer search page using DefaultSelectors.
func Harvest(r io.Reader, retailer string) (*Catalog, error) {
	return HarvestWith(r, retailer, "", DefaultSelectors)
}

// HarvestWith builds a catalog from a retailer search page.
func HarvestWith(r io.Reader, retailer, baseURL string, sel Selectors) (*Catalog, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.NewValidation(retailer, "failed to parse search page: "+err.Error())
	}

	var groups []FilterGroup
	seen := make(map[string]bool)
	add := func(g FilterGroup) {
		if g.Name == "" || seen[g.Name] {
			return
		}
		seen[g.Name] = true
		groups = append(groups, g)
	}

	doc.Find(sel.Select).Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		g := FilterGroup{Name: strings.TrimSpace(name), Type: "select", Label: labelFor(doc, s)}
		s.Find("option").Each(func(_ int, o *goquery.Selection) {
			value, _ := o.Attr("value")
			label := strings.TrimSpace(o.Text())
			if strings.TrimSpace(value) == "" || label == "" {
				return
			}
			g.Options = append(g.Options, Option{Label: label, Value: strings.TrimSpace(value)})
		})
		if len(g.Options) > 0 {
			add(g)
		}
	})

	doc.Find(sel.Fieldset).Each(func(_ int, s *goquery.Selection) {
		inputs := s.Find(`input[type="checkbox"], input[type="radio"]`)
		if inputs.Length() == 0 {
			return
		}
		name, _ := inputs.First().Attr("name")
		g := FilterGroup{
			Name:  strings.TrimSpace(name),
			Type:  "checkbox",
			Label: strings.TrimSpace(s.Find(sel.Legend).First().Text()),
		}
		if t, _ := inputs.First().Attr("type"); t == "radio" {
			g.Type = "radio"
		}
		inputs.Each(func(_ int, in *goquery.Selection) {
			value, _ := in.Attr("value")
			label := strings.TrimSpace(labelFor(doc, in))
			if label == "" {
				label = strings.TrimSpace(value)
			}
			if label == "" {
				return
			}
			g.Options = append(g.Options, Option{Label: label, Value: strings.TrimSpace(value)})
		})
		if len(g.Options) > 0 {
			add(g)
		}
	})

	doc.Find(sel.Range).Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		lo, hasMin := s.Attr("min")
		hi, hasMax := s.Attr("max")
		if !hasMin && !hasMax {
			return
		}
		g := FilterGroup{Name: strings.TrimSpace(name), Type: "range", Label: labelFor(doc, s), Range: &Range{}}
		if hasMin {
			g.Range.Min = rawBound(lo)
		}
		if hasMax {
			g.Range.Max = rawBound(hi)
		}
		add(g)
	})

	return NewCatalog(retailer, baseURL, groups)
}

// labelFor resolves the visible label of a form control: <label for=id>,
// then an enclosing <label>, then aria-label.
func labelFor(doc *goquery.Document, s *goquery.Selection) string {
	if id, ok := s.Attr("id"); ok && id != "" {
		if l := doc.Find(`label[for="` + id + `"]`); l.Length() > 0 {
			return strings.TrimSpace(l.First().Text())
		}
	}
	if l := s.Closest("label"); l.Length() > 0 {
		return strings.TrimSpace(l.Text())
	}
	if aria, ok := s.Attr("aria-label"); ok {
		return strings.TrimSpace(aria)
	}
	return ""
}

func rawBound(v string) json.RawMessage {
	v = strings.TrimSpace(v)
	if json.Valid([]byte(v)) {
		return json.RawMessage(v)
	}
	quoted, _ := json.Marshal(v)
	return quoted
}

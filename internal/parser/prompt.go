package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"sjsage522/carsearch/helpers"
	"sjsage522/carsearch/internal/adapter"
	"sjsage522/carsearch/internal/catalog"
	"sjsage522/carsearch/internal/query"
)

// ReferenceText is the query the prompt's worked example is built from.
const ReferenceText = "2023-2024 GMC Sierra 3500HD Denali Ultimate within 500 miles of 94002 under 100000"

// ReferenceQuery is ReferenceText in structured form.
func ReferenceQuery() query.Structured {
	return query.Structured{
		Makes:    []string{"GMC"},
		Models:   []string{"Sierra 3500HD"},
		Trims:    []string{"Denali Ultimate"},
		Location: &query.Location{Zip: "94002", Radius: 500},
		YearMin:  query.Int(2023),
		YearMax:  query.Int(2024),
		MaxPrice: query.Int(100000),
	}
}

// Heavy-duty spellings shown in the model naming section.
var namingSamples = []struct {
	make  string
	model string
}{
	{"GMC", "Sierra 3500HD"},
	{"Chevrolet", "Silverado 2500HD"},
}

var retailerRules = map[string]string{
	query.AutoTrader: "a single https URL string. Path is /cars-for-sale/{color}/{make}/{model}/{trim} with lowercase hyphenated segments, color before make, omitted segments dropped. Always include zip and searchRadius query parameters.",
	query.CarGurus:   "an object. Always include zip and distance. Keep the full model name.",
	query.CarMax:     "an object. makes, models, trims, colors and features are arrays, present even when empty; makes and models are parallel.",
	query.Carvana:    "an object with a single year and model as space separated text. There is no series field.",
	query.TrueCar:    "an object. Always include postalCode and searchRadius. Keep the full model name. trims is an array.",
}

// BuildSystemPrompt renders the grounding catalogs together with output
// examples produced by the adapters themselves.
func BuildSystemPrompt(catalogs map[string]*catalog.Catalog, adapters *adapter.Adapters) (string, error) {
	var b strings.Builder

	b.WriteString("You are a vehicle search filter mapper. Map a natural language vehicle search query to the exact filters each of the 5 car retailers accepts.\n\n")

	b.WriteString("# Retailer filter catalogs\n\n")
	for _, r := range query.Retailers() {
		c, ok := catalogs[r]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## **%s** (%s)\n\n", helpers.FirstNonEmpty(c.Retailer, r), r)
		if len(c.Filters) > 0 {
			fmt.Fprintf(&b, "Filters:\n```json\n%s\n```\n\n", indentJSON(c.Filters))
		}
		if c.Global != nil {
			global, err := prettyJSON(c.GlobalFilters())
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "Global filters:\n```json\n%s\n```\n\n", global)
		}
		if len(c.URLFormat) > 0 {
			fmt.Fprintf(&b, "URL format:\n```json\n%s\n```\n\n", indentJSON(c.URLFormat))
		}
	}

	zip, radius := adapters.Location()
	b.WriteString("# Location\n\n")
	b.WriteString("- \"within N miles of ZIP\": zip is ZIP and radius is N.\n")
	b.WriteString("- \"near ZIP\", \"around ZIP\", \"zip ZIP\" or \"of ZIP\": zip is ZIP.\n")
	b.WriteString("- A standalone 5 digit number is a zip.\n")
	fmt.Fprintf(&b, "- Without a location use zip %s and radius %d.\n\n", zip, radius)

	b.WriteString("# Output per retailer\n\n")
	for _, r := range query.Retailers() {
		fmt.Fprintf(&b, "- %s: %s\n", r, retailerRules[r])
	}
	b.WriteString("\n")

	b.WriteString("# Matching\n\n")
	b.WriteString("- Use option values exactly as they appear in the catalogs.\n")
	b.WriteString("- Only include filters explicitly mentioned in the query.\n")
	b.WriteString("- Years, prices, mileage and radius are JSON integers, never strings.\n\n")

	b.WriteString("# Model naming\n\n")
	for _, s := range namingSamples {
		notes, err := namingNotes(adapters, s.make, s.model)
		if err != nil {
			return "", err
		}
		b.WriteString(notes)
	}
	b.WriteString("\n")

	example, err := prettyJSON(map[string]any{
		"retailers": adapters.AdaptAll(ReferenceQuery()),
	})
	if err != nil {
		return "", err
	}
	b.WriteString("# Output format\n\n")
	fmt.Fprintf(&b, "Return only a JSON object. For the query \"%s\" the answer is:\n\n```json\n%s\n```\n", ReferenceText, example)

	return b.String(), nil
}

// BuildUserPrompt wraps the query text.
func BuildUserPrompt(text string) string {
	return fmt.Sprintf("Map this vehicle search query to retailer-specific filters for all 5 retailers:\n\nQuery: %q\n\nProvide the complete filter mapping for all retailers.", text)
}

func namingNotes(adapters *adapter.Adapters, makeName, model string) (string, error) {
	q := query.Structured{Makes: []string{makeName}, Models: []string{model}}

	atModel, err := autoTraderModelSegment(adapters.AutoTrader(q), makeName)
	if err != nil {
		return "", err
	}
	carMax := adapters.CarMax(q)

	names := []struct {
		retailer string
		value    string
	}{
		{query.AutoTrader, atModel},
		{query.CarGurus, adapters.CarGurus(q).Model},
		{query.CarMax, strings.Join(carMax.Models, ", ")},
		{query.Carvana, adapters.Carvana(q).Model},
		{query.TrueCar, adapters.TrueCar(q).Model},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%q is written as:\n", model)
	for _, n := range names {
		fmt.Fprintf(&b, "  - %s: %q\n", n.retailer, n.value)
	}
	return b.String(), nil
}

func autoTraderModelSegment(rawURL, makeName string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	makeSlug := helpers.Slugify(makeName)
	for i, seg := range segments {
		if seg == makeSlug && i+1 < len(segments) {
			return segments[i+1], nil
		}
	}
	return "", fmt.Errorf("no model segment in %s", rawURL)
}

func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// prettyJSON indents v without escaping the & in URLs.
func prettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

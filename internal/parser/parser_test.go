package parser

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/carsearch/internal/adapter"
	"sjsage522/carsearch/internal/catalog"
	"sjsage522/carsearch/internal/query"
	"sjsage522/carsearch/pkg/errors"
)

type fakeCompleter struct {
	mu      sync.Mutex
	content string
	err     error
	calls   int
	system  string
	user    string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.system, f.user = system, user
	return f.content, f.err
}

type memCache struct {
	data map[string][]byte
}

func (m *memCache) Lookup(text string) ([]byte, bool) {
	d, ok := m.data[text]
	return d, ok
}

func (m *memCache) Store(text string, data []byte) {
	m.data[text] = data
}

func shippedLoader() *catalog.Loader {
	return catalog.NewLoader("../../data")
}

func TestParseWithoutCatalogs(t *testing.T) {
	p := New(catalog.NewLoader(t.TempDir()), &fakeCompleter{})
	res := p.Parse(context.Background(), ReferenceText, true)

	assert.Equal(t, "No filter JSONs found in data/ directory", res.Error)
	assert.Empty(t, res.Retailers)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"`+ReferenceText+`","retailers":{},"error":"No filter JSONs found in data/ directory"}`, string(data))
}

func TestParsePatternFallbackUsesAdapters(t *testing.T) {
	p := New(shippedLoader(), nil)
	res := p.Parse(context.Background(), ReferenceText, false)

	require.Empty(t, res.Error)
	assert.Equal(t, MethodPatternFallback, res.Method)
	assert.Equal(t, adapter.Default.AdaptAll(Extract(ReferenceText)), res.Retailers)
	assert.Equal(t,
		"https://www.autotrader.com/cars-for-sale/gmc/sierra-3500/denali-ultimate?zip=94002&searchRadius=500&startYear=2023&endYear=2024&maxPrice=100000",
		res.Retailers[query.AutoTrader])
}

func TestParseFallsBackOnLLMFailure(t *testing.T) {
	testCases := []struct {
		name      string
		completer *fakeCompleter
	}{
		{"transport error", &fakeCompleter{err: errors.NewNetwork("", "connection refused", nil)}},
		{"not json", &fakeCompleter{content: "Sure! Here are the filters you asked for."}},
		{"no retailers", &fakeCompleter{content: `{"query":"x"}`}},
		{"empty retailers", &fakeCompleter{content: `{"retailers":{}}`}},
		{"wrong shape", &fakeCompleter{content: `{"retailers":{"cargurus":"make=GMC"}}`}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(shippedLoader(), tc.completer)
			res := p.Parse(context.Background(), ReferenceText, true)
			assert.Equal(t, 1, tc.completer.calls)
			assert.Equal(t, MethodPatternFallback, res.Method)
			assert.Len(t, res.Retailers, 5)
			assert.Empty(t, res.Error)
		})
	}
}

func TestParseNilCompleterFallsBack(t *testing.T) {
	res := New(shippedLoader(), nil).Parse(context.Background(), "ford f-150 near 10001", true)
	assert.Equal(t, MethodPatternFallback, res.Method)
	assert.Len(t, res.Retailers, 5)
}

const fencedCompletion = "```json\n" + `{
  "retailers": {
    "autotrader": "https://www.autotrader.com/cars-for-sale/gmc/sierra-3500hd/denali-ultimate?startYear=2023",
    "cargurus": {"make": "GMC", "model": "Sierra 3500HD", "yearMin": "2023", "maxPrice": "100,000"},
    "carmax": {"makes": ["GMC", "Tesla"], "models": ["Sierra 3500HD", "Model S"], "trims": "Denali Ultimate"},
    "carvana": {"make": "GMC", "model": "Sierra 3500HD", "year": 2023},
    "truecar": {"make": "GMC", "model": "Sierra 3500HD", "budget": 100000.0, "searchRadius": 250}
  }
}` + "\n```"

func TestParseReconcilesCompletion(t *testing.T) {
	fc := &fakeCompleter{content: fencedCompletion}
	p := New(shippedLoader(), fc)
	res := p.Parse(context.Background(), ReferenceText, true)

	require.Empty(t, res.Error)
	assert.Empty(t, res.Method)
	assert.Equal(t, ReferenceText, res.Query)

	assert.Equal(t,
		"https://www.autotrader.com/cars-for-sale/gmc/sierra-3500/denali-ultimate?startYear=2023&zip=94002&searchRadius=500",
		res.Retailers[query.AutoTrader])

	cg := res.Retailers[query.CarGurus].(map[string]any)
	assert.Equal(t, "Sierra 3500HD", cg["model"])
	assert.Equal(t, 2023, cg["yearMin"])
	assert.Equal(t, 100000, cg["maxPrice"])
	assert.Equal(t, "94002", cg["zip"])
	assert.Equal(t, 500, cg["distance"])

	cm := res.Retailers[query.CarMax].(map[string]any)
	assert.Equal(t, []string{"GMC", "Tesla"}, cm["makes"])
	assert.Equal(t, []string{"Sierra 3500", "Model S"}, cm["models"])
	assert.Equal(t, []string{"Denali Ultimate"}, cm["trims"])
	assert.Equal(t, []string{}, cm["colors"])

	cv := res.Retailers[query.Carvana].(map[string]any)
	assert.Equal(t, "Sierra 3500", cv["model"])

	tc := res.Retailers[query.TrueCar].(map[string]any)
	assert.Equal(t, "Sierra 3500HD", tc["model"])
	assert.Equal(t, 100000, tc["budget"])
	assert.Equal(t, "94002", tc["postalCode"])
	assert.Equal(t, 250, tc["searchRadius"])
}

func TestParseKeepsMakesMissingFromModelIndex(t *testing.T) {
	fc := &fakeCompleter{content: `{"retailers":{
		"carmax": {"makes": ["Toyota"], "models": ["Tacoma"]},
		"carvana": {"make": "Toyota", "model": "Tacoma"}
	}}`}
	res := New(shippedLoader(), fc).Parse(context.Background(), "toyota tacoma", true)

	cm := res.Retailers[query.CarMax].(map[string]any)
	assert.Equal(t, []string{"Toyota"}, cm["makes"])
	assert.Equal(t, []string{"Tacoma"}, cm["models"])

	cv := res.Retailers[query.Carvana].(map[string]any)
	assert.Equal(t, "Toyota", cv["make"])
	assert.Equal(t, "Tacoma", cv["model"])
}

func TestParseDropsMakeOutsideMakeList(t *testing.T) {
	fc := &fakeCompleter{content: `{"retailers":{"truecar":{"make":"Tesla","model":"Model S","budget":60000}}}`}
	res := New(shippedLoader(), fc).Parse(context.Background(), "tesla model s", true)

	tc := res.Retailers[query.TrueCar].(map[string]any)
	assert.NotContains(t, tc, "make")
	assert.NotContains(t, tc, "model")
	assert.Equal(t, 60000, tc["budget"])
}

func TestParseKeepsOnlyAdapterFields(t *testing.T) {
	fc := &fakeCompleter{content: `{"retailers":{
		"carvana": {"make": "GMC", "model": "Sierra", "series": "3500HD", "bogus": "x"},
		"carmax": {"makes": ["GMC"], "models": ["Sierra 3500HD"], "priceMax": "100000", "page": 2},
		"truecar": {"make": "GMC", "model": "Sierra", "series": "3500HD", "zipCode": "10001"}
	}}`}
	res := New(shippedLoader(), fc).Parse(context.Background(), "gmc sierra 3500hd", true)

	assert.Equal(t, map[string]any{"make": "GMC", "model": "Sierra 3500"}, res.Retailers[query.Carvana])

	cm := res.Retailers[query.CarMax].(map[string]any)
	assert.Equal(t, 100000, cm["maxPrice"])
	assert.NotContains(t, cm, "priceMax")
	assert.NotContains(t, cm, "page")

	tc := res.Retailers[query.TrueCar].(map[string]any)
	assert.Equal(t, "Sierra 3500HD", tc["model"])
	assert.NotContains(t, tc, "series")
	assert.NotContains(t, tc, "zipCode")
	assert.Equal(t, adapter.DefaultZip, tc["postalCode"])
}

func TestParseFillsMissingRetailersFromFallback(t *testing.T) {
	fc := &fakeCompleter{content: `{"retailers":{"truecar":{"make":"GMC","model":"Sierra 3500HD"}}}`}
	res := New(shippedLoader(), fc).Parse(context.Background(), ReferenceText, true)

	require.Len(t, res.Retailers, 5)
	fallback := adapter.Default.AdaptAll(Extract(ReferenceText))
	assert.Equal(t, fallback[query.AutoTrader], res.Retailers[query.AutoTrader])
	assert.Equal(t, fallback[query.CarMax], res.Retailers[query.CarMax])
}

func TestParseAdaptsFilterTriples(t *testing.T) {
	fc := &fakeCompleter{content: `{"retailers":{
		"autotrader": {"url": "https://www.autotrader.com/cars-for-sale", "filters": {
			"path_components": {"make": "GMC", "model": "Sierra 3500HD", "trim": "Denali"},
			"url_params": {"startYear": "2023", "endYear": 2024, "zip": "10001"}
		}},
		"carvana": {"url": "https://www.carvana.com/cars", "filters": {
			"body_params": {"make": "GMC", "model": "Sierra 3500HD", "yearMin": 2022}
		}}
	}}`}
	res := New(shippedLoader(), fc).Parse(context.Background(), ReferenceText, true)

	assert.Equal(t,
		"https://www.autotrader.com/cars-for-sale/gmc/sierra-3500/denali?zip=10001&searchRadius=500&startYear=2023&endYear=2024",
		res.Retailers[query.AutoTrader])

	cv, ok := res.Retailers[query.Carvana].(adapter.CarvanaParams)
	require.True(t, ok)
	assert.Equal(t, "Sierra 3500", cv.Model)
	assert.Equal(t, query.Int(2022), cv.Year)
}

func TestParseCacheHitSkipsLLM(t *testing.T) {
	cache := &memCache{data: map[string][]byte{}}
	fc := &fakeCompleter{content: fencedCompletion}
	p := New(shippedLoader(), fc, WithCache(cache))

	first := p.Parse(context.Background(), ReferenceText, true)
	second := p.Parse(context.Background(), ReferenceText, true)

	assert.Equal(t, 1, fc.calls)
	assert.Equal(t, first.Retailers[query.AutoTrader], second.Retailers[query.AutoTrader])
	assert.Empty(t, second.Method)

	want, err := json.Marshal(first)
	require.NoError(t, err)
	got, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestParseDoesNotCacheFallback(t *testing.T) {
	cache := &memCache{data: map[string][]byte{}}
	fc := &fakeCompleter{content: "not json"}
	New(shippedLoader(), fc, WithCache(cache)).Parse(context.Background(), ReferenceText, true)
	assert.Empty(t, cache.data)
}

func TestParseUsesConfiguredLocation(t *testing.T) {
	p := New(shippedLoader(), nil, WithAdapters(adapter.New("10001", 50)))
	res := p.Parse(context.Background(), "used toyota", false)
	assert.Equal(t, "https://www.autotrader.com/cars-for-sale/toyota?zip=10001&searchRadius=50", res.Retailers[query.AutoTrader])
}

func TestPromptUsesAdapterOutput(t *testing.T) {
	fc := &fakeCompleter{content: "{}"}
	New(shippedLoader(), fc).Parse(context.Background(), "gmc sierra", true)

	example, err := prettyJSON(map[string]any{"retailers": adapter.Default.AdaptAll(ReferenceQuery())})
	require.NoError(t, err)
	assert.Contains(t, fc.system, example)
	assert.Contains(t, fc.system, `"Sierra 3500HD" is written as:`)
	assert.Contains(t, fc.system, `  - autotrader: "sierra-3500"`)
	assert.Contains(t, fc.system, `  - truecar: "Sierra 3500HD"`)
	assert.Contains(t, fc.system, `  - carvana: "Sierra 3500"`)
	assert.Contains(t, fc.system, "## **AutoTrader** (autotrader)")
	assert.Contains(t, fc.system, "Only include filters explicitly mentioned")

	assert.Equal(t,
		"Map this vehicle search query to retailer-specific filters for all 5 retailers:\n\nQuery: \"gmc sierra\"\n\nProvide the complete filter mapping for all retailers.",
		fc.user)
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFence("```\n{\"a\":1}\n```\n"))
	assert.Equal(t, `{"a":1}`, stripFence(`  {"a":1} `))
	assert.True(t, strings.HasPrefix(stripFence("```json\n{\"a\":\n1}"), `{"a":`))
}

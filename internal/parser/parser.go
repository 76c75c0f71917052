// Package parser turns free-text vehicle searches into per-retailer filters.
// A chat completion grounded on the filter catalogs is tried first; a
// keyword extractor feeding the adapters is the fallback.
package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"sjsage522/carsearch/internal/adapter"
	"sjsage522/carsearch/internal/catalog"
	"sjsage522/carsearch/internal/llm"
	"sjsage522/carsearch/logger"
	"sjsage522/carsearch/pkg/errors"
)

// MethodPatternFallback marks results produced without the LLM.
const MethodPatternFallback = "pattern_fallback"

// Result is the parser output. It is always JSON serializable; failures are
// reported in Error rather than returned.
type Result struct {
	Query     string         `json:"query"`
	Retailers map[string]any `json:"retailers"`
	Method    string         `json:"method,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Cache stores encoded results by query text.
type Cache interface {
	Lookup(text string) ([]byte, bool)
	Store(text string, data []byte)
}

// Parser maps queries to retailer filters.
type Parser struct {
	loader    *catalog.Loader
	completer llm.Completer
	adapters  *adapter.Adapters
	cache     Cache
	log       *logger.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithCache caches successful LLM results.
func WithCache(c Cache) Option {
	return func(p *Parser) {
		p.cache = c
	}
}

// WithAdapters replaces the default location settings.
func WithAdapters(a *adapter.Adapters) Option {
	return func(p *Parser) {
		p.adapters = a
	}
}

// New creates a parser. completer may be nil, in which case every query
// takes the fallback path.
func New(loader *catalog.Loader, completer llm.Completer, opts ...Option) *Parser {
	p := &Parser{
		loader:    loader,
		completer: completer,
		adapters:  adapter.Default,
		log:       logger.ForParser(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse maps text to filters for every retailer. useLLM false forces the
// fallback path.
func (p *Parser) Parse(ctx context.Context, text string, useLLM bool) *Result {
	catalogs := p.loader.LoadAll()
	if len(catalogs) == 0 {
		err := errors.NewConfiguration("No filter JSONs found in data/ directory", nil)
		p.log.Error().Err(err).Msg("Cannot parse query")
		return &Result{Query: text, Retailers: map[string]any{}, Error: err.Message}
	}

	if useLLM {
		res, err := p.parseLLM(ctx, text, catalogs)
		if err == nil {
			return res
		}
		p.log.Warn().Err(err).Msg("LLM parse failed, using pattern fallback")
	}

	return p.Fallback(text)
}

// Fallback maps text with the keyword extractor and the adapters.
func (p *Parser) Fallback(text string) *Result {
	q := Extract(text)
	retailers := p.adapters.AdaptAll(q)
	if len(retailers) == 0 {
		return &Result{Query: text, Retailers: map[string]any{}, Error: "no retailer filters produced"}
	}
	p.log.Debug().Str("query", text).Msg("Parsed query with pattern fallback")
	return &Result{Query: text, Retailers: retailers, Method: MethodPatternFallback}
}

func (p *Parser) parseLLM(ctx context.Context, text string, catalogs map[string]*catalog.Catalog) (*Result, error) {
	if p.completer == nil {
		return nil, errors.NewConfiguration("no LLM provider configured", nil)
	}

	if p.cache != nil {
		if data, ok := p.cache.Lookup(text); ok {
			var cached Result
			if err := json.Unmarshal(data, &cached); err == nil && len(cached.Retailers) > 0 {
				p.log.Debug().Str("query", text).Msg("Parse cache hit")
				cached.Query = text
				return &cached, nil
			}
		}
	}

	system, err := BuildSystemPrompt(catalogs, p.adapters)
	if err != nil {
		return nil, errors.NewLLMProtocol("failed to build system prompt", err)
	}

	content, err := p.completer.Complete(ctx, system, BuildUserPrompt(text))
	if err != nil {
		return nil, err
	}

	raw, err := decodeCompletion(content)
	if err != nil {
		return nil, err
	}

	rc := &reconciler{p: p, text: text, catalogs: catalogs}
	retailers, replaced := rc.reconcile(raw["retailers"].(map[string]any))
	if len(replaced) > 0 {
		p.log.Info().Strs("retailers", replaced).Msg("Filled retailer entries from pattern fallback")
	}

	res := &Result{Query: text, Retailers: retailers}
	if p.cache != nil {
		if data, err := json.Marshal(res); err == nil {
			p.cache.Store(text, data)
		}
	}
	return res, nil
}

var completionSchema = map[string]any{
	"type":     "object",
	"required": []any{"retailers"},
	"properties": map[string]any{
		"retailers": map[string]any{
			"type":          "object",
			"minProperties": 1,
			"properties": map[string]any{
				"autotrader": map[string]any{"type": []any{"string", "object"}},
				"cargurus":   map[string]any{"type": "object"},
				"carmax":     map[string]any{"type": "object"},
				"carvana":    map[string]any{"type": "object"},
				"truecar":    map[string]any{"type": "object"},
			},
		},
	},
}

// decodeCompletion strips a Markdown fence, decodes the JSON body and checks
// it against completionSchema.
func decodeCompletion(content string) (map[string]any, error) {
	content = stripFence(content)

	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, errors.NewLLMProtocol("completion is not a JSON object", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(completionSchema),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return nil, errors.NewLLMProtocol("schema validation error", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, errors.NewLLMProtocol(fmt.Sprintf("completion failed validation: %v", errs), nil)
	}

	return raw, nil
}

func stripFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:]
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

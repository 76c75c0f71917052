package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"sjsage522/carsearch/config"
	"sjsage522/carsearch/helpers"
	"sjsage522/carsearch/internal/adapter"
	"sjsage522/carsearch/internal/catalog"
	"sjsage522/carsearch/internal/llm"
	"sjsage522/carsearch/internal/parser"
	"sjsage522/carsearch/logger"
	"sjsage522/carsearch/services/cache"
	"sjsage522/carsearch/services/publisher"
	"sjsage522/carsearch/services/worker"
)

const usage = `Usage:
  carsearch [--use-patterns|-p] [--publish] "<query>"
  carsearch serve [--use-patterns|-p]      read queries from stdin, one per line
  carsearch harvest <retailer> <url> [out.json]
`

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	args := os.Args[1:]
	var err error
	switch {
	case len(args) > 0 && args[0] == "harvest":
		err = runHarvest(ctx, cfg, args[1:])
	case len(args) > 0 && args[0] == "serve":
		err = runServe(ctx, cfg, args[1:])
	default:
		err = runParse(ctx, cfg, args)
	}
	if err != nil {
		logger.LogError("main", err, "carsearch failed")
		os.Exit(1)
	}
}

func runParse(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("carsearch", flag.ContinueOnError)
	usePatterns := fs.BoolP("use-patterns", "p", false, "skip the LLM and use the pattern fallback")
	publish := fs.Bool("publish", false, "publish one search job per retailer to redis")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing query")
	}
	text := strings.Join(fs.Args(), " ")

	p := newParser(cfg)
	if !*publish {
		return writeJSON(os.Stdout, p.Parse(ctx, text, !*usePatterns))
	}

	pub := newPublisher(ctx, cfg)
	defer pub.Close()

	res, jobs, err := worker.NewWorker(ctx, p, pub, !*usePatterns).Process(text)
	if werr := writeJSON(os.Stdout, res); werr != nil {
		return werr
	}
	logger.Default.Info().Int("jobs", len(jobs)).Str("stream", cfg.RedisStream).Msg("Published search jobs")
	return err
}

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	usePatterns := fs.BoolP("use-patterns", "p", false, "skip the LLM and use the pattern fallback")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pub := newPublisher(ctx, cfg)
	defer pub.Close()

	w := worker.NewWorker(ctx, newParser(cfg), pub, !*usePatterns)

	queries := make(chan string)
	go func() {
		defer close(queries)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case queries <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.Default.Info().
		Str("environment", cfg.Environment).
		Str("redis", cfg.RedisAddr).
		Msg("Starting search job worker")
	w.Run(queries)
	logger.LogInfo("worker", "Shutting down gracefully...")
	return nil
}

func runHarvest(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("harvest needs a retailer and a url")
	}
	retailer, pageURL := args[0], args[1]

	body, err := helpers.FetchWithRandomHeaders(ctx, pageURL)
	if err != nil {
		return err
	}
	c, err := catalog.Harvest(body, retailer)
	if err != nil {
		return err
	}
	c.BaseURL = helpers.FirstNonEmpty(c.BaseURL, pageURL)

	out := io.Writer(os.Stdout)
	if len(args) > 2 {
		f, err := os.Create(args[2])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	logger.ForCatalog().Info().
		Str("retailer", retailer).
		Int("groups", len(c.Groups())).
		Str("catalog_dir", cfg.CatalogDir).
		Msg("Harvested filter catalog")
	return writeJSON(out, c)
}

// newParser wires the catalog loader, the LLM client when credentials exist,
// and the parse cache when memcache is configured.
func newParser(cfg *config.Config) *parser.Parser {
	var completer llm.Completer
	if provider, err := llm.ProviderFromEnv(); err != nil {
		logger.ForParser().Warn().Err(err).Msg("LLM disabled, using pattern fallback")
	} else {
		completer = llm.NewClient(provider, cfg.LLMTimeout, cfg.LLMMaxTokens)
	}

	var svc cache.CacheService = cache.NewMemoryService()
	if cfg.MemcacheAddr != "" {
		mc := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := mc.Ping(); err != nil {
			logger.ForCache().Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache unreachable, caching in memory")
		} else {
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
			svc = mc
		}
	}

	return parser.New(
		catalog.NewLoader(cfg.CatalogDir),
		completer,
		parser.WithCache(cache.NewParseCache(svc, cfg.ParseCacheTTL)),
		parser.WithAdapters(adapter.New(cfg.DefaultZip, cfg.DefaultRadius)),
	)
}

func newPublisher(ctx context.Context, cfg *config.Config) publisher.Publisher {
	pub := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	logger.Info("Publishing to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	return pub
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

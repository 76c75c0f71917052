package worker

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"sjsage522/carsearch/internal/parser"
	"sjsage522/carsearch/internal/query"
	"sjsage522/carsearch/logger"
	"sjsage522/carsearch/pkg/errors"
	"sjsage522/carsearch/services/publisher"
)

// SearchJob is the message a retailer scraper consumes.
type SearchJob struct {
	ID        string    `json:"id"`
	Retailer  string    `json:"retailer"`
	Query     string    `json:"query"`
	Filters   any       `json:"filters"`
	Method    string    `json:"method,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// QueryParser produces retailer filters for a query.
type QueryParser interface {
	Parse(ctx context.Context, text string, useLLM bool) *parser.Result
}

// Worker parses queries and publishes one search job per retailer
type Worker struct {
	ctx       context.Context
	parser    QueryParser
	publisher publisher.Publisher
	useLLM    bool
	log       *logger.Logger
	now       func() time.Time
}

// NewWorker creates a new worker
func NewWorker(ctx context.Context, qp QueryParser, pub publisher.Publisher, useLLM bool) *Worker {
	return &Worker{
		ctx:       ctx,
		parser:    qp,
		publisher: pub,
		useLLM:    useLLM,
		log:       logger.ForWorker(),
		now:       time.Now,
	}
}

// Run processes queries until the channel closes or the context is done
func (w *Worker) Run(queries <-chan string) {
	for {
		select {
		case <-w.ctx.Done():
			return
		case text, ok := <-queries:
			if !ok {
				return
			}
			start := time.Now()
			if _, _, err := w.Process(text); err != nil {
				w.log.Error().Err(err).Str("query", text).Msg("Failed to process query")
				continue
			}
			w.log.Info().Str("query", text).Dur("elapsed", time.Since(start)).Msg("Query dispatched")
		}
	}
}

// Process parses text and dispatches the result
func (w *Worker) Process(text string) (*parser.Result, []SearchJob, error) {
	res := w.parser.Parse(w.ctx, text, w.useLLM)
	if res.Error != "" {
		return res, nil, errors.NewValidation("", res.Error)
	}
	jobs, err := w.Dispatch(res)
	return res, jobs, err
}

// Dispatch publishes a job for every retailer in res in parallel and then
// trims the streams. Jobs that failed to publish are not returned.
func (w *Worker) Dispatch(res *parser.Result) ([]SearchJob, error) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		jobs []SearchJob
		errs []error
	)

	for _, retailer := range query.Retailers() {
		filters, ok := res.Retailers[retailer]
		if !ok {
			continue
		}
		job := SearchJob{
			ID:        uuid.NewString(),
			Retailer:  retailer,
			Query:     res.Query,
			Filters:   filters,
			Method:    res.Method,
			CreatedAt: w.now().UTC(),
		}

		wg.Add(1)
		go func(job SearchJob) {
			defer wg.Done()
			err := w.publish(job)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			jobs = append(jobs, job)
		}(job)
	}
	wg.Wait()

	// Trim all streams after publishing
	if err := w.publisher.TrimStreams(); err != nil {
		w.log.Warn().Err(err).Msg("Failed to trim streams")
	}

	return jobs, stderrors.Join(errs...)
}

func (w *Worker) publish(job SearchJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return errors.NewPublisher(job.Retailer, "failed to encode search job", err)
	}
	log := logger.ForRetailer(job.Retailer).WithFields(logger.Fields{
		"job_id": job.ID,
		"method": job.Method,
	})
	if err := w.publisher.Publish(job.Retailer, data); err != nil {
		log.WithError(err).Error().Msg("Failed to publish search job")
		return err
	}
	log.Debug().Msg("Search job published")
	return nil
}

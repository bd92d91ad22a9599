// Package batch drives the cross-product of admitted documents and requested
// models through the provider adapters, isolating every attempt so one bad
// document or one vendor outage degrades coverage, never correctness.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rbarros/sentex/internal/cache"
	"github.com/rbarros/sentex/internal/llm"
	"github.com/rbarros/sentex/internal/model"
	"github.com/rbarros/sentex/internal/token"
	"github.com/rbarros/sentex/internal/worker"
)

// Document is one input judgment.
type Document struct {
	ID   string
	Text string
}

// Pair identifies one (document, model) attempt.
type Pair struct {
	DocumentID string `json:"document_id"`
	ModelKey   string `json:"model_key"`
}

// Request configures one batch run.
type Request struct {
	Documents []Document
	Prompt    string
	ModelKeys []string

	// MaxTokens is the admission budget. Documents whose estimated length
	// reaches it are excluded before any call; zero disables the filter.
	MaxTokens int

	// Only, when non-empty, restricts the run to these pairs instead of the
	// full cross-product. Used to re-run the failed subset of a prior batch.
	Only []Pair
}

// Row is one line of the output table, flat for columnar serialization.
type Row struct {
	RunID         string  `parquet:"run_id" json:"run_id"`
	DocumentID    string  `parquet:"document_id" json:"document_id"`
	ModelKey      string  `parquet:"model_key" json:"model_key"`
	ModelName     string  `parquet:"model_name" json:"model_name"`
	Provider      string  `parquet:"provider" json:"provider"`
	InputTokens   int64   `parquet:"input_tokens" json:"input_tokens"`
	OutputTokens  int64   `parquet:"output_tokens" json:"output_tokens"`
	ElapsedSecs   float64 `parquet:"extraction_time_seconds" json:"extraction_time_seconds"`
	Success       bool    `parquet:"success" json:"success"`
	ErrorMessage  string  `parquet:"error_message" json:"error_message"`
	ExtractedData string  `parquet:"extracted_data" json:"extracted_data"`
	CostUSD       float64 `parquet:"cost_usd" json:"cost_usd"`
}

// SkippedDocument records an admission rejection so batch accounting stays
// auditable: admitted plus skipped equals total.
type SkippedDocument struct {
	DocumentID      string `json:"document_id"`
	EstimatedTokens int    `json:"estimated_tokens"`
	MaxTokens       int    `json:"max_tokens"`
}

// Report is the outcome of one run. Rows holds exactly one entry per
// attempted (document, model) pair, sorted by document id then model key.
type Report struct {
	RunID   string
	Rows    []Row
	Skipped []SkippedDocument
	Elapsed time.Duration
}

// FailedPairs returns the pairs to feed back through Request.Only.
func (r *Report) FailedPairs() []Pair {
	var pairs []Pair
	for _, row := range r.Rows {
		if !row.Success {
			pairs = append(pairs, Pair{DocumentID: row.DocumentID, ModelKey: row.ModelKey})
		}
	}
	return pairs
}

// Options carries the orchestrator's tunables and optional collaborators.
type Options struct {
	Workers int
	Limiter *worker.Limiter
	Cache   *cache.ResultCache
	Logger  *slog.Logger
}

// Orchestrator runs extraction batches.
type Orchestrator struct {
	providers map[model.Provider]llm.Provider
	estimator token.Estimator
	limiter   *worker.Limiter
	cache     *cache.ResultCache
	workers   int
	log       *slog.Logger
}

// New builds an orchestrator over the given adapters. The estimator is the
// single reference tokenizer used for both admission filtering and fallback
// accounting on failed attempts.
func New(providers map[model.Provider]llm.Provider, estimator token.Estimator, opts Options) *Orchestrator {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Orchestrator{
		providers: providers,
		estimator: estimator,
		limiter:   opts.Limiter,
		cache:     opts.Cache,
		workers:   workers,
		log:       log,
	}
}

// Run executes the batch. Configuration errors (unknown model key, adapter
// missing for a requested provider, no documents or models) abort before any
// vendor call; everything after dispatch is recovered into failure rows.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()

	if len(req.Documents) == 0 {
		return nil, fmt.Errorf("batch: no documents")
	}
	if len(req.ModelKeys) == 0 {
		return nil, fmt.Errorf("batch: no model keys")
	}

	models := make([]model.ModelConfig, 0, len(req.ModelKeys))
	for _, key := range req.ModelKeys {
		cfg, err := model.LookupModel(key)
		if err != nil {
			return nil, err
		}
		if _, ok := o.providers[cfg.Provider]; !ok {
			return nil, fmt.Errorf("batch: no adapter configured for provider %q (model %q)", cfg.Provider, key)
		}
		models = append(models, cfg)
	}

	admitted, skipped := o.admit(req.Documents, req.MaxTokens)

	runID := uuid.NewString()
	o.log.Info("batch.start",
		"run_id", runID,
		"documents", len(req.Documents),
		"admitted", len(admitted),
		"models", len(models),
		"workers", o.workers,
	)

	only := pairSet(req.Only)

	pool := worker.NewPool(ctx, o.workers)
	pool.Start()

	submitted := 0
	for _, doc := range admitted {
		for _, cfg := range models {
			if only != nil && !only[Pair{DocumentID: doc.ID, ModelKey: cfg.Key}] {
				continue
			}
			pool.Submit(&attemptJob{
				orchestrator: o,
				runID:        runID,
				document:     doc,
				model:        cfg,
				prompt:       req.Prompt,
			})
			submitted++
		}
	}

	results := pool.Wait()

	rows := make([]Row, 0, len(results))
	failures := 0
	for _, res := range results {
		row := res.(*attemptOutcome).row
		if !row.Success {
			failures++
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DocumentID != rows[j].DocumentID {
			return rows[i].DocumentID < rows[j].DocumentID
		}
		return rows[i].ModelKey < rows[j].ModelKey
	})

	elapsed := time.Since(start)
	o.log.Info("batch.done",
		"run_id", runID,
		"rows", len(rows),
		"failures", failures,
		"skipped", len(skipped),
		"elapsed", elapsed.Round(time.Millisecond),
	)

	return &Report{
		RunID:   runID,
		Rows:    rows,
		Skipped: skipped,
		Elapsed: elapsed,
	}, nil
}

// admit applies the token-budget gate.
func (o *Orchestrator) admit(docs []Document, maxTokens int) ([]Document, []SkippedDocument) {
	if maxTokens <= 0 {
		return docs, nil
	}

	var admitted []Document
	var skipped []SkippedDocument
	for _, doc := range docs {
		est := o.estimator.Estimate(doc.Text)
		if est >= maxTokens {
			o.log.Warn("batch.skip", "document", doc.ID, "estimated_tokens", est, "max_tokens", maxTokens)
			skipped = append(skipped, SkippedDocument{
				DocumentID:      doc.ID,
				EstimatedTokens: est,
				MaxTokens:       maxTokens,
			})
			continue
		}
		admitted = append(admitted, doc)
	}
	return admitted, skipped
}

func pairSet(pairs []Pair) map[Pair]bool {
	if len(pairs) == 0 {
		return nil
	}
	set := make(map[Pair]bool, len(pairs))
	for _, p := range pairs {
		set[p] = true
	}
	return set
}

// attemptJob is one (document, model) unit of work.
type attemptJob struct {
	orchestrator *Orchestrator
	runID        string
	document     Document
	model        model.ModelConfig
	prompt       string
}

// attemptOutcome carries the finished row back to the collector.
type attemptOutcome struct {
	row Row
	err error
}

func (r *attemptOutcome) GetError() error { return r.err }

// Execute runs the attempt. Nothing raised inside it may escape: any panic or
// adapter error becomes a failure row that still names the document and model.
func (j *attemptJob) Execute(ctx context.Context) (out worker.Result) {
	o := j.orchestrator
	start := time.Now()
	estInput := o.estimator.Estimate(j.document.Text)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("attempt panicked: %v", r)
			o.log.Error("attempt.panic", "document", j.document.ID, "model", j.model.Key, "panic", r)
			result := model.NewFailureResult(j.model, estInput, time.Since(start).Seconds(), err)
			out = &attemptOutcome{row: j.row(result), err: err}
		}
	}()

	if cached, found := o.cache.Get(j.document.ID, j.model.ModelID, j.prompt); found {
		o.log.Debug("attempt.cached", "document", j.document.ID, "model", j.model.Key)
		return &attemptOutcome{row: j.row(*cached)}
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx, j.model.Provider); err != nil {
			result := model.NewFailureResult(j.model, estInput, time.Since(start).Seconds(), err)
			return &attemptOutcome{row: j.row(result), err: err}
		}
	}

	provider := o.providers[j.model.Provider]
	resp, err := provider.Extract(ctx, llm.ExtractRequest{
		Document: j.document.Text,
		Prompt:   j.prompt,
		Model:    j.model,
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		o.log.Warn("attempt.fail", "document", j.document.ID, "model", j.model.Key, "error", err)
		result := model.NewFailureResult(j.model, estInput, elapsed, err)
		return &attemptOutcome{row: j.row(result), err: err}
	}

	result := model.NewSuccessResult(j.model, resp.InputTokens, resp.OutputTokens, elapsed, resp.Data)
	if cacheErr := o.cache.Put(j.document.ID, j.model.ModelID, j.prompt, &result); cacheErr != nil {
		o.log.Warn("attempt.cache_write_fail", "document", j.document.ID, "error", cacheErr)
	}

	return &attemptOutcome{row: j.row(result)}
}

// row flattens one result into the output table shape.
func (j *attemptJob) row(result model.ExtractionResult) Row {
	var extracted string
	if result.ExtractedData != nil {
		if data, err := json.Marshal(result.ExtractedData); err == nil {
			extracted = string(data)
		}
	}

	return Row{
		RunID:         j.runID,
		DocumentID:    j.document.ID,
		ModelKey:      j.model.Key,
		ModelName:     result.ModelName,
		Provider:      result.Provider,
		InputTokens:   int64(result.InputTokens),
		OutputTokens:  int64(result.OutputTokens),
		ElapsedSecs:   result.ElapsedSecs,
		Success:       result.Success,
		ErrorMessage:  result.ErrorMessage,
		ExtractedData: extracted,
		CostUSD:       j.model.Cost(result.InputTokens, result.OutputTokens),
	}
}

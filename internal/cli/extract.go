package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rbarros/sentex/internal/batch"
	"github.com/rbarros/sentex/internal/cache"
	"github.com/rbarros/sentex/internal/llm"
	"github.com/rbarros/sentex/internal/model"
	"github.com/rbarros/sentex/internal/token"
	"github.com/rbarros/sentex/internal/worker"
)

var (
	promptPath  string
	modelKeys   []string
	maxTokens   int
	concurrency int
	outputPath  string
	idField     string
	textField   string
	skippedOut  string
	noCache     bool
	retryFrom   string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <documents.jsonl>",
	Short: "Run a batch of structured extractions",
	Long: `Extract structured decision data from a JSON Lines batch of judgments.

Every admitted document is sent to every requested model; each attempt
produces exactly one row of the parquet output table, successful or not.
Documents whose estimated token length reaches --max-tokens are skipped
before any API call.

Example:
  sentex extract sentencas.jsonl --prompt prompt.txt --models gpt-4.1,gemini-2.5-pro
  sentex extract sentencas.jsonl --prompt prompt.txt --models gpt-oss-120b --max-tokens 120000
  sentex extract sentencas.jsonl --prompt prompt.txt --models gpt-4.1 --retry-from out/sentencas.parquet`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&promptPath, "prompt", "", "path to the instruction prompt file (required)")
	extractCmd.Flags().StringSliceVar(&modelKeys, "models", nil, "model keys to run (see 'sentex models')")
	extractCmd.Flags().IntVar(&maxTokens, "max-tokens", 120_000, "token budget per document (0 disables the admission filter)")
	extractCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output parquet path (default <output dir>/<input>.parquet)")
	extractCmd.Flags().StringVar(&idField, "id-field", "processo", "JSONL field holding the document identifier")
	extractCmd.Flags().StringVar(&textField, "text-field", "texto", "JSONL field holding the judgment text")
	extractCmd.Flags().StringVar(&skippedOut, "skipped-out", "", "write admission-rejected documents to this JSON file")
	extractCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the attempt-result cache (force fresh calls)")
	extractCmd.Flags().StringVar(&retryFrom, "retry-from", "", "re-run only the failed pairs of a previous run's parquet output")

	_ = extractCmd.MarkFlagRequired("prompt")
	_ = extractCmd.MarkFlagRequired("models")
}

func runExtract(cmd *cobra.Command, args []string) error {
	input := args[0]
	log := newLogger()

	prompt, err := os.ReadFile(promptPath)
	if err != nil {
		return fmt.Errorf("read prompt: %w", err)
	}
	if strings.TrimSpace(string(prompt)) == "" {
		return fmt.Errorf("prompt file %s is empty", promptPath)
	}

	docs, err := batch.ReadDocumentsFile(input, idField, textField)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	// Unknown keys surface here, before any adapter is built.
	needed := make([]model.Provider, 0, len(modelKeys))
	for _, key := range modelKeys {
		mc, err := model.LookupModel(key)
		if err != nil {
			return err
		}
		needed = append(needed, mc.Provider)
	}

	providers, err := llm.NewProviderSet(cfg.Providers, needed, log)
	if err != nil {
		return err
	}

	limiter := worker.NewLimiter(1.0, 2)
	for _, provider := range needed {
		pc := cfg.Providers.For(provider)
		limiter.SetProviderRate(provider, pc.RequestsPerSecond, pc.Burst)
	}

	var resultCache *cache.ResultCache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("find home directory: %w", err)
			}
			dir = filepath.Join(home, ".sentex", "cache")
		}
		resultCache = cache.NewResultCache(cache.NewLayeredStore(cfg.Cache.TTL, dir, cfg.Cache.TTL), cfg.Cache.TTL)
	}

	var estimator token.Estimator
	estimator, err = token.NewTiktokenEstimator()
	if err != nil {
		log.Warn("extract.tokenizer_unavailable", "error", err)
		estimator = token.HeuristicEstimator{}
	}

	req := batch.Request{
		Documents: docs,
		Prompt:    string(prompt),
		ModelKeys: modelKeys,
		MaxTokens: maxTokens,
	}

	if retryFrom != "" {
		prior, err := batch.ReadParquet(retryFrom)
		if err != nil {
			return err
		}
		req.Only = (&batch.Report{Rows: prior}).FailedPairs()
		if len(req.Only) == 0 {
			fmt.Fprintf(os.Stderr, "No failed pairs in %s, nothing to re-run\n", retryFrom)
			return nil
		}
		log.Info("extract.retry", "pairs", len(req.Only), "from", retryFrom)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := batch.New(providers, estimator, batch.Options{
		Workers: cfg.Concurrency.Workers,
		Limiter: limiter,
		Cache:   resultCache,
		Logger:  log,
	})

	report, err := orch.Run(ctx, req)
	if err != nil {
		return err
	}

	out := outputPath
	if out == "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		out = filepath.Join(cfg.Output.Dir, stem+".parquet")
	}
	if err := batch.WriteParquet(out, report.Rows); err != nil {
		return err
	}

	if skippedOut != "" {
		if err := batch.WriteSkipped(skippedOut, report.Skipped); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "✓ %s → %s\n", report.Summary(), out)
	return nil
}

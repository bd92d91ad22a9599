// Package store persists human validation judgments of extraction rows in
// Postgres. The extraction core only reads whether a (document, model) pair
// was already judged; the review tooling writes the records.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Judgment is one scalar validation answer.
type Judgment string

const (
	JudgmentSim          Judgment = "sim"
	JudgmentNao          Judgment = "nao"
	JudgmentNaoAplicavel Judgment = "nao_aplicavel"
)

// ValidationRecord is one reviewed case. The per-claim maps are keyed by the
// claim's index in the extraction's claim list.
type ValidationRecord struct {
	Processo            string
	ModelName           string
	GratuidadeCorrect   Judgment
	DecisionTypeCorrect Judgment
	CustasCorrect       Judgment
	ClaimsListCorrect   Judgment
	ValorTotalCorrect   Judgment
	ClaimOutcomes       map[int]Judgment
	ClaimValues         map[int]Judgment
	ClaimRelevance      map[int]Judgment
	Timestamp           time.Time
}

// DB is the subset of pgxpool.Pool the store uses, split out so tests can
// substitute a fake.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ValidationStore reads and writes the validations table.
type ValidationStore struct {
	db  DB
	log *slog.Logger
}

// New wraps an existing connection or pool.
func New(db DB, log *slog.Logger) *ValidationStore {
	if log == nil {
		log = slog.Default()
	}
	return &ValidationStore{db: db, log: log}
}

// Open connects a pgx pool and returns a store over it. The caller owns the
// pool and closes it when done.
func Open(ctx context.Context, dsn string, log *slog.Logger) (*ValidationStore, *pgxpool.Pool, error) {
	if log == nil {
		log = slog.Default()
	}

	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse dsn: %w", err)
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "sentex"

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}

	log.Info("store.connected")
	return New(pool, log), pool, nil
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS validations (
	id SERIAL PRIMARY KEY,
	processo VARCHAR(255),
	model_name VARCHAR(255),
	gratuidade_correct VARCHAR(50),
	decision_type_correct VARCHAR(50),
	custas_correct VARCHAR(50),
	claims_list_correct VARCHAR(50),
	claim_outcomes TEXT,
	claim_values TEXT,
	claim_relevance TEXT,
	valor_total_decisao_correct VARCHAR(50),
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// Init creates the validations table if it does not exist.
func (s *ValidationStore) Init(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("init validations table: %w", err)
	}
	s.log.Info("store.init")
	return nil
}

// Validated reports whether a (document, model) pair was already judged.
func (s *ValidationStore) Validated(ctx context.Context, processo, modelName string) (bool, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM validations WHERE processo = $1 AND model_name = $2`,
		processo, modelName,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query validated: %w", err)
	}
	return count > 0, nil
}

// ValidatedCases returns the distinct documents judged for one model.
func (s *ValidationStore) ValidatedCases(ctx context.Context, modelName string) (map[string]bool, error) {
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT processo FROM validations WHERE model_name = $1`,
		modelName,
	)
	if err != nil {
		return nil, fmt.Errorf("query validated cases: %w", err)
	}
	defer rows.Close()

	cases := make(map[string]bool)
	for rows.Next() {
		var processo string
		if err := rows.Scan(&processo); err != nil {
			return nil, fmt.Errorf("scan validated case: %w", err)
		}
		cases[processo] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate validated cases: %w", err)
	}
	return cases, nil
}

// SaveValidation appends one validation record. The per-claim maps are stored
// JSON-encoded.
func (s *ValidationStore) SaveValidation(ctx context.Context, rec ValidationRecord) error {
	if rec.Processo == "" || rec.ModelName == "" {
		return fmt.Errorf("save validation: processo and model name are required")
	}

	outcomes, err := encodeClaimMap(rec.ClaimOutcomes)
	if err != nil {
		return fmt.Errorf("save validation: %w", err)
	}
	values, err := encodeClaimMap(rec.ClaimValues)
	if err != nil {
		return fmt.Errorf("save validation: %w", err)
	}
	relevance, err := encodeClaimMap(rec.ClaimRelevance)
	if err != nil {
		return fmt.Errorf("save validation: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO validations (
			processo, model_name, gratuidade_correct, decision_type_correct,
			custas_correct, claims_list_correct, claim_outcomes, claim_values,
			claim_relevance, valor_total_decisao_correct
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.Processo,
		rec.ModelName,
		string(rec.GratuidadeCorrect),
		string(rec.DecisionTypeCorrect),
		string(rec.CustasCorrect),
		string(rec.ClaimsListCorrect),
		outcomes,
		values,
		relevance,
		string(rec.ValorTotalCorrect),
	)
	if err != nil {
		return fmt.Errorf("save validation: %w", err)
	}

	s.log.Info("store.saved", "processo", rec.Processo, "model", rec.ModelName)
	return nil
}

// Count returns the total number of validation records.
func (s *ValidationStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM validations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count validations: %w", err)
	}
	return count, nil
}

// encodeClaimMap serializes a per-claim judgment map with string keys so the
// JSON shape matches what the review tooling reads back.
func encodeClaimMap(m map[int]Judgment) (string, error) {
	byIndex := make(map[string]string, len(m))
	for idx, judgment := range m {
		byIndex[fmt.Sprintf("%d", idx)] = string(judgment)
	}
	data, err := json.Marshal(byIndex)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

const maxLineBytes = 16 * 1024 * 1024

// ReadDocuments reads a JSON Lines batch, pulling the document identifier and
// text from the named fields. Numeric identifiers are stringified; blank
// lines are ignored. A row missing either field is a malformed input, not a
// per-attempt failure, so it aborts the read.
func ReadDocuments(r io.Reader, idField, textField string) ([]Document, error) {
	if idField == "" || textField == "" {
		return nil, fmt.Errorf("read documents: id and text field names are required")
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var docs []Document
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var record map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("read documents: line %d: %w", line, err)
		}

		id, err := stringField(record, idField)
		if err != nil {
			return nil, fmt.Errorf("read documents: line %d: %w", line, err)
		}
		text, err := stringField(record, textField)
		if err != nil {
			return nil, fmt.Errorf("read documents: line %d: %w", line, err)
		}

		docs = append(docs, Document{ID: id, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}

	return docs, nil
}

func stringField(record map[string]json.RawMessage, field string) (string, error) {
	raw, ok := record[field]
	if !ok {
		return "", fmt.Errorf("missing field %q", field)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("field %q is neither string nor number", field)
}

// ReadDocumentsFile is ReadDocuments over a path.
func ReadDocumentsFile(path, idField, textField string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	defer f.Close()

	return ReadDocuments(f, idField, textField)
}

// WriteParquet persists the attempt table in columnar form for the review
// tooling to load later.
func WriteParquet(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}

	writer := parquet.NewGenericWriter[Row](f)
	if _, err := writer.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("write parquet: %w", err)
	}

	return f.Close()
}

// ReadParquet loads a previously written attempt table, mainly so a rerun can
// compute the failed subset from an earlier run's output.
func ReadParquet(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}

	rows, err := parquet.Read[Row](f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}

// WriteSkipped records admission rejections as JSON so admitted-versus-total
// accounting stays auditable.
func WriteSkipped(path string, skipped []SkippedDocument) error {
	if skipped == nil {
		skipped = []SkippedDocument{}
	}

	data, err := json.MarshalIndent(skipped, "", "  ")
	if err != nil {
		return fmt.Errorf("write skipped: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write skipped: %w", err)
	}
	return nil
}

// Summary renders a short human line for logs and CLI output.
func (r *Report) Summary() string {
	failures := len(r.FailedPairs())
	return fmt.Sprintf("%d rows (%d failed), %d skipped, %s",
		len(r.Rows), failures, len(r.Skipped), r.Elapsed.Round(time.Millisecond))
}

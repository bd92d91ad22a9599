package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/rbarros/sentex/internal/model"
	"github.com/rbarros/sentex/internal/schema"
)

// decodePayload validates a vendor's JSON payload against the extraction
// schema and unmarshals it into the typed model. Unmapped taxonomy codes
// surface through the unmarshal step, wrapped but never coerced.
func decodePayload(provider string, payload []byte) (*model.LaborSentenceExtraction, error) {
	if err := schema.Validate(payload); err != nil {
		return nil, &DecodeError{Provider: provider, Err: err}
	}

	var data model.LaborSentenceExtraction
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, &DecodeError{Provider: provider, Err: err}
	}
	return &data, nil
}

// withRetry runs a vendor call with bounded retries on transient failures
// (throttling, server errors). Non-transient failures return immediately.
func withRetry(ctx context.Context, attempts uint, call func() error) error {
	return retry.Do(
		call,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var vendor *VendorError
			return errors.As(err, &vendor) && vendor.Transient()
		}),
	)
}

// timeoutContext applies the per-request timeout on top of the caller's
// context, defaulting to two minutes: judgments are long and slow models
// routinely take over a minute on them.
func timeoutContext(ctx context.Context, seconds int) (context.Context, context.CancelFunc) {
	timeout := time.Duration(seconds) * time.Second
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return context.WithTimeout(ctx, timeout)
}

// defaultRetryAttempts bounds vendor retries per attempt; transient errors
// beyond this become the attempt's failure.
const defaultRetryAttempts = 3

var errEmptyResponse = fmt.Errorf("empty response")

package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/teemow/todoist-mcp/internal/failure"
	"github.com/teemow/todoist-mcp/internal/instrumentation"
)

// Policy decides what happens when one item of a batch fails.
type Policy int

const (
	// FailFast cancels the remaining items on the first error and discards
	// every partial result.
	FailFast Policy = iota
	// CollectPartial runs every item and reports failures alongside successes.
	CollectPartial
)

// String returns the policy name used in metrics and logs.
func (p Policy) String() string {
	if p == CollectPartial {
		return instrumentation.BatchModeCollectPartial
	}
	return instrumentation.BatchModeFailFast
}

// Outcome is the result of a batch run. Succeeded and Failures are both in
// input order. Succeeded holds only the values of successful items.
type Outcome[R any] struct {
	Succeeded []R
	Failures  []failure.Report
}

// Options configures Run.
type Options struct {
	// Tool labels metrics and span events. Optional.
	Tool string
	// Limit bounds concurrent calls. Zero means unbounded.
	Limit int
	// Metrics receives per-item counts. Optional.
	Metrics *instrumentation.Metrics
}

// Run applies fn to every item concurrently. Results are stored by input
// index, so the outcome order matches items regardless of completion order.
//
// With FailFast the first error is returned and the outcome is empty.
// With CollectPartial the error is always nil.
func Run[T, R any](ctx context.Context, policy Policy, items []T, label func(T) string, fn func(context.Context, T) (R, error), opts Options) (Outcome[R], error) {
	instrumentation.RecordBatchSize(ctx, len(items))
	results := make([]R, len(items))
	errs := make([]error, len(items))

	switch policy {
	case CollectPartial:
		var wg sync.WaitGroup
		var sem chan struct{}
		if opts.Limit > 0 {
			sem = make(chan struct{}, opts.Limit)
		}
		for i, item := range items {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if sem != nil {
					sem <- struct{}{}
					defer func() { <-sem }()
				}
				results[i], errs[i] = fn(ctx, item)
			}()
		}
		wg.Wait()

	default:
		g, gctx := errgroup.WithContext(ctx)
		if opts.Limit > 0 {
			g.SetLimit(opts.Limit)
		}
		for i, item := range items {
			g.Go(func() error {
				r, err := fn(gctx, item)
				if err != nil {
					return fmt.Errorf("%s: %w", label(item), err)
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			// partial results are discarded, so every item counts as failed
			opts.Metrics.RecordBatchItems(ctx, opts.Tool, policy.String(), 0, len(items))
			return Outcome[R]{}, err
		}
	}

	var out Outcome[R]
	for i := range items {
		if errs[i] != nil {
			f := failure.New(label(items[i]), errs[i])
			out.Failures = append(out.Failures, f)
			instrumentation.RecordBatchFailure(ctx, f.Item, f.Code)
			continue
		}
		out.Succeeded = append(out.Succeeded, results[i])
	}

	opts.Metrics.RecordBatchItems(ctx, opts.Tool, policy.String(), len(out.Succeeded), len(out.Failures))
	return out, nil
}

// StringList accepts either a single string or an array of strings in
// tool arguments.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*l = nil
			return nil
		}
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("must be a string or array of strings")
	}
	*l = many
	return nil
}

// Validate rejects an empty list and empty elements. name is used in
// error messages.
func (l StringList) Validate(name string) error {
	if len(l) == 0 {
		return fmt.Errorf("%s is required", name)
	}
	for i, s := range l {
		if s == "" {
			return fmt.Errorf("%s[%d] cannot be empty", name, i)
		}
	}
	return nil
}

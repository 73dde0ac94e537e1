package post

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/dropinblog/pkg/dropinblog"
	"github.com/hashicorp-forge/dropinblog/pkg/metrics"
	"github.com/hashicorp-forge/dropinblog/pkg/output"
)

// API is the part of the DropInBlog client the executor calls.
type API interface {
	CreatePost(ctx context.Context, blogID string, body map[string]any) (json.RawMessage, error)
	GetPost(ctx context.Context, blogID, identifier string) (json.RawMessage, error)
	SearchPosts(ctx context.Context, blogID string, query url.Values) (json.RawMessage, error)
}

// FailureMode selects what happens when an item fails.
type FailureMode int

const (
	// Abort stops the batch at the first failing item.
	Abort FailureMode = iota

	// Continue records {"error": message} for a failing item and moves on.
	Continue
)

// ItemError reports the failing item of an aborted batch.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one item: its records, or the error.
type Result struct {
	Item    int
	Records []json.RawMessage
	Err     error
}

// Executor runs post operations one item at a time.
type Executor struct {
	api    API
	mode   FailureMode
	logger hclog.Logger
}

func NewExecutor(api API, mode FailureMode, logger hclog.Logger) *Executor {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Executor{api: api, mode: mode, logger: logger}
}

// Execute runs a single operation and returns its records.
func (e *Executor) Execute(ctx context.Context, op Operation) ([]json.RawMessage, error) {
	var (
		resp json.RawMessage
		err  error
	)

	switch o := op.(type) {
	case Create:
		resp, err = e.api.CreatePost(ctx, o.BlogID, o.Body())
	case Get:
		resp, err = e.api.GetPost(ctx, o.BlogID, o.PostIdentifier)
	case Search:
		resp, err = e.api.SearchPosts(ctx, o.BlogID, o.Query())
	default:
		return nil, fmt.Errorf("unsupported operation %T", op)
	}
	if err != nil {
		return nil, err
	}
	return splitRecords(resp)
}

// RunItem decodes and executes one input item.
func (e *Executor) RunItem(ctx context.Context, index int, item Item) Result {
	res := Result{Item: index}

	op, err := Decode(item)
	if err != nil {
		res.Err = err
		metrics.PostItems.WithLabelValues(operationLabel(item.Operation), "invalid").Inc()
		return res
	}

	res.Records, res.Err = e.Execute(ctx, op)
	outcome := "success"
	if res.Err != nil {
		outcome = "error"
	}
	metrics.PostItems.WithLabelValues(op.Name(), outcome).Inc()
	return res
}

// Run processes items in order and returns the output records. In Abort mode
// the first failure is returned as *ItemError. In Continue mode every failure
// except a credential failure becomes an error record; a credential failure
// would repeat for every remaining item, so it always aborts.
func (e *Executor) Run(ctx context.Context, items []Item) ([]output.Record, error) {
	var records []output.Record

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return records, &ItemError{Index: i, Err: err}
		}

		res := e.RunItem(ctx, i, item)
		if res.Err == nil {
			for _, r := range res.Records {
				records = append(records, output.Record{Item: i, JSON: r})
			}
			continue
		}

		var credErr *dropinblog.CredentialError
		if e.mode == Abort || errors.As(res.Err, &credErr) {
			e.logger.Error("post operation failed", "item", i, "operation", item.Operation, "error", res.Err)
			return records, &ItemError{Index: i, Err: res.Err}
		}

		e.logger.Warn("post operation failed, continuing", "item", i, "operation", item.Operation, "error", res.Err)
		records = append(records, output.Record{Item: i, JSON: errorRecord(res.Err)})
	}

	return records, nil
}

// splitRecords yields one record per element of an array response and one
// record for any other JSON value. An empty body yields no records.
func splitRecords(resp json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(resp)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return []json.RawMessage{trimmed}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("failed to decode array response: %w", err)
	}
	return elems, nil
}

func errorRecord(err error) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return b
}

func operationLabel(name string) string {
	switch name {
	case OpCreate, OpGet, OpSearch:
		return name
	}
	return "unknown"
}

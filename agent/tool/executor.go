package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

// Executor resolves and runs tool requests. It never returns an error: every
// failure is folded into the tool message the planner sees.
type Executor struct {
	registry *Registry
	workers  int
}

var _ contractx.ToolExecutor = (*Executor)(nil)

type ExecutorOption func(*Executor)

// WithWorkers caps how many tools of one batch run concurrently. 1 runs
// them one after another.
func WithWorkers(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{registry: registry, workers: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *Executor) Execute(ctx context.Context, req contractx.ToolInvocationRequest) contractx.ToolOutcome {
	start := time.Now()
	result, err := e.run(ctx, req)
	if err != nil {
		silent := result.Silent
		result = contractx.Failure(err.Error())
		result.Silent = silent
	}
	if result.Status == "" {
		result.Status = contractx.ToolStatusSuccess
	}

	ev := log.Info()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Str("tool", req.Name).
		Str("call_id", req.ID).
		Str("status", string(result.Status)).
		Dur("duration", time.Since(start)).
		Msg("tool executed")

	return contractx.ToolOutcome{
		Message: contractx.ToolMessage(req.ID, req.Name, result.Serialize()),
		Result:  result,
	}
}

// ExecuteAll runs a batch and returns outcomes in request order.
func (e *Executor) ExecuteAll(ctx context.Context, reqs []contractx.ToolInvocationRequest) []contractx.ToolOutcome {
	if len(reqs) == 0 {
		return nil
	}
	mapper := iter.Mapper[contractx.ToolInvocationRequest, contractx.ToolOutcome]{MaxGoroutines: e.workers}
	return mapper.Map(reqs, func(req *contractx.ToolInvocationRequest) contractx.ToolOutcome {
		return e.Execute(ctx, *req)
	})
}

func (e *Executor) run(ctx context.Context, req contractx.ToolInvocationRequest) (result contractx.ToolResult, err error) {
	s, handler, err := e.registry.Resolve(req.Name)
	if err != nil {
		return contractx.ToolResult{}, err
	}
	if req.DecodeErr != nil {
		return contractx.ToolResult{}, fmt.Errorf("%w: %v", contractx.ErrArgumentDecode, req.DecodeErr)
	}
	args := req.Arguments
	if args == nil {
		args = map[string]any{}
	}
	if err := checkArgs(s, args); err != nil {
		return contractx.ToolResult{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			result = contractx.ToolResult{}
			err = fmt.Errorf("%w: %s panicked: %v", contractx.ErrToolExecution, req.Name, r)
		}
	}()

	result, err = handler(ctx, args)
	if err != nil && !errors.Is(err, contractx.ErrArgumentDecode) && !errors.Is(err, contractx.ErrToolExecution) {
		err = fmt.Errorf("%w: %s: %v", contractx.ErrToolExecution, req.Name, err)
	}
	return result, err
}

package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

type deadlinePlanner struct {
	next   Planner
	soft   time.Duration
	hard   time.Duration
	onSlow func()
}

// WithDeadlines calls onSlow once a call passes soft and aborts it with
// ErrPlannerTimeout at hard. A zero duration disables that limit.
func WithDeadlines(next Planner, soft, hard time.Duration, onSlow func()) Planner {
	return &deadlinePlanner{next: next, soft: soft, hard: hard, onSlow: onSlow}
}

func (d *deadlinePlanner) Complete(ctx context.Context, transcript contractx.Transcript, tools []*schema.ToolInfo) (contractx.PlannerResponse, error) {
	if d.hard > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.hard)
		defer cancel()
	}
	if d.soft > 0 && d.onSlow != nil {
		timer := time.AfterFunc(d.soft, d.onSlow)
		defer timer.Stop()
	}

	resp, err := d.next.Complete(ctx, transcript, tools)
	if err != nil && !errors.Is(err, contractx.ErrPlannerTimeout) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return contractx.PlannerResponse{}, fmt.Errorf("%w: no reply within %s: %v", contractx.ErrPlannerTimeout, d.hard, err)
	}
	return resp, err
}

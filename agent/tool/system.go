package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
	"github.com/tanpawarit/ultra-assistant/pkg/osctl"
)

type systemVolumeArgs struct {
	VolumeLevel int `json:"volume_level"`
}

type datetimeArgs struct {
	Mode string `json:"mode"`
}

type controlPCArgs struct {
	Action string `json:"action"`
	Delay  int    `json:"delay"`
}

func (h *handlers) systemVolume(ctx context.Context, args systemVolumeArgs) (contractx.ToolResult, error) {
	if h.deps.System == nil {
		return notConfigured("system control"), nil
	}
	level := osctl.ClampVolume(args.VolumeLevel)
	if err := h.deps.System.SetVolume(ctx, level); err != nil {
		return contractx.ToolResult{}, err
	}
	return contractx.Success(map[string]int{"volume_level": level}).
		WithMessage(fmt.Sprintf("System volume set to %d%%", level)), nil
}

func (h *handlers) currentDatetime(_ context.Context, args datetimeArgs) (contractx.ToolResult, error) {
	now := h.deps.Now()
	date := now.Format("2006-01-02")
	clock := now.Format("03:04:05 PM")

	var value, label string
	switch strings.ToLower(strings.TrimSpace(args.Mode)) {
	case "date":
		value, label = date, "today's date"
	case "time":
		value, label = clock, "the current time"
	default:
		value, label = date+" "+clock, "today's date and time"
	}
	return contractx.Success(map[string]string{"datetime": value}).
		WithMessage("This is " + label + "; use it only if relevant to the question."), nil
}

func (h *handlers) controlPC(ctx context.Context, args controlPCArgs) (contractx.ToolResult, error) {
	if h.deps.System == nil {
		return notConfigured("system control"), nil
	}
	action := osctl.PowerAction(strings.ToLower(strings.TrimSpace(args.Action)))
	delay := time.Duration(max(0, args.Delay)) * time.Second
	if err := h.deps.System.Power(ctx, action, delay); err != nil {
		return contractx.ToolResult{}, err
	}
	return contractx.Success(map[string]string{"action": string(action)}).
		WithMessage(fmt.Sprintf("PC %s command executed", action)), nil
}

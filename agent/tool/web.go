package tool

import (
	"context"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

type searchArgs struct {
	Query string `json:"searchquery"`
}

type weatherArgs struct {
	Location string `json:"location"`
	Unit     string `json:"unit"`
}

func (h *handlers) searchGoogle(ctx context.Context, args searchArgs) (contractx.ToolResult, error) {
	if h.deps.Search == nil {
		return notConfigured("web search"), nil
	}
	res, err := h.deps.Search.Search(ctx, args.Query)
	if err != nil {
		return contractx.Failure("An error occurred during search: " + err.Error()), nil
	}
	return contractx.Success(map[string]any{"website_content": res}), nil
}

func (h *handlers) currentWeather(ctx context.Context, args weatherArgs) (contractx.ToolResult, error) {
	if h.deps.Weather == nil {
		return notConfigured("weather"), nil
	}
	report, err := h.deps.Weather.Current(ctx, args.Location, args.Unit)
	if err != nil {
		return contractx.Failure("Unable to retrieve the current weather. Try again in a few seconds."), nil
	}
	return contractx.Success(report), nil
}

package tool

import (
	"context"
	"strings"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

const memoryTimeLayout = "2006-01-02 15:04:05"

type memoryArgs struct {
	Operation string `json:"operation"`
	Data      string `json:"data"`
}

type memoryItem struct {
	Data         string `json:"data"`
	StoreTime    string `json:"store_time"`
	RetrieveTime string `json:"retrieve_time,omitempty"`
}

func (h *handlers) personalMemory(ctx context.Context, args memoryArgs) (contractx.ToolResult, error) {
	store := h.deps.Memory
	if store == nil {
		return notConfigured("memory"), nil
	}

	switch strings.ToLower(strings.TrimSpace(args.Operation)) {
	case "store":
		if strings.TrimSpace(args.Data) == "" {
			return contractx.Failure("data is required to store a memory"), nil
		}
		rec, err := store.Store(ctx, args.Data)
		if err != nil {
			return contractx.ToolResult{}, err
		}
		return contractx.Success(map[string]any{"stored": args.Data}).
			WithMessage("Data stored successfully on " + rec.StoreTime.Format(memoryTimeLayout)), nil

	case "retrieve":
		records, err := store.Retrieve(ctx)
		if err != nil {
			return contractx.ToolResult{}, err
		}
		if len(records) == 0 {
			return contractx.Success([]memoryItem{}).WithMessage("No data stored yet"), nil
		}
		items := make([]memoryItem, len(records))
		for i, r := range records {
			items[i] = memoryItem{Data: r.Data, StoreTime: r.StoreTime.Format(memoryTimeLayout)}
			if r.RetrieveTime != nil {
				items[i].RetrieveTime = r.RetrieveTime.Format(memoryTimeLayout)
			}
		}
		msg := "Data retrieved"
		if rt := records[0].RetrieveTime; rt != nil {
			msg += " on " + rt.Format(memoryTimeLayout)
		}
		return contractx.Success(items).WithMessage(msg), nil

	case "clear":
		if err := store.Clear(ctx); err != nil {
			return contractx.ToolResult{}, err
		}
		return contractx.Success(nil).WithMessage("Memory cleared successfully"), nil
	}
	return contractx.Failure("unknown memory operation " + args.Operation), nil
}

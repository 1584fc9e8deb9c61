package tool

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/cloudwego/eino/schema"
	"github.com/mitchellh/mapstructure"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

// Bind decodes planner arguments into a struct using its json tags.
// Numeric strings and whole floats are accepted for integer fields.
func Bind(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrArgumentDecode, err)
	}
	return nil
}

// Typed adapts a handler taking a bound argument struct.
func Typed[T any](fn func(ctx context.Context, args T) (contractx.ToolResult, error)) Handler {
	return func(ctx context.Context, raw map[string]any) (contractx.ToolResult, error) {
		var args T
		if err := Bind(raw, &args); err != nil {
			return contractx.ToolResult{}, err
		}
		return fn(ctx, args)
	}
}

// checkArgs enforces required parameters, primitive types and enums.
// Unknown keys are ignored.
func checkArgs(s Schema, args map[string]any) error {
	for key, p := range s.Params {
		v, ok := args[key]
		if !ok || v == nil {
			if p.Required {
				return fmt.Errorf("%w: missing required argument %q", contractx.ErrArgumentDecode, key)
			}
			continue
		}
		if !matchesType(p.Type, v) {
			return fmt.Errorf("%w: argument %q must be %s, got %T", contractx.ErrArgumentDecode, key, p.Type, v)
		}
		if len(p.Enum) > 0 {
			str, _ := v.(string)
			if !slices.Contains(p.Enum, str) {
				return fmt.Errorf("%w: argument %q must be one of %v", contractx.ErrArgumentDecode, key, p.Enum)
			}
		}
	}
	return nil
}

func matchesType(t schema.DataType, v any) bool {
	switch t {
	case schema.String:
		_, ok := v.(string)
		return ok
	case schema.Boolean:
		_, ok := v.(bool)
		return ok
	case schema.Number:
		switch v.(type) {
		case float64, float32, int, int64, int32:
			return true
		}
		return false
	case schema.Integer:
		switch n := v.(type) {
		case int, int64, int32:
			return true
		case float64:
			return n == math.Trunc(n)
		case float32:
			return float64(n) == math.Trunc(float64(n))
		}
		return false
	case schema.Array:
		switch v.(type) {
		case []any, []string:
			return true
		}
		return false
	case schema.Object:
		_, ok := v.(map[string]any)
		return ok
	default:
		return true
	}
}

package tool

import (
	"context"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"2+2", "4"},
		{"2 + 3 * (4 - 1)", "11"},
		{"2**10", "1024"},
		{"-2^2", "-4"},
		{"sqrt(16) + abs(-3)", "7"},
		{"2pi", "6.2831853072"},
		{"10 / 4", "2.5"},
		{"7 % 3", "1"},
		{"2x + 3 = 7", "x = 2"},
		{"x^2 = 16", "x = -4, x = 4"},
		{"3(y - 1) = 2y", "y = 3"},
		{"1 + 1 = 2", "true"},
	}
	for _, tc := range tests {
		got, err := calculate(tc.in)
		if err != nil {
			t.Fatalf("calculate(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("calculate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCalculateErrors(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"",
		"1 / 0",
		"2 + abc",
		"(1 + 2",
		"x + y = 3",
		"x^2 = -1",
		"1 = 2 = 3",
		"rm -rf /",
		"sqrt(-4)",
	} {
		if got, err := calculate(in); err == nil {
			t.Fatalf("calculate(%q) = %q, expected error", in, got)
		}
	}
}

func TestExecuteCalculatorMultipleTasks(t *testing.T) {
	t.Parallel()

	res, err := executeCalculator(context.Background(), calculatorArgs{Input: "2+2, 1/0, x - 1 = 4"})
	if err != nil {
		t.Fatalf("executeCalculator() error = %v", err)
	}
	if res.Status != contractx.ToolStatusSuccess {
		t.Fatalf("unexpected status: %s", res.Status)
	}
	out, ok := res.Payload.(CalculatorOutput)
	if !ok {
		t.Fatalf("unexpected payload type: %T", res.Payload)
	}
	if len(out.Results) != 3 {
		t.Fatalf("expected 3 results, got %+v", out.Results)
	}
	if out.Results[0].Result != "4" || out.Results[1].Error == "" || out.Results[2].Result != "x = 5" {
		t.Fatalf("unexpected results: %+v", out.Results)
	}
	if !strings.Contains(out.Summary, "Result of '2+2' is 4.") {
		t.Fatalf("unexpected summary: %q", out.Summary)
	}
}

func TestExecuteCalculatorAllFailed(t *testing.T) {
	t.Parallel()

	res, err := executeCalculator(context.Background(), calculatorArgs{Input: "2 + abc"})
	if err != nil {
		t.Fatalf("executeCalculator() error = %v", err)
	}
	if res.Status != contractx.ToolStatusError || res.Message == "" {
		t.Fatalf("expected failed result, got %+v", res)
	}
}

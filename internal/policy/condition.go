package policy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedCondition = errors.New("malformed condition")

type Operator string

const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
)

// Condition is the parsed form of a policy condition string
// "<metric-substring> <operator> <threshold>". Parsing happens once at policy
// load time so evaluation never touches the raw string.
type Condition struct {
	Metric    string
	Op        Operator
	Threshold float64
}

func ParseCondition(raw string) (Condition, error) {
	parts := strings.Fields(raw)
	if len(parts) != 3 {
		return Condition{}, fmt.Errorf("%w: want 3 tokens, got %d in %q", ErrMalformedCondition, len(parts), raw)
	}

	op := Operator(parts[1])
	switch op {
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpEqual:
	default:
		return Condition{}, fmt.Errorf("%w: unknown operator %q", ErrMalformedCondition, parts[1])
	}

	threshold, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Condition{}, fmt.Errorf("%w: non-numeric threshold %q", ErrMalformedCondition, parts[2])
	}

	return Condition{Metric: parts[0], Op: op, Threshold: threshold}, nil
}

// Matches reports whether the condition applies to an observed metric name and
// value. The metric test is substring containment, not an exact match, so a
// condition on "latency" also matches "latency_p99".
func (c Condition) Matches(metricName string, value float64) bool {
	if c.Metric == "" {
		return false
	}
	if !strings.Contains(metricName, c.Metric) {
		return false
	}

	switch c.Op {
	case OpGreater:
		return value > c.Threshold
	case OpLess:
		return value < c.Threshold
	case OpGreaterEqual:
		return value >= c.Threshold
	case OpLessEqual:
		return value <= c.Threshold
	case OpEqual:
		return value == c.Threshold
	default:
		return false
	}
}

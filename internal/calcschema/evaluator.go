package calcschema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Schema is an auto-scoring rule: a nested condition group evaluated
// against response data, mapped to a pass/fail output status.
type Schema struct {
	Root               Group  `json:"root"`
	OutputStatusOnPass string `json:"output_status_on_pass,omitempty"`
	OutputStatusOnFail string `json:"output_status_on_fail,omitempty"`
}

type Group struct {
	Logic      string      `json:"logic"` // AND | OR
	Conditions []Condition `json:"conditions,omitempty"`
	Groups     []Group     `json:"groups,omitempty"`
}

type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
}

// Result of a dry run or live evaluation.
type Result struct {
	EvaluationResult bool   `json:"evaluation_result"`
	Result           string `json:"result"`
	Explanation      string `json:"explanation"`
}

func Parse(raw []byte) (*Schema, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("calculation schema is empty")
	}
	var s Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse calculation schema: %w", err)
	}
	return &s, nil
}

// Evaluate runs the rule against response data. AND/OR short-circuit; a
// condition referencing a missing field fails. The explanation names the
// conditions that drove the outcome.
func Evaluate(s *Schema, data map[string]any) Result {
	passed, drivers := evalGroup(s.Root, data)

	status := s.OutputStatusOnPass
	if status == "" {
		status = "Pass"
	}
	failStatus := s.OutputStatusOnFail
	if failStatus == "" {
		failStatus = "Fail"
	}

	res := Result{EvaluationResult: passed}
	if passed {
		res.Result = status
		res.Explanation = "all rule conditions satisfied"
		if len(drivers) > 0 {
			res.Explanation = "satisfied by: " + strings.Join(drivers, "; ")
		}
	} else {
		res.Result = failStatus
		res.Explanation = "failed conditions: " + strings.Join(drivers, "; ")
	}
	return res
}

// evalGroup returns the group outcome and the conditions that drove it:
// the failing conditions for AND, the satisfying condition for OR.
func evalGroup(g Group, data map[string]any) (bool, []string) {
	logic := strings.ToUpper(strings.TrimSpace(g.Logic))
	if logic == "" {
		logic = "AND"
	}

	switch logic {
	case "OR":
		var failures []string
		for _, c := range g.Conditions {
			if evalCondition(c, data) {
				return true, []string{describe(c)}
			}
			failures = append(failures, describe(c))
		}
		for _, sub := range g.Groups {
			if ok, drivers := evalGroup(sub, data); ok {
				return true, drivers
			} else {
				failures = append(failures, drivers...)
			}
		}
		return false, failures
	default: // AND
		for _, c := range g.Conditions {
			if !evalCondition(c, data) {
				return false, []string{describe(c)}
			}
		}
		for _, sub := range g.Groups {
			if ok, drivers := evalGroup(sub, data); !ok {
				return false, drivers
			}
		}
		return true, nil
	}
}

func evalCondition(c Condition, data map[string]any) bool {
	actual, present := data[c.Field]

	switch c.Operator {
	case "is_empty":
		return !present || actual == nil || actual == ""
	case "is_not_empty":
		return present && actual != nil && actual != ""
	}

	// A missing or null field reference fails every other operator.
	if !present || actual == nil {
		return false
	}

	switch c.Operator {
	case "equals", "":
		return looseEqual(actual, c.Value)
	case "not_equals":
		return !looseEqual(actual, c.Value)
	case "greater_than":
		return compareNumeric(actual, c.Value, func(a, b float64) bool { return a > b })
	case "less_than":
		return compareNumeric(actual, c.Value, func(a, b float64) bool { return a < b })
	case "greater_than_or_equal":
		return compareNumeric(actual, c.Value, func(a, b float64) bool { return a >= b })
	case "less_than_or_equal":
		return compareNumeric(actual, c.Value, func(a, b float64) bool { return a <= b })
	case "contains":
		a, okA := actual.(string)
		b, okB := c.Value.(string)
		return okA && okB && strings.Contains(a, b)
	}
	return false
}

// looseEqual compares as numbers when both sides are numeric, otherwise as
// strings, matching how rule values survive JSON round trips.
func looseEqual(a, b any) bool {
	if fa, okA := asFloat(a); okA {
		if fb, okB := asFloat(b); okB {
			return fa == fb
		}
	}
	return stringify(a) == stringify(b)
}

func compareNumeric(a, b any, cmp func(a, b float64) bool) bool {
	fa, okA := asFloat(a)
	fb, okB := asFloat(b)
	if !okA || !okB {
		return false
	}
	return cmp(fa, fb)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func describe(c Condition) string {
	op := c.Operator
	if op == "" {
		op = "equals"
	}
	if op == "is_empty" || op == "is_not_empty" {
		return fmt.Sprintf("%s %s", c.Field, op)
	}
	return fmt.Sprintf("%s %s %v", c.Field, op, c.Value)
}

package interview

import (
	"encoding/json"
	"strings"
)

// maxQuestions caps how many lines of the model response become questions,
// whatever the prompt asked for.
const maxQuestions = 5

// evaluation is the parsed verdict on one candidate answer.
type evaluation struct {
	Clarity  bool
	Mistake  string
	FollowUp bool
	Strength string
	Weakness string
}

// parseQuestions splits a model response into questions: one per non-empty
// line, with leading numbering and list punctuation stripped, keeping at
// most maxQuestions.
func parseQuestions(response string) []string {
	var questions []string

	for _, line := range strings.Split(response, "\n") {
		clean := stripNumbering(line)
		if clean == "" {
			continue
		}

		questions = append(questions, clean)
		if len(questions) == maxQuestions {
			break
		}
	}

	return questions
}

// stripNumbering removes leading numerals, periods, parens, and list bullets
// from a question line.
func stripNumbering(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "0123456789.)-* \t")
	return strings.TrimSpace(line)
}

// parseEvaluation decodes the model's verdict. The primary contract is a
// JSON object; when that is absent or malformed it falls back to the legacy
// labeled-line format ("Strength:", "Weakness:", "FollowUp: yes").
func parseEvaluation(response string) evaluation {
	if eval, ok := parseEvaluationJSON(response); ok {
		return eval
	}
	return parseEvaluationLines(response)
}

// parseEvaluationJSON extracts the first JSON object from the response and
// coerces its fields.
func parseEvaluationJSON(response string) (evaluation, bool) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return evaluation{}, false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(response[start:end+1]), &data); err != nil {
		return evaluation{}, false
	}

	return evaluation{
		Clarity:  coerceBool(data["clarity"]),
		Mistake:  coerceString(data["mistake"]),
		FollowUp: coerceBool(data["followup"]),
		Strength: coerceString(data["strength"]),
		Weakness: coerceString(data["weakness"]),
	}, true
}

// parseEvaluationLines scans the response line by line for the legacy
// labeled format. Prefix matching is case-insensitive; the stored values
// keep their original casing, trimmed.
func parseEvaluationLines(response string) evaluation {
	var eval evaluation

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, "strength"):
			eval.Strength = trimLabel(line)
		case strings.HasPrefix(lower, "weakness"):
			eval.Weakness = trimLabel(line)
		}

		if strings.Contains(lower, "followup: yes") {
			eval.FollowUp = true
		}
	}

	return eval
}

// trimLabel drops everything up to and including the first colon.
func trimLabel(line string) string {
	if idx := strings.Index(line, ":"); idx != -1 {
		line = line[idx+1:]
	}
	return strings.TrimSpace(line)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceString(v any) string {
	if val, ok := v.(string); ok {
		return strings.TrimSpace(val)
	}
	return ""
}

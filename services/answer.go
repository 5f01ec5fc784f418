package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/itish2003/supportbot/models"
)

// NoAnswer replaces a missing answer field in the model's reply.
const NoAnswer = "(no answer)"

// ErrMalformedAnswer is returned when the completion reply is not a JSON object.
var ErrMalformedAnswer = errors.New("malformed completion reply")

// ParseStructuredAnswer decodes the model's JSON reply. Only a reply that is
// not a JSON object is an error; missing or mistyped fields come back nil.
func ParseStructuredAnswer(raw string) (*models.StructuredAnswer, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: reply is null", ErrMalformedAnswer)
	}

	out := &models.StructuredAnswer{}
	if v, ok := fields["answer"]; ok {
		var s string
		if json.Unmarshal(v, &s) == nil && !isNull(v) {
			out.Answer = &s
		}
	}
	if v, ok := fields["confidence"]; ok {
		var f float64
		if json.Unmarshal(v, &f) == nil && !isNull(v) {
			out.Confidence = &f
		}
	}
	if v, ok := fields["citations"]; ok {
		out.Citations = parseCitations(v)
	}
	return out, nil
}

// parseCitations keeps integral numbers and ignores every other element. A
// value that is not an array yields no citations.
func parseCitations(raw json.RawMessage) []int {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	citations := make([]int, 0, len(items))
	for _, item := range items {
		var f float64
		if err := json.Unmarshal(item, &f); err != nil || isNull(item) {
			continue
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			continue
		}
		citations = append(citations, int(f))
	}
	return citations
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

// ReconcileCitations filters sources down to the ranks the model cited.
// Source order is preserved; unknown ranks are dropped.
func ReconcileCitations(sources []models.Source, cited []int) []models.Source {
	used := make(map[int]struct{}, len(cited))
	for _, n := range cited {
		used[n] = struct{}{}
	}
	pretty := make([]models.Source, 0, len(used))
	for _, s := range sources {
		if _, ok := used[s.N]; ok {
			pretty = append(pretty, s)
		}
	}
	return pretty
}

// BuildResponse applies field defaults and citation reconciliation to a
// parsed reply.
func BuildResponse(answer *models.StructuredAnswer, sources []models.Source) *models.AskResponse {
	resp := &models.AskResponse{
		Answer:    NoAnswer,
		Citations: ReconcileCitations(sources, answer.Citations),
	}
	if answer.Answer != nil {
		resp.Answer = *answer.Answer
	}
	if answer.Confidence != nil {
		resp.Confidence = clamp01(*answer.Confidence)
	}
	return resp
}

func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

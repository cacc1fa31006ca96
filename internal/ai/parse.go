package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/amishk599/jobradar/internal/model"
)

// ErrInvalidReply reports a reply that is not JSON or does not match the
// expected shape.
var ErrInvalidReply = errors.New("invalid scoring reply")

// cleanJSONBlock strips a surrounding markdown code fence, if any.
func cleanJSONBlock(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// validate decodes raw into a generic document and checks it against schema.
func validate(raw string, schema map[string]any) (map[string]any, error) {
	cleaned := cleanJSONBlock(raw)

	var doc map[string]any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}

	res, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate reply: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidReply, strings.Join(msgs, "; "))
	}
	return doc, nil
}

// rawAnalysis is the JSON shape returned by the model (matches fitSchema).
type rawAnalysis struct {
	FitScore          float64 `json:"fit_score"`
	Category          string  `json:"category"`
	Justification     string  `json:"justification"`
	PositioningAdvice string  `json:"positioning_advice"`
	JobTitle          string  `json:"job_title"`
}

// parseAnalysis validates a fit reply and maps it onto model.Analysis.
// Unknown categories are coerced to Hybrid.
func parseAnalysis(raw string) (model.Analysis, bool, error) {
	if _, err := validate(raw, fitSchema); err != nil {
		return model.Analysis{}, false, err
	}

	var ra rawAnalysis
	if err := json.Unmarshal([]byte(cleanJSONBlock(raw)), &ra); err != nil {
		return model.Analysis{}, false, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	if ra.FitScore != math.Trunc(ra.FitScore) || ra.FitScore < 0 || ra.FitScore > 100 {
		return model.Analysis{}, false, fmt.Errorf("%w: fit_score %v out of range", ErrInvalidReply, ra.FitScore)
	}

	a := model.Analysis{
		FitScore:          int(ra.FitScore),
		Category:          ra.Category,
		Justification:     ra.Justification,
		PositioningAdvice: ra.PositioningAdvice,
		ExtractedTitle:    strings.TrimSpace(ra.JobTitle),
	}

	coerced := false
	switch a.Category {
	case model.CategoryAITech, model.CategorySustainability, model.CategoryHybrid:
	default:
		a.Category = model.CategoryHybrid
		coerced = true
	}
	return a, coerced, nil
}

// parseLocation validates a location reply and normalizes is_us and
// confidence.
func parseLocation(raw string) (*model.LocationAnalysis, error) {
	doc, err := validate(raw, locationSchema)
	if err != nil {
		return nil, err
	}

	return &model.LocationAnalysis{
		LocationText: stringField(doc, "location_text"),
		Country:      stringField(doc, "country"),
		Region:       stringField(doc, "region"),
		IsUS:         normalizeIsUS(doc["is_us"]),
		Confidence:   clampConfidence(doc["confidence"]),
		Evidence:     stringField(doc, "evidence"),
	}, nil
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

func normalizeIsUS(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "us", "usa":
			return "true"
		case "false", "no", "non-us", "non us":
			return "false"
		}
	}
	return "unknown"
}

func clampConfidence(v any) float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return 0
	}
	return math.Max(0, math.Min(f, 1))
}

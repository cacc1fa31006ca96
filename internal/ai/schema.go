package ai

// fitSchema is the scoring reply shape. It is sent to providers that support
// structured outputs and checked locally against every reply.
var fitSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"fit_score":          map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"category":           map[string]any{"type": "string"},
		"justification":      map[string]any{"type": "string"},
		"positioning_advice": map[string]any{"type": "string"},
		"job_title":          map[string]any{"type": "string"},
	},
	"required": []string{"fit_score", "category", "justification", "positioning_advice"},
}

// locationSchema is the location classifier reply shape. is_us and
// confidence are loosely typed and normalized after decoding.
var locationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"location_text": map[string]any{"type": "string"},
		"country":       map[string]any{"type": "string"},
		"region":        map[string]any{"type": "string"},
		"is_us":         map[string]any{"type": []string{"boolean", "string", "null"}},
		"confidence":    map[string]any{},
		"evidence":      map[string]any{"type": "string"},
	},
	"required": []string{"location_text", "country", "region", "is_us", "confidence"},
}

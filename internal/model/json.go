package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

const analysisSuffix = "_analysis"

type analyzedJobFields struct {
	ScrapedJob
	JobID            string            `json:"job_id"`
	DaysOld          int               `json:"days_old"`
	LocationAnalysis *LocationAnalysis `json:"location_analysis,omitempty"`
}

// MarshalJSON flattens per-track analyses into "<track>_analysis" keys.
func (j AnalyzedJob) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(analyzedJobFields{
		ScrapedJob:       j.ScrapedJob,
		JobID:            j.JobID,
		DaysOld:          j.DaysOld,
		LocationAnalysis: j.LocationAnalysis,
	})
	if err != nil {
		return nil, err
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for track, a := range j.Analyses {
		raw, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("marshal %s analysis: %w", track, err)
		}
		fields[track+analysisSuffix] = raw
	}
	return json.Marshal(fields)
}

// UnmarshalJSON collects every "<track>_analysis" key back into Analyses.
func (j *AnalyzedJob) UnmarshalJSON(data []byte) error {
	var base analyzedJobFields
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*j = AnalyzedJob{
		ScrapedJob:       base.ScrapedJob,
		JobID:            base.JobID,
		DaysOld:          base.DaysOld,
		LocationAnalysis: base.LocationAnalysis,
		Analyses:         make(map[string]Analysis),
	}
	for key, raw := range fields {
		if key == "location"+analysisSuffix || !strings.HasSuffix(key, analysisSuffix) {
			continue
		}
		var a Analysis
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("unmarshal %s: %w", key, err)
		}
		j.Analyses[strings.TrimSuffix(key, analysisSuffix)] = a
	}
	return nil
}

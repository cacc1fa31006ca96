package model

import "fmt"

// Usage accumulates scoring-service consumption. Each scoring call returns
// its own Usage and the caller folds them together with Add.
type Usage struct {
	Calls        int     `json:"calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// Add returns the sum of u and o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		Calls:        u.Calls + o.Calls,
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
		CostUSD:      u.CostUSD + o.CostUSD,
	}
}

func (u Usage) String() string {
	return fmt.Sprintf("%d calls, %d in / %d out tokens, $%.4f", u.Calls, u.InputTokens, u.OutputTokens, u.CostUSD)
}

package core

// Data-sufficiency thresholds. The values are empirically tuned and preserved
// for behavioral compatibility; treat them as tunable constants, not
// load-bearing design.
const (
	ConfidenceHigh     = 0.9 // five or more local results
	ConfidenceGood     = 0.7 // three or four local results
	ConfidenceModerate = 0.5 // one or two local results
	ConfidenceLow      = 0.2 // no local results
	WebSearchBoost     = 0.3 // additive per successful web search round
	ConfidenceCeiling  = 1.0
)

// DataSufficiency is a derived signal tracking how well the evidence gathered
// so far supports answering the current query. It is updated as tool rounds
// complete and read by agents when deciding whether to hedge an answer or
// request a web search.
type DataSufficiency struct {
	ConfidenceLevel  float64 `json:"confidence_level"`
	WebSearchNeeded  bool    `json:"web_search_needed"`
	LocalResultCount int     `json:"local_result_count"`
}

// ApplyLocalResults resets the sufficiency signal from a local-search round.
// Local searches establish the baseline; each call replaces the previous
// assessment rather than accumulating.
func (d *DataSufficiency) ApplyLocalResults(count int) {
	d.LocalResultCount = count
	d.WebSearchNeeded = false

	switch {
	case count >= 5:
		d.ConfidenceLevel = ConfidenceHigh
	case count >= 3:
		d.ConfidenceLevel = ConfidenceGood
	case count >= 1:
		d.ConfidenceLevel = ConfidenceModerate
	default:
		d.ConfidenceLevel = ConfidenceLow
		d.WebSearchNeeded = true
	}
}

// ApplyWebResults raises confidence additively after a web-search round. Web
// results supplement rather than replace the local baseline, so the boost
// stacks up to the ceiling. A round returning results clears the
// web-search-needed flag.
func (d *DataSufficiency) ApplyWebResults(count int) {
	if count <= 0 {
		return
	}

	d.ConfidenceLevel += WebSearchBoost
	if d.ConfidenceLevel > ConfidenceCeiling {
		d.ConfidenceLevel = ConfidenceCeiling
	}
	d.WebSearchNeeded = false
}

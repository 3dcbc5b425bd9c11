package scoring

// Trend summarizes the overall movement between two assessments.
type Trend string

const (
	TrendFirst       Trend = "first_assessment"
	TrendSignificant Trend = "significant_improvement"
	TrendSteady      Trend = "steady_improvement"
	TrendStable      Trend = "stable"
	TrendSlight      Trend = "slight_decline"
	TrendAttention   Trend = "needs_attention"
)

var trendLabels = map[Trend]string{
	TrendFirst:       "初次评估",
	TrendSignificant: "显著进步",
	TrendSteady:      "稳步提升",
	TrendStable:      "保持稳定",
	TrendSlight:      "轻微下降",
	TrendAttention:   "需要关注",
}

// Label returns the learner-facing label for the trend.
func (t Trend) Label() string { return trendLabels[t] }

// areaThreshold is the per-style change that counts as improved or declined.
const areaThreshold = 5.0

// Progress compares the latest assessment with the one before it.
type Progress struct {
	Current  map[string]float64 `json:"current_stats"`
	Changes  map[string]float64 `json:"changes,omitempty"`
	Trend    Trend              `json:"trend"`
	Improved []string           `json:"improved_areas"`
	Declined []string           `json:"declined_areas"`
}

// CompareProgress computes per-style deltas between latest and previous.
// A nil previous means this is the learner's first assessment.
func CompareProgress(latest Vector, previous *Vector) Progress {
	p := Progress{
		Current:  styleMap(latest),
		Improved: []string{},
		Declined: []string{},
	}
	if previous == nil {
		p.Trend = TrendFirst
		return p
	}

	p.Changes = make(map[string]float64, len(Styles))
	var total float64
	for _, s := range Styles {
		d := latest.Get(s) - previous.Get(s)
		p.Changes[s] = d
		total += d
		switch {
		case d >= areaThreshold:
			p.Improved = append(p.Improved, s)
		case d <= -areaThreshold:
			p.Declined = append(p.Declined, s)
		}
	}

	switch {
	case total > 10:
		p.Trend = TrendSignificant
	case total > 0:
		p.Trend = TrendSteady
	case total == 0:
		p.Trend = TrendStable
	case total > -10:
		p.Trend = TrendSlight
	default:
		p.Trend = TrendAttention
	}
	return p
}

func styleMap(v Vector) map[string]float64 {
	m := make(map[string]float64, len(Styles))
	for _, s := range Styles {
		m[s] = v.Get(s)
	}
	return m
}

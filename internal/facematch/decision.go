package facematch

// RiskBand classifies review priority. Triage only: it never gates the
// pass/fail decision.
type RiskBand string

const (
	RiskLow    RiskBand = "low"
	RiskMedium RiskBand = "medium"
	RiskHigh   RiskBand = "high"
)

// MatchResult is the raw scoring output: a match score and a risk score,
// both on a 0-100 scale (higher risk score = riskier).
type MatchResult struct {
	MatchScore float64
	RiskScore  float64
}

// Decision is the rendered verification outcome. Passed=false is a
// successful computation with a negative result, propagated as data so the
// wizard can carry the case forward to manual review.
type Decision struct {
	MatchScore float64
	RiskScore  float64
	RiskBand   RiskBand
	Passed     bool
}

// ClassifyRisk maps a risk score to its band: low <30, medium 30-59,
// high >=60.
func ClassifyRisk(riskScore float64) RiskBand {
	switch {
	case riskScore < 30:
		return RiskLow
	case riskScore < 60:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Evaluate renders the pass/fail decision against the threshold.
// This is pure domain logic - no I/O, no side effects.
func Evaluate(result MatchResult, threshold float64) Decision {
	return Decision{
		MatchScore: result.MatchScore,
		RiskScore:  result.RiskScore,
		RiskBand:   ClassifyRisk(result.RiskScore),
		Passed:     result.MatchScore >= threshold,
	}
}

// Package threshold classifies temperatures into severity tiers.
package threshold

// Tier is a severity classification derived from a temperature.
type Tier int

const (
	Safe Tier = iota
	Caution
	Danger
)

func (t Tier) String() string {
	switch t {
	case Safe:
		return "safe"
	case Caution:
		return "caution"
	case Danger:
		return "danger"
	default:
		return "unknown"
	}
}

// MarshalText lets tiers serialize as their names.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Evaluator maps temperatures to tiers. Danger is inclusive at DangerF;
// caution starts at DangerF-CautionOffsetF.
type Evaluator struct {
	DangerF        float64
	CautionOffsetF float64
}

// NewEvaluator returns an Evaluator for the given thresholds.
func NewEvaluator(dangerF, cautionOffsetF float64) Evaluator {
	return Evaluator{DangerF: dangerF, CautionOffsetF: cautionOffsetF}
}

// Tier classifies a temperature in °F. NaN is rejected upstream.
func (e Evaluator) Tier(temperature float64) Tier {
	switch {
	case temperature >= e.DangerF:
		return Danger
	case temperature >= e.DangerF-e.CautionOffsetF:
		return Caution
	default:
		return Safe
	}
}

package predict

// Risk is the binary outcome shown to the user.
type Risk int

const (
	LowRisk Risk = iota
	HighRisk
)

// PositiveLabel is the classifier label that means high risk.
const PositiveLabel = 1

// RiskFromLabel maps 1 to HighRisk and every other label to LowRisk.
func RiskFromLabel(label int) Risk {
	if label == PositiveLabel {
		return HighRisk
	}
	return LowRisk
}

func (r Risk) String() string {
	if r == HighRisk {
		return "High Risk"
	}
	return "Low Risk"
}

// Message is the text the form displays for r.
func (r Risk) Message() string {
	if r == HighRisk {
		return "⚠️ High Risk!"
	}
	return "✅ Low Risk!"
}

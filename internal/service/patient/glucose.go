package patient

// Glucose thresholds (mg/dL) for advisory messages.
const (
	glucoseLow  = 70
	glucoseHigh = 180
)

// GlucoseAdvice maps a glucose reading to a patient-facing advisory.
func GlucoseAdvice(reading float64) string {
	switch {
	case reading < glucoseLow:
		return "Low glucose detected! Consider having a small snack with carbohydrates."
	case reading <= glucoseHigh:
		return "Glucose level is stable. Maintain normal dietary and exercise routines."
	default:
		return "High glucose alert! Consider insulin intake or consulting a doctor."
	}
}

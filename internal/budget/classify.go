package budget

// Health classifies how much of a department's allocation is consumed.
type Health string

const (
	HealthHealthy  Health = "HEALTHY"
	HealthWarning  Health = "WARNING"
	HealthCritical Health = "CRITICAL"
)

// Utilization thresholds. At or above criticalThreshold the budget is
// critical; at or above warningThreshold it is a warning.
const (
	criticalThreshold = 0.90
	warningThreshold  = 0.75
)

// Classify returns the health band for a budget. A zero total allocation is
// healthy regardless of usage (nothing meaningful to measure against).
func Classify(total, used float64) Health {
	if total == 0 {
		return HealthHealthy
	}

	ratio := used / total
	switch {
	case ratio >= criticalThreshold:
		return HealthCritical
	case ratio >= warningThreshold:
		return HealthWarning
	}
	return HealthHealthy
}

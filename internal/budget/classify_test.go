package budget

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		used  float64
		want  Health
	}{
		{"well under budget", 100, 50, HealthHealthy},
		{"just below warning", 100, 74.99, HealthHealthy},
		{"warning boundary", 100, 75, HealthWarning},
		{"between bands", 100, 80, HealthWarning},
		{"just below critical", 100, 89.99, HealthWarning},
		{"critical boundary", 100, 90, HealthCritical},
		{"fully consumed", 100, 100, HealthCritical},
		{"overspent", 100, 150, HealthCritical},
		{"zero allocation", 0, 0, HealthHealthy},
		{"zero allocation with usage", 0, 10, HealthHealthy},
		{"nothing used", 200000, 0, HealthHealthy},
		{"quarter used", 200000, 50000, HealthHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.total, tt.used); got != tt.want {
				t.Errorf("Classify(%v, %v) = %v, want %v", tt.total, tt.used, got, tt.want)
			}
		})
	}
}

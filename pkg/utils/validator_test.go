package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLineItem(t *testing.T) {
	tests := []struct {
		name      string
		itemName  string
		quantity  int
		price     float64
		wantError bool
	}{
		{"valid item", "Laptop", 2, 500, false},
		{"zero price is allowed", "Sample unit", 1, 0, false},
		{"empty name", "", 1, 10, true},
		{"whitespace name", "   ", 1, 10, true},
		{"zero quantity", "Mouse", 0, 20, true},
		{"negative quantity", "Mouse", -1, 20, true},
		{"negative price", "Mouse", 1, -0.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLineItem(tt.itemName, tt.quantity, tt.price)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateReason(t *testing.T) {
	assert.Error(t, ValidateReason(""))
	assert.Error(t, ValidateReason("  \t"))
	assert.NoError(t, ValidateReason("missing vendor GSTIN"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("he\x00llo\x1f"))
	assert.Equal(t, "plain", SanitizeString("plain"))
}

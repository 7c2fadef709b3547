package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// ValidateLineItem validates a requisition line item's fields.
func ValidateLineItem(itemName string, quantity int, price float64) error {
	if strings.TrimSpace(itemName) == "" {
		return fmt.Errorf("item name must not be empty")
	}
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %d", quantity)
	}
	if price < 0 {
		return fmt.Errorf("price must not be negative: %.2f", price)
	}
	return nil
}

// ValidateReason validates a rejection reason.
func ValidateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("reason must not be empty")
	}
	return nil
}

// SanitizeString removes control characters from user-supplied text.
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

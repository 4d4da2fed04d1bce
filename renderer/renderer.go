// Package renderer converts report structs into markdown documents, ready to
// be printed raw or through a terminal markdown renderer.
package renderer

import "fmt"

// amount formats a monetary figure with its currency code.
func amount(v float64, currency string) string {
	return fmt.Sprintf("%.2f %s", v, currency)
}

// signed formats a monetary figure with an explicit sign.
func signed(v float64, currency string) string {
	return fmt.Sprintf("%+.2f %s", v, currency)
}

// quantity formats a share count, trimming to a sensible precision.
func quantity(v float64) string {
	return fmt.Sprintf("%g", v)
}

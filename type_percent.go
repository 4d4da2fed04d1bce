package divtrack

import "fmt"

// Percent is a percentage value, e.g. Percent(12.34) renders as "12.34%".
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

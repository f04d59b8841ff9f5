package printer

import (
	"fmt"
	"strings"
)

// ProgressBar renders a percentage as a fixed width bar, e.g. "[#####-----] 50.00%".
func ProgressBar(percentage float64, width int) string {
	if width <= 0 {
		width = 20
	}
	switch {
	case percentage < 0:
		percentage = 0
	case percentage > 100:
		percentage = 100
	}

	filled := int(percentage / 100 * float64(width))
	return fmt.Sprintf("[%s%s] %.2f%%", strings.Repeat("#", filled), strings.Repeat("-", width-filled), percentage)
}

package housing

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatPrice renders v as US dollars with thousands separators, e.g.
// $452,600.00 or -$1,200.50. Negative estimates are passed through.
func FormatPrice(v float64) string {
	if v < 0 {
		return printer.Sprintf("-$%.2f", math.Abs(v))
	}
	return printer.Sprintf("$%.2f", v)
}

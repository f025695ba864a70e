package i18n

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatMoney renders amount in euros with no fraction digits, using the
// grouping conventions of lang. Rounding only happens here.
func FormatMoney(amount float64, lang string) string {
	tag, err := language.Parse(Normalize(lang))
	if err != nil {
		tag = language.Spanish
	}
	p := message.NewPrinter(tag)
	return p.Sprintf("%d €", int64(math.Round(amount)))
}

package utils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah prints whole Rupiah with Indonesian digit grouping, e.g. "Rp 199.000".
func FormatRupiah(d decimal.Decimal) string {
	return idPrinter.Sprintf("Rp %d", d.Round(0).IntPart())
}

// FormatNumber groups an integer the Indonesian way.
func FormatNumber(n int64) string {
	return idPrinter.Sprintf("%d", n)
}

package renderer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFuncMapDates(t *testing.T) {
	funcs := FuncMap()
	longDate := funcs["longDate"].(func(any) string)
	shortDate := funcs["shortDate"].(func(any) string)
	isoDate := funcs["isoDate"].(func(any) string)

	ts := time.Date(2026, 12, 12, 3, 0, 0, 0, time.UTC)
	if got := longDate(ts); got != "Sabtu, 12 Desember 2026" {
		t.Fatalf("longDate = %q", got)
	}
	if got := longDate(&ts); got != "Sabtu, 12 Desember 2026" {
		t.Fatalf("longDate(ptr) = %q", got)
	}
	var none *time.Time
	if got := longDate(none); got != "-" {
		t.Fatalf("longDate(nil) = %q", got)
	}
	if got := shortDate(ts); got != "12/12/2026 10:00" {
		t.Fatalf("shortDate = %q", got)
	}
	if got := isoDate(none); got != "" {
		t.Fatalf("isoDate(nil) = %q", got)
	}
	if got := isoDate(&ts); got != "2026-12-12" {
		t.Fatalf("isoDate = %q", got)
	}
}

func TestFuncMapRupiah(t *testing.T) {
	rupiah := FuncMap()["rupiah"].(func(decimal.Decimal) string)
	if got := rupiah(decimal.NewFromInt(149000)); got != "Rp 149.000" {
		t.Fatalf("rupiah = %q", got)
	}
}

package renderer

import (
	"time"

	"nika.id/pkg/themes"
	"nika.id/utils"

	"github.com/shopspring/decimal"
)

var jakarta = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.FixedZone("WIB", 7*3600)
	}
	return loc
}()

// asTime accepts time.Time and *time.Time; a nil pointer reads as the zero time.
func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	}
	return time.Time{}
}

// FuncMap holds the helpers every panel, dashboard and site view can call.
func FuncMap() map[string]any {
	return map[string]any{
		"longDate": func(v any) string {
			t := asTime(v)
			if t.IsZero() {
				return "-"
			}
			return themes.LongDate(t.In(jakarta))
		},
		"shortDate": func(v any) string {
			t := asTime(v)
			if t.IsZero() {
				return "-"
			}
			return t.In(jakarta).Format("02/01/2006 15:04")
		},
		"isoDate": func(v any) string {
			t := asTime(v)
			if t.IsZero() {
				return ""
			}
			return t.In(jakarta).Format("2006-01-02")
		},
		"rupiah": func(d decimal.Decimal) string { return utils.FormatRupiah(d) },
	}
}

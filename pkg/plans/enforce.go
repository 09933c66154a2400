package plans

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Enforce clamps an invitation blob to what limits allow and reports which paths it touched.
// Malformed JSON is returned unchanged.
func Enforce(limits Limits, raw []byte) ([]byte, []string) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return raw, nil
	}
	out := raw
	var changed []string

	disable := func(path string) {
		if !gjson.GetBytes(out, path).Bool() {
			return
		}
		if b, err := sjson.SetBytes(out, path, false); err == nil {
			out = b
			changed = append(changed, path)
		}
	}

	if !limits.CanUseMusic {
		disable("music.enabled")
	}
	if !limits.CanUseLoveStory {
		disable("loveStory.enabled")
	}
	if !limits.CanUseDigitalGift {
		disable("gifts.enabled")
	}
	if !limits.CanUseRSVP {
		// RSVP defaults to enabled when absent, so write the flag explicitly.
		if v := gjson.GetBytes(out, "rsvp.enabled"); !v.Exists() || v.Bool() {
			if b, err := sjson.SetBytes(out, "rsvp.enabled", false); err == nil {
				out = b
				changed = append(changed, "rsvp.enabled")
			}
		}
	}

	if limits.MaxGalleryPhotos >= 0 {
		for _, key := range []string{"gallery", "photos"} {
			g := gjson.GetBytes(out, key)
			if !g.IsArray() {
				continue
			}
			items := g.Array()
			if len(items) <= limits.MaxGalleryPhotos {
				continue
			}
			kept := make([]any, 0, limits.MaxGalleryPhotos)
			for _, it := range items[:limits.MaxGalleryPhotos] {
				kept = append(kept, it.Value())
			}
			if b, err := sjson.SetBytes(out, key, kept); err == nil {
				out = b
				changed = append(changed, key)
			}
		}
	}
	return out, changed
}

package plans

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestStaticRegistryValues(t *testing.T) {
	r := NewStaticRegistry()
	tests := []struct {
		tier      Tier
		maxGuests int
		gallery   int
		music     bool
		gift      bool
		price     int64
	}{
		{TierFree, 50, 3, false, false, 0},
		{TierSilver, 300, 10, true, false, 99000},
		{TierGold, 1000, 30, true, true, 199000},
	}
	for _, tc := range tests {
		l := r.Get(tc.tier)
		if l.MaxGuests != tc.maxGuests || l.MaxGalleryPhotos != tc.gallery {
			t.Errorf("%s: got guests=%d gallery=%d", tc.tier, l.MaxGuests, l.MaxGalleryPhotos)
		}
		if l.CanUseMusic != tc.music || l.CanUseDigitalGift != tc.gift {
			t.Errorf("%s: got music=%v gift=%v", tc.tier, l.CanUseMusic, l.CanUseDigitalGift)
		}
		if l.Price.IntPart() != tc.price {
			t.Errorf("%s: got price %s", tc.tier, l.Price)
		}
	}
}

func TestUnknownTierFallsBackToFree(t *testing.T) {
	r := NewStaticRegistry()
	if got := r.Get("PLATINUM"); got.MaxGuests != r.Get(TierFree).MaxGuests {
		t.Fatalf("unknown tier should use FREE limits, got %+v", got)
	}
	if r.Known("PLATINUM") {
		t.Fatal("PLATINUM must not be known")
	}
	if !r.Known("gold") {
		t.Fatal("tier lookup should be case-insensitive")
	}
}

func TestRegistryIsCopiedOnConstruction(t *testing.T) {
	table := map[Tier]Limits{TierFree: {MaxGuests: 10}}
	r := NewRegistry(table)
	table[TierFree] = Limits{MaxGuests: 99}
	if r.Get(TierFree).MaxGuests != 10 {
		t.Fatal("registry must not observe caller mutation")
	}
}

func TestTiersOrderedByPrice(t *testing.T) {
	got := NewStaticRegistry().Tiers()
	want := []Tier{TierFree, TierSilver, TierGold}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestGuestCapReached(t *testing.T) {
	r := NewStaticRegistry()
	if r.GuestCapReached(TierFree, 49) {
		t.Error("49 of 50 should not be capped")
	}
	if !r.GuestCapReached(TierFree, 50) {
		t.Error("50 of 50 should be capped")
	}
	if r.GuestCapReached(TierGold, 50) {
		t.Error("gold allows more than 50")
	}
}

func TestParseRegistryYAMLOverridesPartially(t *testing.T) {
	r, err := ParseRegistryYAML([]byte("GOLD:\n  maxGuests: 2000\n  price: \"249000\"\nsilver:\n  canUseDigitalGift: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	gold := r.Get(TierGold)
	if gold.MaxGuests != 2000 || gold.Price.IntPart() != 249000 {
		t.Errorf("gold override not applied: %+v", gold)
	}
	if gold.MaxGalleryPhotos != 30 || !gold.CanUseMusic {
		t.Errorf("gold fields outside the file should keep defaults: %+v", gold)
	}
	silver := r.Get(TierSilver)
	if !silver.CanUseDigitalGift || silver.Price.IntPart() != 99000 {
		t.Errorf("silver override not applied: %+v", silver)
	}
}

func TestParseRegistryYAMLRejectsBadPrice(t *testing.T) {
	if _, err := ParseRegistryYAML([]byte("GOLD:\n  price: abc\n")); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnforceFree(t *testing.T) {
	raw := []byte(`{"music":{"enabled":true,"url":"x.mp3"},"gifts":{"enabled":true},"loveStory":{"enabled":true},"gallery":["a","b","c","d","e"]}`)
	out, changed := Enforce(NewStaticRegistry().Get(TierFree), raw)

	if gjson.GetBytes(out, "music.enabled").Bool() {
		t.Error("music should be disabled")
	}
	if gjson.GetBytes(out, "music.url").String() != "x.mp3" {
		t.Error("music url should be preserved")
	}
	if gjson.GetBytes(out, "gifts.enabled").Bool() || gjson.GetBytes(out, "loveStory.enabled").Bool() {
		t.Error("gifts and love story should be disabled")
	}
	if n := len(gjson.GetBytes(out, "gallery").Array()); n != 3 {
		t.Errorf("gallery should be truncated to 3, got %d", n)
	}
	if len(changed) != 4 {
		t.Errorf("expected 4 changed paths, got %v", changed)
	}
}

func TestEnforceGoldLeavesBlobAlone(t *testing.T) {
	raw := []byte(`{"music":{"enabled":true},"gallery":["a","b"]}`)
	out, changed := Enforce(NewStaticRegistry().Get(TierGold), raw)
	if string(out) != string(raw) || len(changed) != 0 {
		t.Fatalf("gold should not change anything: %s %v", out, changed)
	}
}

func TestEnforceRSVPDisabledWhenAbsent(t *testing.T) {
	out, _ := Enforce(Limits{MaxGalleryPhotos: 10}, []byte(`{}`))
	v := gjson.GetBytes(out, "rsvp.enabled")
	if !v.Exists() || v.Bool() {
		t.Fatalf("rsvp.enabled should be written false, got %s", out)
	}
}

func TestEnforceMalformed(t *testing.T) {
	raw := []byte(`{not json`)
	out, changed := Enforce(Limits{}, raw)
	if string(out) != string(raw) || changed != nil {
		t.Fatal("malformed input must pass through")
	}
}

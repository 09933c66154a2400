package themes

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"nika.id/pkg/plans"
	"nika.id/pkg/weddingdata"
)

func TestRegistryBuiltins(t *testing.T) {
	r := DefaultRegistry()
	for _, slug := range []string{"romantic-elegance", "classic-premium", "royal-gold", "modern-dark", "estetik", "simple-free"} {
		th, ok := r.Resolve(slug, Config{})
		if !ok {
			t.Errorf("%s should resolve", slug)
			continue
		}
		if th.Slug != slug || len(th.Sections) == 0 || th.Palette.Primary == "" {
			t.Errorf("%s resolved to incomplete theme %+v", slug, th)
		}
	}
}

func TestRegistryUnknownSlug(t *testing.T) {
	if _, ok := DefaultRegistry().Resolve("example2", Config{}); ok {
		t.Fatal("unregistered slug without base must not resolve")
	}
	if _, ok := DefaultRegistry().Resolve("example2", Config{Base: "nope"}); ok {
		t.Fatal("unregistered base must not resolve")
	}
}

func TestRegistryDerivesFromBase(t *testing.T) {
	cfg := Config{Base: "royal-gold", Palette: Palette{Primary: "#123456"}, Copy: Copy{OpenButton: "Masuk"}}
	th, ok := DefaultRegistry().Resolve("Sapphire-Night", cfg)
	if !ok {
		t.Fatal("derived theme should resolve")
	}
	if th.Slug != "sapphire-night" || th.Palette.Primary != "#123456" || th.Copy.OpenButton != "Masuk" {
		t.Errorf("overrides not applied: %+v", th)
	}
	if th.Palette.Accent != "#f5d27a" || !th.Dark {
		t.Errorf("base values should carry over: %+v", th)
	}
	again, _ := DefaultRegistry().Resolve("royal-gold", Config{})
	if again.Palette.Primary != "#b8860b" {
		t.Error("deriving must not mutate the base theme")
	}
}

func TestParseConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"empty", ``, false},
		{"null", `null`, false},
		{"extra fields", `{"extraFields":[{"key":"dressCode","label":"Dress Code"}]}`, false},
		{"bad color", `{"palette":{"primary":"red;background:url(x)"}}`, true},
		{"bad section", `{"sections":["hero","ads"]}`, true},
		{"bad key", `{"extraFields":[{"key":"1x","label":"x"}]}`, true},
		{"dup key", `{"extraFields":[{"key":"a","label":"x"},{"key":"a","label":"y"}]}`, true},
		{"bad ornament", `{"ornament":"sparkle"}`, true},
		{"bad font", `{"fonts":{"heading":"x\";}"}}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.raw))
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestParseConfigYAML(t *testing.T) {
	raw := "base: estetik\npalette:\n  primary: \"#aa5500\"\nsections: [hero, couple, footer]\nextraFields:\n  - key: dressCode\n    label: Dress Code\n"
	cfg, err := ParseConfigYAML([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Base != "estetik" || cfg.Palette.Primary != "#aa5500" || len(cfg.Sections) != 3 || len(cfg.ExtraFields) != 1 {
		t.Fatalf("got %+v", cfg)
	}
	back, err := ParseConfig(cfg.JSON())
	if err != nil || back.Base != "estetik" {
		t.Fatalf("json round trip failed: %v %+v", err, back)
	}
}

func TestCountdown(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got := Countdown(now, now.Add(49*time.Hour+30*time.Minute+15*time.Second))
	if got.Days != 2 || got.Hours != 1 || got.Minutes != 30 || got.Seconds != 15 || got.Passed {
		t.Errorf("got %+v", got)
	}
	if past := Countdown(now, now.Add(-time.Minute)); !past.Passed || past.Days != 0 {
		t.Errorf("past target: %+v", past)
	}
}

func TestLongDate(t *testing.T) {
	got := LongDate(time.Date(2026, 12, 12, 0, 0, 0, 0, time.UTC))
	if got != "Sabtu, 12 Desember 2026" {
		t.Errorf("got %q", got)
	}
	if LongDate(time.Time{}) != "" {
		t.Error("zero time should format empty")
	}
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func samplePage(t *testing.T, tier plans.Tier) Page {
	t.Helper()
	raw := `{"groom":{"name":"Andi Saputra"},"bride":{"name":"Bunga Lestari"},"event":{"date":"2027-06-12"},
		"music":{"enabled":true,"url":"https://cdn.example/song.mp3"},
		"gifts":{"enabled":true,"bankAccounts":[{"bank":"BCA","number":"1234567890","holder":"Andi"}]},
		"loveStory":{"enabled":true,"stories":[{"title":"Pertama Bertemu","description":"Di kampus"}]},
		"gallery":["a.jpg","b.jpg","c.jpg","d.jpg"],"extra":{"dressCode":"Batik"}}`
	th, ok := DefaultRegistry().Resolve("romantic-elegance", Config{})
	if !ok {
		t.Fatal("theme missing")
	}
	return Page{
		Theme:       th,
		Data:        weddingdata.Map([]byte(raw), "Pak Joko", time.Time{}),
		Slug:        "andi-bunga",
		Limits:      plans.NewStaticRegistry().Get(tier),
		Messages:    []Message{{GuestName: "Rina", Message: "Selamat menempuh hidup baru", CreatedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}},
		ExtraFields: []ExtraField{{Key: "dressCode", Label: "Dress Code"}},
		BaseURL:     "https://nika.id/",
		Now:         time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRenderGoldPage(t *testing.T) {
	var buf bytes.Buffer
	if err := newRenderer(t).Render(&buf, samplePage(t, plans.TierGold)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Andi &amp; Bunga",
		"Pak Joko",
		"#b76e79",
		`id="rsvp-form"`,
		`id="gift"`,
		`id="lovestory"`,
		`<audio id="bg-music"`,
		"Selamat menempuh hidup baru",
		"Dress Code",
		`"@type":"Event"`,
		`property="og:title"`,
		"https://nika.id/andi-bunga",
		`data-cd="days">11<`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("gold page missing %q", want)
		}
	}
	if strings.Contains(out, "Dibuat dengan nika.id") {
		t.Error("gold plan should not show the watermark")
	}
}

func TestRenderFreePageDropsGatedSections(t *testing.T) {
	var buf bytes.Buffer
	if err := newRenderer(t).Render(&buf, samplePage(t, plans.TierFree)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, absent := range []string{`id="gift"`, `id="lovestory"`, `<audio id="bg-music"`, "d.jpg"} {
		if strings.Contains(out, absent) {
			t.Errorf("free page should not contain %q", absent)
		}
	}
	for _, want := range []string{"Dibuat dengan nika.id", `id="rsvp-form"`, "c.jpg"} {
		if !strings.Contains(out, want) {
			t.Errorf("free page missing %q", want)
		}
	}
}

func TestRenderRespectsDisabledRSVP(t *testing.T) {
	p := samplePage(t, plans.TierGold)
	p.Data.RSVP.Enabled = false
	var buf bytes.Buffer
	if err := newRenderer(t).Render(&buf, p); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `id="rsvp-form"`) {
		t.Error("rsvp form should be hidden when disabled")
	}
}

func TestRenderNotFound(t *testing.T) {
	var buf bytes.Buffer
	if err := newRenderer(t).RenderNotFound(&buf, "example2"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Template Tidak Ditemukan") || !strings.Contains(buf.String(), "example2") {
		t.Errorf("unexpected not found page: %s", buf.String())
	}
}

func TestEveryBuiltinRenders(t *testing.T) {
	r := newRenderer(t)
	for _, th := range Builtins() {
		p := samplePage(t, plans.TierGold)
		p.Theme = th
		var buf bytes.Buffer
		if err := r.Render(&buf, p); err != nil {
			t.Errorf("%s: %v", th.Slug, err)
		}
	}
}

package themes

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"nika.id/pkg/plans"
	"nika.id/pkg/weddingdata"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templateFS embed.FS

// Message is an approved guestbook entry shown on the page.
type Message struct {
	GuestName string
	Message   string
	CreatedAt time.Time
}

// Page is everything needed to render one public invitation.
type Page struct {
	Theme       Theme
	Data        weddingdata.WeddingData
	Slug        string
	Limits      plans.Limits
	Messages    []Message
	ExtraFields []ExtraField
	BaseURL     string
	Now         time.Time
}

type CountdownParts struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
	Passed  bool
}

// Countdown splits the time left until target. Once target has passed every part is zero.
func Countdown(now, target time.Time) CountdownParts {
	d := target.Sub(now)
	if d <= 0 {
		return CountdownParts{Passed: true}
	}
	secs := int(d / time.Second)
	return CountdownParts{
		Days:    secs / 86400,
		Hours:   secs % 86400 / 3600,
		Minutes: secs % 3600 / 60,
		Seconds: secs % 60,
	}
}

type extraView struct {
	Label string
	Value string
}

type pageView struct {
	Theme        Theme
	Data         weddingdata.WeddingData
	Slug         string
	Sections     []string
	Gallery      []string
	ShowMusic    bool
	Watermark    bool
	Countdown    CountdownParts
	TargetMillis int64
	Messages     []Message
	Extras       []extraView
	Title        string
	Description  string
	CanonicalURL string
	OGImage      string
	FontFamilies []string
	JSONLD       template.JS
	Year         int
}

type notFoundView struct {
	Slug  string
	Title string
}

type Renderer struct {
	engine *html.Engine
}

func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	for name, fn := range funcMap() {
		engine.AddFunc(name, fn)
	}
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("themes: load templates: %w", err)
	}
	return &Renderer{engine: engine}, nil
}

func (r *Renderer) Render(w io.Writer, p Page) error {
	return r.engine.Render(w, "page", buildView(p))
}

// RenderNotFound renders the "Template Tidak Ditemukan" state for a slug whose template cannot be resolved.
func (r *Renderer) RenderNotFound(w io.Writer, slug string) error {
	return r.engine.Render(w, "notfound", notFoundView{Slug: slug, Title: "Template Tidak Ditemukan"})
}

func buildView(p Page) pageView {
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	d := p.Data
	l := p.Limits

	gallery := d.Gallery
	if l.MaxGalleryPhotos >= 0 && len(gallery) > l.MaxGalleryPhotos {
		gallery = gallery[:l.MaxGalleryPhotos]
	}

	sections := make([]string, 0, len(p.Theme.Sections))
	for _, s := range p.Theme.Sections {
		switch s {
		case SectionLoveStory:
			if !l.CanUseLoveStory || !d.LoveStory.Enabled || len(d.LoveStory.Stories) == 0 {
				continue
			}
		case SectionGift:
			if !l.CanUseDigitalGift || !d.Gifts.Enabled {
				continue
			}
		case SectionRSVP:
			if !l.CanUseRSVP || !d.RSVP.Enabled {
				continue
			}
		case SectionGallery:
			if len(gallery) == 0 {
				continue
			}
		}
		sections = append(sections, string(s))
	}

	extras := make([]extraView, 0, len(p.ExtraFields))
	for _, f := range p.ExtraFields {
		if v := strings.TrimSpace(d.Extra[f.Key]); v != "" {
			extras = append(extras, extraView{Label: f.Label, Value: v})
		}
	}

	couple := d.Groom.Nickname + " & " + d.Bride.Nickname
	canonical := strings.TrimRight(p.BaseURL, "/") + "/" + p.Slug

	return pageView{
		Theme:        p.Theme,
		Data:         d,
		Slug:         p.Slug,
		Sections:     sections,
		Gallery:      gallery,
		ShowMusic:    l.CanUseMusic && d.Music.Enabled && d.Music.URL != "",
		Watermark:    !l.CanRemoveWatermark,
		Countdown:    Countdown(now, d.Event.Date),
		TargetMillis: d.Event.Date.UnixMilli(),
		Messages:     p.Messages,
		Extras:       extras,
		Title:        "Undangan Pernikahan " + couple,
		Description:  fmt.Sprintf("Kami mengundang Anda di hari bahagia %s pada %s.", couple, LongDate(d.Event.Date)),
		CanonicalURL: canonical,
		OGImage:      d.Cover.Image,
		FontFamilies: fontFamilies(p.Theme.Fonts),
		JSONLD:       eventJSONLD(d, couple, canonical),
		Year:         now.Year(),
	}
}

func fontFamilies(f Fonts) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, name := range []string{f.Heading, f.Body, f.Script} {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func eventJSONLD(d weddingdata.WeddingData, couple, url string) template.JS {
	venue := d.Event.Resepsi
	if venue.Venue == "" || venue.Venue == weddingdata.DefaultVenue {
		venue = d.Event.Akad
	}
	doc := map[string]any{
		"@context":            "https://schema.org",
		"@type":               "Event",
		"name":                "Pernikahan " + couple,
		"startDate":           d.Event.Date.Format(time.RFC3339),
		"eventStatus":         "https://schema.org/EventScheduled",
		"eventAttendanceMode": "https://schema.org/OfflineEventAttendanceMode",
		"url":                 url,
		"location": map[string]any{
			"@type":   "Place",
			"name":    venue.Venue,
			"address": venue.Address,
		},
	}
	if d.Cover.Image != "" {
		doc["image"] = []string{d.Cover.Image}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return template.JS("{}")
	}
	return template.JS(b)
}

var (
	dayNames   = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}
	monthNames = [...]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"}
)

// LongDate formats t the way invitations print it, e.g. "Sabtu, 12 Desember 2026".
func LongDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s, %d %s %d", dayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1], t.Year())
}

func funcMap() map[string]any {
	return map[string]any{
		"longDate": LongDate,
		"initial": func(s string) string {
			for _, r := range s {
				return strings.ToUpper(string(r))
			}
			return ""
		},
		"add": func(a, b int) int { return a + b },
	}
}

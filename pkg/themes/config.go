package themes

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExtraField describes an additional input a template asks the editor for; values land in data.extra.
type ExtraField struct {
	Key         string `json:"key" yaml:"key"`
	Label       string `json:"label" yaml:"label"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// Config is the per-template JSON stored on models.Template.Config. Base lets an admin register a new
// slug that reuses a built-in design with its own palette and copy.
type Config struct {
	Base        string       `json:"base,omitempty" yaml:"base,omitempty"`
	Palette     Palette      `json:"palette,omitempty" yaml:"palette,omitempty"`
	Fonts       Fonts        `json:"fonts,omitempty" yaml:"fonts,omitempty"`
	Copy        Copy         `json:"copy,omitempty" yaml:"copy,omitempty"`
	Sections    []Section    `json:"sections,omitempty" yaml:"sections,omitempty"`
	Ornament    string       `json:"ornament,omitempty" yaml:"ornament,omitempty"`
	ExtraFields []ExtraField `json:"extraFields,omitempty" yaml:"extraFields,omitempty"`
}

var (
	colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	fontPattern  = regexp.MustCompile(`^[A-Za-z0-9 ]{1,60}$`)
	keyPattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{0,39}$`)

	validOrnaments = map[string]bool{"floral": true, "frame": true, "gold": true, "line": true, "batik": true, "none": true}
)

// ParseConfig reads the stored JSON column. Empty input is an empty config.
func ParseConfig(raw []byte) (Config, error) {
	var c Config
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("themes: parse config: %w", err)
	}
	return c, c.Validate()
}

// ParseConfigYAML reads an uploaded theme file. JSON files parse too since YAML is a superset.
func ParseConfigYAML(raw []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("themes: parse theme file: %w", err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	for name, v := range map[string]string{
		"primary": c.Palette.Primary, "secondary": c.Palette.Secondary, "accent": c.Palette.Accent,
		"background": c.Palette.Background, "surface": c.Palette.Surface, "text": c.Palette.Text, "muted": c.Palette.Muted,
	} {
		if v != "" && !colorPattern.MatchString(v) {
			return fmt.Errorf("themes: palette.%s %q is not a hex color", name, v)
		}
	}
	for _, f := range []string{c.Fonts.Heading, c.Fonts.Body, c.Fonts.Script} {
		if f != "" && !fontPattern.MatchString(f) {
			return fmt.Errorf("themes: invalid font name %q", f)
		}
	}
	for _, s := range c.Sections {
		if !s.Valid() {
			return fmt.Errorf("themes: unknown section %q", s)
		}
	}
	if c.Ornament != "" && !validOrnaments[c.Ornament] {
		return fmt.Errorf("themes: unknown ornament %q", c.Ornament)
	}
	seen := map[string]bool{}
	for _, f := range c.ExtraFields {
		if !keyPattern.MatchString(f.Key) {
			return fmt.Errorf("themes: invalid extra field key %q", f.Key)
		}
		if seen[f.Key] {
			return fmt.Errorf("themes: duplicate extra field key %q", f.Key)
		}
		seen[f.Key] = true
	}
	return nil
}

// JSON is the canonical form stored in the database.
func (c Config) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

func (c Config) apply(t Theme) Theme {
	t = t.clone()
	t.Palette = mergePalette(t.Palette, c.Palette)
	t.Fonts = mergeFonts(t.Fonts, c.Fonts)
	t.Copy = mergeCopy(t.Copy, c.Copy)
	if len(c.Sections) > 0 {
		t.Sections = append([]Section(nil), c.Sections...)
	}
	if c.Ornament != "" {
		t.Ornament = c.Ornament
	}
	return t
}

func pick(base, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return base
}

func mergePalette(b, o Palette) Palette {
	return Palette{
		Primary: pick(b.Primary, o.Primary), Secondary: pick(b.Secondary, o.Secondary), Accent: pick(b.Accent, o.Accent),
		Background: pick(b.Background, o.Background), Surface: pick(b.Surface, o.Surface),
		Text: pick(b.Text, o.Text), Muted: pick(b.Muted, o.Muted),
	}
}

func mergeFonts(b, o Fonts) Fonts {
	return Fonts{Heading: pick(b.Heading, o.Heading), Body: pick(b.Body, o.Body), Script: pick(b.Script, o.Script)}
}

func mergeCopy(b, o Copy) Copy {
	return Copy{
		Opening:        pick(b.Opening, o.Opening),
		OpenButton:     pick(b.OpenButton, o.OpenButton),
		CoupleIntro:    pick(b.CoupleIntro, o.CoupleIntro),
		CountdownTitle: pick(b.CountdownTitle, o.CountdownTitle),
		EventsTitle:    pick(b.EventsTitle, o.EventsTitle),
		LoveStoryTitle: pick(b.LoveStoryTitle, o.LoveStoryTitle),
		GalleryTitle:   pick(b.GalleryTitle, o.GalleryTitle),
		RSVPTitle:      pick(b.RSVPTitle, o.RSVPTitle),
		GuestbookTitle: pick(b.GuestbookTitle, o.GuestbookTitle),
		GiftTitle:      pick(b.GiftTitle, o.GiftTitle),
		Closing:        pick(b.Closing, o.Closing),
	}
}

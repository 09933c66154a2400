// Package themes resolves a template slug to theme data and renders the public invitation page
// through one shared section pipeline. Designs differ only by the data in Theme.
package themes

type Section string

const (
	SectionHero      Section = "hero"
	SectionQuote     Section = "quote"
	SectionCouple    Section = "couple"
	SectionCountdown Section = "countdown"
	SectionEvents    Section = "events"
	SectionLoveStory Section = "lovestory"
	SectionGallery   Section = "gallery"
	SectionRSVP      Section = "rsvp"
	SectionGuestbook Section = "guestbook"
	SectionGift      Section = "gift"
	SectionFooter    Section = "footer"
)

var DefaultSections = []Section{
	SectionHero, SectionQuote, SectionCouple, SectionCountdown, SectionEvents,
	SectionLoveStory, SectionGallery, SectionRSVP, SectionGuestbook, SectionGift, SectionFooter,
}

func (s Section) Valid() bool {
	for _, d := range DefaultSections {
		if s == d {
			return true
		}
	}
	return false
}

type Palette struct {
	Primary    string `json:"primary,omitempty" yaml:"primary,omitempty"`
	Secondary  string `json:"secondary,omitempty" yaml:"secondary,omitempty"`
	Accent     string `json:"accent,omitempty" yaml:"accent,omitempty"`
	Background string `json:"background,omitempty" yaml:"background,omitempty"`
	Surface    string `json:"surface,omitempty" yaml:"surface,omitempty"`
	Text       string `json:"text,omitempty" yaml:"text,omitempty"`
	Muted      string `json:"muted,omitempty" yaml:"muted,omitempty"`
}

type Fonts struct {
	Heading string `json:"heading,omitempty" yaml:"heading,omitempty"`
	Body    string `json:"body,omitempty" yaml:"body,omitempty"`
	Script  string `json:"script,omitempty" yaml:"script,omitempty"`
}

// Copy holds the fixed strings a design shows around the couple's own content.
type Copy struct {
	Opening        string `json:"opening,omitempty" yaml:"opening,omitempty"`
	OpenButton     string `json:"openButton,omitempty" yaml:"openButton,omitempty"`
	CoupleIntro    string `json:"coupleIntro,omitempty" yaml:"coupleIntro,omitempty"`
	CountdownTitle string `json:"countdownTitle,omitempty" yaml:"countdownTitle,omitempty"`
	EventsTitle    string `json:"eventsTitle,omitempty" yaml:"eventsTitle,omitempty"`
	LoveStoryTitle string `json:"loveStoryTitle,omitempty" yaml:"loveStoryTitle,omitempty"`
	GalleryTitle   string `json:"galleryTitle,omitempty" yaml:"galleryTitle,omitempty"`
	RSVPTitle      string `json:"rsvpTitle,omitempty" yaml:"rsvpTitle,omitempty"`
	GuestbookTitle string `json:"guestbookTitle,omitempty" yaml:"guestbookTitle,omitempty"`
	GiftTitle      string `json:"giftTitle,omitempty" yaml:"giftTitle,omitempty"`
	Closing        string `json:"closing,omitempty" yaml:"closing,omitempty"`
}

type Theme struct {
	Slug     string
	Name     string
	Category string
	Premium  bool
	Palette  Palette
	Fonts    Fonts
	Copy     Copy
	Sections []Section
	// Ornament selects a decoration class in the shared stylesheet: floral, frame, gold, line, batik, none.
	Ornament string
	Dark     bool
}

var baseCopy = Copy{
	Opening:        "Kepada Yth. Bapak/Ibu/Saudara/i",
	OpenButton:     "Buka Undangan",
	CoupleIntro:    "Dengan memohon rahmat dan ridho Allah SWT, kami bermaksud menyelenggarakan pernikahan putra-putri kami",
	CountdownTitle: "Menuju Hari Bahagia",
	EventsTitle:    "Rangkaian Acara",
	LoveStoryTitle: "Kisah Cinta",
	GalleryTitle:   "Galeri",
	RSVPTitle:      "Konfirmasi Kehadiran",
	GuestbookTitle: "Ucapan & Doa",
	GiftTitle:      "Amplop Digital",
	Closing:        "Merupakan suatu kehormatan dan kebahagiaan bagi kami apabila Bapak/Ibu/Saudara/i berkenan hadir dan memberikan doa restu.",
}

func withCopy(overrides Copy) Copy {
	return mergeCopy(baseCopy, overrides)
}

// Builtins returns fresh copies of the designs shipped with the binary.
func Builtins() []Theme {
	return []Theme{
		{
			Slug:     "romantic-elegance",
			Name:     "Romantic Elegance",
			Category: "Romantic",
			Premium:  true,
			Palette:  Palette{Primary: "#b76e79", Secondary: "#f4e1e6", Accent: "#d4a373", Background: "#fffaf8", Surface: "#ffffff", Text: "#4a3f44", Muted: "#8c7b80"},
			Fonts:    Fonts{Heading: "Playfair Display", Body: "Lato", Script: "Great Vibes"},
			Copy:     withCopy(Copy{Opening: "Dengan penuh cinta, kami mengundang"}),
			Sections: append([]Section(nil), DefaultSections...),
			Ornament: "floral",
		},
		{
			Slug:     "classic-premium",
			Name:     "Classic Premium",
			Category: "Classic",
			Premium:  true,
			Palette:  Palette{Primary: "#2f3e46", Secondary: "#cad2c5", Accent: "#84a98c", Background: "#f8f9f5", Surface: "#ffffff", Text: "#2f3e46", Muted: "#6b7a72"},
			Fonts:    Fonts{Heading: "Cormorant Garamond", Body: "Montserrat", Script: "Parisienne"},
			Copy:     withCopy(Copy{}),
			Sections: []Section{
				SectionHero, SectionCouple, SectionQuote, SectionEvents, SectionCountdown,
				SectionGallery, SectionLoveStory, SectionRSVP, SectionGift, SectionGuestbook, SectionFooter,
			},
			Ornament: "frame",
		},
		{
			Slug:     "royal-gold",
			Name:     "Royal Gold",
			Category: "Luxury",
			Premium:  true,
			Palette:  Palette{Primary: "#b8860b", Secondary: "#1c1c1c", Accent: "#f5d27a", Background: "#111111", Surface: "#1c1c1c", Text: "#f3e9d2", Muted: "#bfae8a"},
			Fonts:    Fonts{Heading: "Cinzel", Body: "Raleway", Script: "Pinyon Script"},
			Copy:     withCopy(Copy{OpenButton: "Buka Undangan Kerajaan", GiftTitle: "Tanda Kasih"}),
			Sections: append([]Section(nil), DefaultSections...),
			Ornament: "gold",
			Dark:     true,
		},
		{
			Slug:     "modern-dark",
			Name:     "Modern Dark",
			Category: "Modern",
			Premium:  true,
			Palette:  Palette{Primary: "#e0e0e0", Secondary: "#2a2a2a", Accent: "#9ad1d4", Background: "#121212", Surface: "#1e1e1e", Text: "#f5f5f5", Muted: "#9e9e9e"},
			Fonts:    Fonts{Heading: "Poppins", Body: "Inter", Script: "Sacramento"},
			Copy:     withCopy(Copy{CountdownTitle: "Hitung Mundur", EventsTitle: "Detail Acara"}),
			Sections: []Section{
				SectionHero, SectionCountdown, SectionCouple, SectionEvents, SectionGallery,
				SectionLoveStory, SectionRSVP, SectionGuestbook, SectionGift, SectionQuote, SectionFooter,
			},
			Ornament: "line",
			Dark:     true,
		},
		{
			Slug:     "estetik",
			Name:     "Estetik",
			Category: "Minimalist",
			Premium:  false,
			Palette:  Palette{Primary: "#7d6b5d", Secondary: "#ede0d4", Accent: "#b08968", Background: "#f9f5f0", Surface: "#ffffff", Text: "#3e3631", Muted: "#8a7f76"},
			Fonts:    Fonts{Heading: "DM Serif Display", Body: "Nunito", Script: "Dancing Script"},
			Copy:     withCopy(Copy{GuestbookTitle: "Kirim Doa"}),
			Sections: append([]Section(nil), DefaultSections...),
			Ornament: "batik",
		},
		{
			Slug:     "simple-free",
			Name:     "Simple Free",
			Category: "Basic",
			Premium:  false,
			Palette:  Palette{Primary: "#4a6fa5", Secondary: "#e8eef6", Accent: "#f0a500", Background: "#ffffff", Surface: "#f7f9fc", Text: "#222831", Muted: "#6b7280"},
			Fonts:    Fonts{Heading: "Merriweather", Body: "Open Sans", Script: "Satisfy"},
			Copy:     withCopy(Copy{}),
			Sections: append([]Section(nil), DefaultSections...),
			Ornament: "none",
		},
	}
}

func (t Theme) clone() Theme {
	t.Sections = append([]Section(nil), t.Sections...)
	return t
}

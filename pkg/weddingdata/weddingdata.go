// Package weddingdata turns the schemaless invitation blob into the fully populated WeddingData the
// themes render. The blob shape has drifted over time, so every field has an ordered fallback chain.
package weddingdata

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultGroomName    = "Nama Mempelai Pria"
	DefaultBrideName    = "Nama Mempelai Wanita"
	DefaultGroomNick    = "Pria"
	DefaultBrideNick    = "Wanita"
	DefaultFather       = "Bapak"
	DefaultMother       = "Ibu"
	DefaultGuestName    = "Tamu Undangan"
	DefaultVenue        = "Lokasi Acara"
	DefaultAkadTime     = "08:00 WIB"
	DefaultResepsiTime  = "11:00 WIB"
	DefaultQuoteSource  = "QS. Ar-Rum: 21"
	DefaultQuoteText    = "Dan di antara tanda-tanda kekuasaan-Nya ialah Dia menciptakan untukmu pasangan hidup dari jenismu sendiri, supaya kamu cenderung dan merasa tenteram kepadanya, dan dijadikan-Nya di antaramu rasa kasih dan sayang."
	dateOnlyLayout      = "2006-01-02"
)

type Person struct {
	Name      string `json:"name"`
	Nickname  string `json:"nickname"`
	Father    string `json:"father"`
	Mother    string `json:"mother"`
	Photo     string `json:"photo"`
	Instagram string `json:"instagram"`
}

type Ceremony struct {
	Date    time.Time `json:"date"`
	Time    string    `json:"time"`
	Venue   string    `json:"venue"`
	Address string    `json:"address"`
	MapsURL string    `json:"mapsUrl"`
}

type Event struct {
	Date    time.Time `json:"date"`
	Akad    Ceremony  `json:"akad"`
	Resepsi Ceremony  `json:"resepsi"`
}

type Story struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type LoveStory struct {
	Enabled bool    `json:"enabled"`
	Stories []Story `json:"stories"`
}

type BankAccount struct {
	Bank   string `json:"bank"`
	Number string `json:"number"`
	Holder string `json:"holder"`
}

type Gifts struct {
	Enabled      bool          `json:"enabled"`
	BankAccounts []BankAccount `json:"bankAccounts"`
	Address      string        `json:"address"`
}

type Music struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

type RSVP struct {
	Enabled bool `json:"enabled"`
}

type Quote struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

type Cover struct {
	Image string `json:"image"`
}

type WeddingData struct {
	Groom     Person            `json:"groom"`
	Bride     Person            `json:"bride"`
	Event     Event             `json:"event"`
	GuestName string            `json:"guestName"`
	Gallery   []string          `json:"gallery"`
	LoveStory LoveStory         `json:"loveStory"`
	Gifts     Gifts             `json:"gifts"`
	Music     Music             `json:"music"`
	RSVP      RSVP              `json:"rsvp"`
	Quote     Quote             `json:"quote"`
	Cover     Cover             `json:"cover"`
	Extra     map[string]string `json:"extra"`
}

// Map never fails. Invalid JSON is treated as an empty object.
func Map(raw []byte, guestName string, fallbackDate time.Time) WeddingData {
	if !gjson.ValidBytes(raw) {
		raw = []byte("{}")
	}
	doc := gjson.ParseBytes(raw)

	d := WeddingData{
		Groom:     mapPerson(doc, "groom", DefaultGroomName, DefaultGroomNick),
		Bride:     mapPerson(doc, "bride", DefaultBrideName, DefaultBrideNick),
		GuestName: firstString(strings.TrimSpace(guestName), DefaultGuestName),
	}

	d.Event.Date = firstDate(fallbackDate, doc.Get("event.date"), doc.Get("weddingDate"), doc.Get("date"))
	d.Event.Akad = mapCeremony(doc, "akad", d.Event.Date, DefaultAkadTime)
	d.Event.Resepsi = mapCeremony(doc, "resepsi", d.Event.Date, DefaultResepsiTime)

	d.Gallery = mapGallery(doc)
	d.LoveStory = LoveStory{
		Enabled: doc.Get("loveStory.enabled").Bool(),
		Stories: mapStories(firstArray(doc.Get("loveStory.stories"), doc.Get("stories"))),
	}
	d.Gifts = Gifts{
		Enabled:      doc.Get("gifts.enabled").Bool(),
		BankAccounts: mapAccounts(firstArray(doc.Get("gifts.bankAccounts"), doc.Get("bankAccounts"))),
		Address:      doc.Get("gifts.address").String(),
	}
	d.Music = Music{
		Enabled: doc.Get("music.enabled").Bool(),
		URL:     firstString(doc.Get("music.url").String(), doc.Get("musicUrl").String()),
	}
	d.RSVP = RSVP{Enabled: boolDefault(doc.Get("rsvp.enabled"), true)}
	d.Quote = Quote{
		Text:   firstString(doc.Get("quote.text").String(), DefaultQuoteText),
		Source: firstString(doc.Get("quote.source").String(), DefaultQuoteSource),
	}

	var firstPhoto string
	if len(d.Gallery) > 0 {
		firstPhoto = d.Gallery[0]
	}
	d.Cover = Cover{Image: firstString(doc.Get("cover.image").String(), doc.Get("coverImage").String(), firstPhoto)}

	d.Extra = map[string]string{}
	doc.Get("extra").ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.String {
			d.Extra[k.String()] = v.String()
		}
		return true
	})
	return d
}

func mapPerson(doc gjson.Result, key, defaultName, defaultNick string) Person {
	// groomName / groom_name are the flat legacy shapes.
	rawName := firstString(
		doc.Get(key+".name").String(),
		doc.Get(key+"Name").String(),
		doc.Get(key+"_name").String(),
	)
	return Person{
		Name:      firstString(rawName, defaultName),
		Nickname:  firstString(strings.TrimSpace(doc.Get(key+".nickname").String()), firstWord(rawName), defaultNick),
		Father:    firstString(doc.Get(key+".father").String(), doc.Get(key+".fatherName").String(), DefaultFather),
		Mother:    firstString(doc.Get(key+".mother").String(), doc.Get(key+".motherName").String(), DefaultMother),
		Photo:     doc.Get(key + ".photo").String(),
		Instagram: doc.Get(key + ".instagram").String(),
	}
}

func mapCeremony(doc gjson.Result, key string, eventDate time.Time, defaultTime string) Ceremony {
	get := func(field string) gjson.Result {
		if v := doc.Get("event." + key + "." + field); v.Exists() && v.String() != "" {
			return v
		}
		return doc.Get(key + "." + field)
	}
	return Ceremony{
		Date:    firstDate(eventDate, get("date")),
		Time:    firstString(get("time").String(), defaultTime),
		Venue:   firstString(get("venue").String(), get("location").String(), DefaultVenue),
		Address: get("address").String(),
		MapsURL: firstString(get("mapsUrl").String(), get("maps").String()),
	}
}

func mapGallery(doc gjson.Result) []string {
	out := []string{}
	for _, item := range firstArray(doc.Get("gallery"), doc.Get("photos")) {
		var url string
		switch {
		case item.Type == gjson.String:
			url = item.String()
		case item.IsObject():
			url = item.Get("url").String()
		}
		if url = strings.TrimSpace(url); url != "" {
			out = append(out, url)
		}
	}
	return out
}

func mapStories(items []gjson.Result) []Story {
	out := []Story{}
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		out = append(out, Story{
			Date:        firstString(it.Get("date").String(), it.Get("year").String()),
			Title:       it.Get("title").String(),
			Description: firstString(it.Get("description").String(), it.Get("story").String()),
			Image:       it.Get("image").String(),
		})
	}
	return out
}

func mapAccounts(items []gjson.Result) []BankAccount {
	out := []BankAccount{}
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		out = append(out, BankAccount{
			Bank:   firstString(it.Get("bank").String(), it.Get("bankName").String()),
			Number: firstString(it.Get("number").String(), it.Get("accountNumber").String()),
			Holder: firstString(it.Get("holder").String(), it.Get("accountName").String()),
		})
	}
	return out
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

func firstArray(vals ...gjson.Result) []gjson.Result {
	for _, v := range vals {
		if v.IsArray() {
			return v.Array()
		}
	}
	return nil
}

func boolDefault(v gjson.Result, def bool) bool {
	if v.Type == gjson.True || v.Type == gjson.False {
		return v.Bool()
	}
	return def
}

func firstDate(fallback time.Time, vals ...gjson.Result) time.Time {
	for _, v := range vals {
		s := strings.TrimSpace(v.String())
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
		if t, err := time.Parse(dateOnlyLayout, s); err == nil {
			return t
		}
	}
	return fallback
}

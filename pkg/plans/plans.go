// Package plans holds the plan tier table and the helpers every consumer uses to gate features.
package plans

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Tier string

const (
	TierFree   Tier = "FREE"
	TierSilver Tier = "SILVER"
	TierGold   Tier = "GOLD"
)

// ParseTier uppercases s; unknown values come back as-is so callers can reject them with Known.
func ParseTier(s string) Tier {
	return Tier(strings.ToUpper(strings.TrimSpace(s)))
}

func (t Tier) IsPaid() bool {
	return t == TierSilver || t == TierGold
}

type Feature string

const (
	FeatureMusic       Feature = "music"
	FeatureRSVP        Feature = "rsvp"
	FeatureNoWatermark Feature = "no_watermark"
	FeatureLoveStory   Feature = "love_story"
	FeatureDigitalGift Feature = "digital_gift"
)

type Limits struct {
	MaxGuests          int             `yaml:"maxGuests" json:"maxGuests"`
	MaxGalleryPhotos   int             `yaml:"maxGalleryPhotos" json:"maxGalleryPhotos"`
	CanUseMusic        bool            `yaml:"canUseMusic" json:"canUseMusic"`
	CanUseRSVP         bool            `yaml:"canUseRSVP" json:"canUseRSVP"`
	CanRemoveWatermark bool            `yaml:"canRemoveWatermark" json:"canRemoveWatermark"`
	CanUseLoveStory    bool            `yaml:"canUseLoveStory" json:"canUseLoveStory"`
	CanUseDigitalGift  bool            `yaml:"canUseDigitalGift" json:"canUseDigitalGift"`
	Price              decimal.Decimal `yaml:"-" json:"price"`
	ActiveDays         int             `yaml:"activeDays" json:"activeDays"`
}

func (l Limits) Allows(f Feature) bool {
	switch f {
	case FeatureMusic:
		return l.CanUseMusic
	case FeatureRSVP:
		return l.CanUseRSVP
	case FeatureNoWatermark:
		return l.CanRemoveWatermark
	case FeatureLoveStory:
		return l.CanUseLoveStory
	case FeatureDigitalGift:
		return l.CanUseDigitalGift
	}
	return false
}

// Registry is the plan table injected into the editor, the public submit path, the renderer and
// the upgrade page. It is immutable after construction.
type Registry struct {
	limits map[Tier]Limits
}

func defaultLimits() map[Tier]Limits {
	return map[Tier]Limits{
		TierFree: {
			MaxGuests: 50, MaxGalleryPhotos: 3,
			CanUseRSVP: true,
			Price:      decimal.Zero, ActiveDays: 30,
		},
		TierSilver: {
			MaxGuests: 300, MaxGalleryPhotos: 10,
			CanUseMusic: true, CanUseRSVP: true, CanUseLoveStory: true,
			Price: decimal.NewFromInt(99000), ActiveDays: 180,
		},
		TierGold: {
			MaxGuests: 1000, MaxGalleryPhotos: 30,
			CanUseMusic: true, CanUseRSVP: true, CanRemoveWatermark: true, CanUseLoveStory: true, CanUseDigitalGift: true,
			Price: decimal.NewFromInt(199000), ActiveDays: 365,
		},
	}
}

func NewStaticRegistry() *Registry {
	return NewRegistry(defaultLimits())
}

// NewRegistry copies table so later mutation by the caller has no effect. A missing FREE row is filled
// from the defaults because it is the fallback tier.
func NewRegistry(table map[Tier]Limits) *Registry {
	r := &Registry{limits: make(map[Tier]Limits, len(table)+1)}
	for k, v := range table {
		r.limits[ParseTier(string(k))] = v
	}
	if _, ok := r.limits[TierFree]; !ok {
		r.limits[TierFree] = defaultLimits()[TierFree]
	}
	return r
}

type yamlTier struct {
	Limits `yaml:",inline"`
	Price  string `yaml:"price"`
}

// LoadRegistryYAML starts from the built-in table and overrides the tiers present in the file.
//
//	GOLD:
//	  maxGuests: 2000
//	  price: "249000"
func LoadRegistryYAML(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plans: read %s: %w", path, err)
	}
	return ParseRegistryYAML(raw)
}

func ParseRegistryYAML(raw []byte) (*Registry, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("plans: parse yaml: %w", err)
	}
	table := defaultLimits()
	for name, node := range doc {
		tier := ParseTier(name)
		t := yamlTier{Limits: table[tier]}
		if err := node.Decode(&t); err != nil {
			return nil, fmt.Errorf("plans: tier %s: %w", name, err)
		}
		if t.Price != "" {
			p, err := decimal.NewFromString(t.Price)
			if err != nil {
				return nil, fmt.Errorf("plans: tier %s: invalid price %q: %w", name, t.Price, err)
			}
			t.Limits.Price = p
		}
		table[tier] = t.Limits
	}
	return NewRegistry(table), nil
}

// Get returns the limits for tier; unknown tiers get FREE.
func (r *Registry) Get(t Tier) Limits {
	if l, ok := r.limits[ParseTier(string(t))]; ok {
		return l
	}
	return r.limits[TierFree]
}

func (r *Registry) Known(t Tier) bool {
	_, ok := r.limits[ParseTier(string(t))]
	return ok
}

// Tiers lists every tier ordered by price, cheapest first.
func (r *Registry) Tiers() []Tier {
	out := make([]Tier, 0, len(r.limits))
	for t := range r.limits {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := r.limits[out[i]].Price, r.limits[out[j]].Price
		if pi.Equal(pj) {
			return out[i] < out[j]
		}
		return pi.LessThan(pj)
	})
	return out
}

func (r *Registry) Allows(t Tier, f Feature) bool {
	return r.Get(t).Allows(f)
}

// GuestCapReached reports whether current confirmed guests already meet the tier cap.
func (r *Registry) GuestCapReached(t Tier, current int64) bool {
	max := r.Get(t).MaxGuests
	return max > 0 && current >= int64(max)
}

package theme

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// DefaultDesignID is the design used when a requested id is unknown.
const DefaultDesignID = "classic"

var (
	// ErrUnknownBase is returned when a catalog entry extends a design that does not exist
	ErrUnknownBase = errors.New("design extends unknown base")
	// ErrExtendsCycle is returned when catalog entries extend each other in a loop
	ErrExtendsCycle = errors.New("design extends cycle")
	// ErrInvalidColor is returned when a catalog color token is not a hex color
	ErrInvalidColor = errors.New("invalid color token")
)

var a4 = Layout{
	PageWidth:         595,
	PageHeight:        842,
	Margin:            36,
	HeaderHeight:      120,
	PartyHeight:       96,
	TableHeaderHeight: 24,
	RowHeight:         22,
	TotalsHeight:      104,
	FooterHeight:      36,
	LogoSize:          56,
	BorderWidth:       1,
}

var builtinDesigns = map[string]Theme{
	"classic": {
		ID:         "classic",
		Name:       "Classic",
		FontFamily: "Go",
		Colors: Colors{
			Primary:    "#1F3A5F",
			Background: "#FFFFFF",
			Text:       "#222222",
			MutedText:  "#6B7280",
			Accent:     "#1F3A5F",
		},
		Layout: a4,
	},
	"modern": {
		ID:         "modern",
		Name:       "Modern",
		FontFamily: "Go Medium",
		Colors: Colors{
			Primary:    "#0F766E",
			Background: "#FFFFFF",
			Text:       "#111827",
			MutedText:  "#6B7280",
			Accent:     "#14B8A6",
		},
		Layout: func() Layout {
			l := a4
			l.HeaderHeight = 110
			l.RowHeight = 24
			l.BorderWidth = 0
			l.StripeRows = true
			return l
		}(),
	},
	"minimal": {
		ID:         "minimal",
		Name:       "Minimal",
		FontFamily: "Go",
		Colors: Colors{
			Primary:    "#111111",
			Background: "#FFFFFF",
			Text:       "#111111",
			MutedText:  "#8A8A8A",
			Accent:     "#111111",
		},
		Layout: func() Layout {
			l := a4
			l.Margin = 48
			l.RowHeight = 20
			l.BorderWidth = 0
			return l
		}(),
	},
	"mono": {
		ID:         "mono",
		Name:       "Mono",
		FontFamily: "Go Mono",
		Colors: Colors{
			Primary:    "#000000",
			Background: "#FAFAF7",
			Text:       "#000000",
			MutedText:  "#555555",
			Accent:     "#333333",
		},
		Layout: Layout{
			PageWidth:         612,
			PageHeight:        792,
			Margin:            36,
			HeaderHeight:      112,
			PartyHeight:       90,
			TableHeaderHeight: 22,
			RowHeight:         18,
			TotalsHeight:      100,
			FooterHeight:      32,
			LogoSize:          48,
			BorderWidth:       0.75,
		},
	},
}

// Catalog is a read-only set of designs keyed by lower-case id.
type Catalog struct {
	designs map[string]Theme
}

// NewCatalog returns a catalog holding the built-in designs.
func NewCatalog() *Catalog {
	c := &Catalog{designs: make(map[string]Theme, len(builtinDesigns))}
	for id, t := range builtinDesigns {
		c.designs[id] = t
	}
	return c
}

// LoadCatalog returns the built-in designs overlaid with the entries of a YAML
// catalog file. Each entry lives under designs.<id> and may name a design to
// start from with "extends"; entries without one start from the design of the
// same id, or from the default design for new ids.
//
//	designs:
//	  corporate:
//	    extends: classic
//	    colors:
//	      primary: "#8B0000"
func LoadCatalog(path string) (*Catalog, error) {
	c := NewCatalog()
	if path == "" {
		return c, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read design catalog: %w", err)
	}

	entries := v.GetStringMap("designs")
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, strings.ToLower(id))
	}
	sort.Strings(ids)

	loaded := make(map[string]Theme, len(ids))
	var load func(id string, visiting map[string]bool) (Theme, error)
	load = func(id string, visiting map[string]bool) (Theme, error) {
		if t, ok := loaded[id]; ok {
			return t, nil
		}
		if visiting[id] {
			return Theme{}, fmt.Errorf("%w: %s", ErrExtendsCycle, id)
		}
		visiting[id] = true

		sub := v.Sub("designs." + id)
		if sub == nil {
			return Theme{}, fmt.Errorf("%w: %s", ErrUnknownBase, id)
		}

		var base Theme
		switch ext := strings.ToLower(strings.TrimSpace(sub.GetString("extends"))); {
		case ext != "" && ext != id:
			if _, inFile := entries[ext]; inFile {
				t, err := load(ext, visiting)
				if err != nil {
					return Theme{}, err
				}
				base = t
			} else if t, ok := builtinDesigns[ext]; ok {
				base = t
			} else {
				return Theme{}, fmt.Errorf("%w: %s extends %s", ErrUnknownBase, id, ext)
			}
		default:
			if t, ok := builtinDesigns[id]; ok {
				base = t
			} else {
				base = builtinDesigns[DefaultDesignID]
			}
		}

		// Decoding onto base keeps every field the entry does not mention.
		if err := sub.Unmarshal(&base); err != nil {
			return Theme{}, fmt.Errorf("failed to decode design %s: %w", id, err)
		}
		base.ID = id
		if base.Name == "" {
			base.Name = id
		}
		if err := normalizeColors(&base.Colors); err != nil {
			return Theme{}, fmt.Errorf("design %s: %w", id, err)
		}

		loaded[id] = base
		return base, nil
	}

	for _, id := range ids {
		t, err := load(id, map[string]bool{})
		if err != nil {
			return nil, err
		}
		c.designs[id] = t
	}
	return c, nil
}

func normalizeColors(c *Colors) error {
	for name, token := range map[string]*string{
		"primary":    &c.Primary,
		"background": &c.Background,
		"text":       &c.Text,
		"muted_text": &c.MutedText,
		"accent":     &c.Accent,
	} {
		hex, ok := NormalizeHex(*token)
		if !ok {
			return fmt.Errorf("%w: %s=%q", ErrInvalidColor, name, *token)
		}
		*token = hex
	}
	return nil
}

// Get returns the design with the given id.
func (c *Catalog) Get(id string) (Theme, bool) {
	t, ok := c.designs[strings.ToLower(strings.TrimSpace(id))]
	return t, ok
}

// Len returns the number of designs.
func (c *Catalog) Len() int { return len(c.designs) }

// List returns every design ordered by id.
func (c *Catalog) List() []Theme {
	out := make([]Theme, 0, len(c.designs))
	for _, t := range c.designs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

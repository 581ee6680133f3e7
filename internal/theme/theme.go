package theme

import "github.com/garyjia/invoice-layout/internal/surface"

// Colors holds the color tokens of a design as #RRGGBB strings.
type Colors struct {
	Primary    string `mapstructure:"primary" json:"primary"`
	Background string `mapstructure:"background" json:"background"`
	Text       string `mapstructure:"text" json:"text"`
	MutedText  string `mapstructure:"muted_text" json:"muted_text"`
	Accent     string `mapstructure:"accent" json:"accent"`
}

// Layout is the page geometry of a design, in points.
type Layout struct {
	PageWidth         float64 `mapstructure:"page_width" json:"page_width"`
	PageHeight        float64 `mapstructure:"page_height" json:"page_height"`
	Margin            float64 `mapstructure:"margin" json:"margin"`
	HeaderHeight      float64 `mapstructure:"header_height" json:"header_height"`
	PartyHeight       float64 `mapstructure:"party_height" json:"party_height"`
	TableHeaderHeight float64 `mapstructure:"table_header_height" json:"table_header_height"`
	RowHeight         float64 `mapstructure:"row_height" json:"row_height"`
	TotalsHeight      float64 `mapstructure:"totals_height" json:"totals_height"`
	FooterHeight      float64 `mapstructure:"footer_height" json:"footer_height"`
	LogoSize          float64 `mapstructure:"logo_size" json:"logo_size"`
	BorderWidth       float64 `mapstructure:"border_width" json:"border_width"`
	StripeRows        bool    `mapstructure:"stripe_rows" json:"stripe_rows"`
}

// Theme is a fully resolved design. It is a plain value: copies never share state.
type Theme struct {
	ID         string `mapstructure:"id" json:"id"`
	Name       string `mapstructure:"name" json:"name"`
	FontFamily string `mapstructure:"font_family" json:"font_family"`
	Colors     Colors `mapstructure:"colors" json:"colors"`
	Layout     Layout `mapstructure:"layout" json:"layout"`
}

// ContentWidth is the page width inside the margins.
func (l Layout) ContentWidth() float64 {
	return l.PageWidth - 2*l.Margin
}

// TableHeaderTop is the y of the table header band. The first page places the
// table below the header and party blocks; continuation pages start it at the
// top margin.
func (l Layout) TableHeaderTop(firstPage bool) float64 {
	if firstPage {
		return l.Margin + l.HeaderHeight + l.PartyHeight
	}
	return l.Margin
}

// RowsTop is the y of the first item row.
func (l Layout) RowsTop(firstPage bool) float64 {
	return l.TableHeaderTop(firstPage) + l.TableHeaderHeight
}

// BodyBottom is the lowest y item rows may reach. The totals and footer zones
// below it are reserved on every page.
func (l Layout) BodyBottom() float64 {
	return l.PageHeight - l.Margin - l.TotalsHeight - l.FooterHeight
}

// FirstPageAvailable is the height available for item rows on the first page.
func (l Layout) FirstPageAvailable() float64 {
	return l.BodyBottom() - l.RowsTop(true)
}

// ContinuationAvailable is the height available for item rows on continuation pages.
func (l Layout) ContinuationAvailable() float64 {
	return l.BodyBottom() - l.RowsTop(false)
}

// Palette is the parsed form of Colors.
type Palette struct {
	Primary    surface.Color
	Background surface.Color
	Text       surface.Color
	MutedText  surface.Color
	Accent     surface.Color
}

// Palette parses the color tokens. Tokens that fail to parse fall back to the
// matching token of the default design.
func (t Theme) Palette() Palette {
	def := builtinDesigns[DefaultDesignID].Colors
	return Palette{
		Primary:    colorOr(t.Colors.Primary, def.Primary),
		Background: colorOr(t.Colors.Background, def.Background),
		Text:       colorOr(t.Colors.Text, def.Text),
		MutedText:  colorOr(t.Colors.MutedText, def.MutedText),
		Accent:     colorOr(t.Colors.Accent, def.Accent),
	}
}

func colorOr(token, fallback string) surface.Color {
	if c, ok := ParseHex(token); ok {
		return c
	}
	c, _ := ParseHex(fallback)
	return c
}

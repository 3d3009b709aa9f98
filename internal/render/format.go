package render

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// historyDateLayout is the en-US short month, day, year, hour:minute rendering.
// Dates stay en-US for every locale; only numbers follow the locale.
const historyDateLayout = "Jan 2, 2006, 03:04 PM"

// UnknownDate is shown for entries whose backend date could not be parsed.
const UnknownDate = "Unknown date"

// Formatter renders numbers for a locale and times in a zone.
type Formatter struct {
	printer *message.Printer
	loc     *time.Location
	tag     language.Tag
}

// NewFormatter parses locale as a BCP 47 tag. A nil loc means time.Local.
func NewFormatter(locale string, loc *time.Location) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{
		printer: message.NewPrinter(tag),
		loc:     loc,
		tag:     tag,
	}, nil
}

// DefaultFormatter formats for en-US in UTC.
func DefaultFormatter() *Formatter {
	return &Formatter{
		printer: message.NewPrinter(language.AmericanEnglish),
		loc:     time.UTC,
		tag:     language.AmericanEnglish,
	}
}

// Locale returns the parsed language tag.
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// Percent2 formats v with two decimals and a percent sign.
func (f *Formatter) Percent2(v float64) string {
	return f.printer.Sprintf("%.2f%%", v)
}

// Percent1 formats v with one decimal and a percent sign.
func (f *Formatter) Percent1(v float64) string {
	return f.printer.Sprintf("%.1f%%", v)
}

// DateTime formats t in the formatter's zone using the en-US layout regardless
// of the locale. The zero time renders as UnknownDate.
func (f *Formatter) DateTime(t time.Time) string {
	if t.IsZero() {
		return UnknownDate
	}
	return t.In(f.loc).Format(historyDateLayout)
}

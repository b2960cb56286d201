package localize

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Localizer resolves strings for one language.
type Localizer struct {
	bundle  *Bundle
	tag     language.Tag
	printer *message.Printer
}

func newLocalizer(b *Bundle, tag language.Tag) *Localizer {
	return &Localizer{
		bundle:  b,
		tag:     tag,
		printer: message.NewPrinter(tag),
	}
}

// Language returns the language the localizer resolves for.
func (l *Localizer) Language() language.Tag {
	return l.tag
}

// Localize resolves key in DefaultTable. See LocalizeTable.
func (l *Localizer) Localize(key string, args ...any) string {
	return l.LocalizeTable(DefaultTable, key, args...)
}

// LocalizeTable resolves key in table. Without args the template is
// returned verbatim; with args it is used as a format string and the
// arguments are formatted for the localizer's language. A key without a
// translation is its own template.
func (l *Localizer) LocalizeTable(table, key string, args ...any) string {
	format, ok := l.bundle.lookup(l.tag, table, key)
	if !ok {
		format = key
	}
	if len(args) == 0 {
		return format
	}
	return l.printer.Sprintf(format, args...)
}

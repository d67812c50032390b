package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale formats row indices with comma grouping.
var DefaultLocale = language.AmericanEnglish

// IndexFormatter formats 1-based row numbers with locale grouping
// separators, e.g. 1234 -> "1,234" for en-US or "1.234" for de.
type IndexFormatter struct {
	printer *message.Printer
}

// NewIndexFormatter returns a formatter for tag.
func NewIndexFormatter(tag language.Tag) IndexFormatter {
	return IndexFormatter{printer: message.NewPrinter(tag)}
}

// Format returns n with grouping separators.
func (f IndexFormatter) Format(n int) string {
	return f.printer.Sprintf("%d", n)
}

// GlobalIndex is the 1-based position of the local row i (0-based) across
// all pages.
func GlobalIndex(currentPage, pageSize, i int) int {
	return (currentPage-1)*pageSize + i + 1
}

package render

import (
	"context"
	"io"
	"strings"

	"github.com/Sternrassler/datatable-client/pkg/page"
	"github.com/a-h/templ"
	"golang.org/x/text/language"
)

// DefaultSandbox lets the host page read the sub-document height but never
// lets embedded markup run scripts, submit forms or navigate the host.
const DefaultSandbox = "allow-same-origin"

// DefaultStylesheets are linked into every long answer document.
var DefaultStylesheets = []string{
	"/static/src/bootstrap.min.css",
	"/static/src/custom.min.css",
}

// TableRow is one rendered row. Empty LongAnswerDoc or ShortAnswer means an
// empty cell.
type TableRow struct {
	Index         string
	Question      string
	LongAnswerDoc string
	ShortAnswer   string
}

// TableOption configures a TableRenderer.
type TableOption func(*TableRenderer)

// WithLocale sets the locale used for row index grouping.
func WithLocale(tag language.Tag) TableOption {
	return func(r *TableRenderer) {
		r.index = NewIndexFormatter(tag)
	}
}

// WithSanitizer runs every cell's content through s.
func WithSanitizer(s Sanitizer) TableOption {
	return func(r *TableRenderer) {
		r.sanitizer = s
	}
}

// WithSandbox sets the iframe sandbox token list for long answers.
func WithSandbox(policy string) TableOption {
	return func(r *TableRenderer) {
		r.sandbox = policy
	}
}

// WithStylesheets sets the stylesheets linked into long answer documents.
func WithStylesheets(hrefs ...string) TableOption {
	return func(r *TableRenderer) {
		r.stylesheets = hrefs
	}
}

// TableRenderer converts page rows into table rows.
type TableRenderer struct {
	index       IndexFormatter
	sanitizer   Sanitizer
	sandbox     string
	stylesheets []string
}

// NewTableRenderer creates a renderer with en-US indices, trusted content,
// the default sandbox and default stylesheets.
func NewTableRenderer(opts ...TableOption) *TableRenderer {
	r := &TableRenderer{
		index:       NewIndexFormatter(DefaultLocale),
		sanitizer:   Trusted(),
		sandbox:     DefaultSandbox,
		stylesheets: DefaultStylesheets,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BuildRows projects rows into TableRow values in order.
func (r *TableRenderer) BuildRows(rows []page.Row, currentPage, pageSize int) []TableRow {
	out := make([]TableRow, len(rows))
	for i, row := range rows {
		out[i] = TableRow{
			Index:    r.index.Format(GlobalIndex(currentPage, pageSize, i)),
			Question: r.sanitizer.Sanitize(row.Question),
		}
		if row.HasLongAnswer() {
			out[i].LongAnswerDoc = r.longAnswerDoc(r.sanitizer.Sanitize(row.LongAnswers))
		}
		if row.HasShortAnswer() {
			out[i].ShortAnswer = r.sanitizer.Sanitize(row.ShortAnswers)
		}
	}
	return out
}

// longAnswerDoc wraps content in a standalone document for iframe srcdoc.
func (r *TableRenderer) longAnswerDoc(content string) string {
	var b strings.Builder
	for _, href := range r.stylesheets {
		b.WriteString(`<link rel="stylesheet" href="`)
		b.WriteString(templ.EscapeString(href))
		b.WriteString(`">`)
	}
	b.WriteString("<body>")
	b.WriteString(content)
	b.WriteString("</body>")
	return b.String()
}

// Rows returns a component writing one <tr> per row.
func (r *TableRenderer) Rows(rows []page.Row, currentPage, pageSize int) templ.Component {
	built := r.BuildRows(rows, currentPage, pageSize)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, row := range built {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.writeRow(w, row); err != nil {
				return err
			}
		}
		return nil
	})
}

// Render writes the rows to w and returns once every row is written.
func (r *TableRenderer) Render(ctx context.Context, w io.Writer, rows []page.Row, currentPage, pageSize int) error {
	return r.Rows(rows, currentPage, pageSize).Render(ctx, w)
}

func (r *TableRenderer) writeRow(w io.Writer, row TableRow) error {
	var b strings.Builder
	b.WriteString("<tr><td>")
	b.WriteString(templ.EscapeString(row.Index))
	b.WriteString("</td><td>")
	b.WriteString(row.Question)
	b.WriteString("</td><td>")
	if row.LongAnswerDoc != "" {
		b.WriteString(`<iframe class="long-answer" title="Detailed Answer" loading="lazy" sandbox="`)
		b.WriteString(templ.EscapeString(r.sandbox))
		b.WriteString(`" style="width: 100%; height: auto; border: none; overflow: hidden;" srcdoc="`)
		b.WriteString(templ.EscapeString(row.LongAnswerDoc))
		b.WriteString(`"></iframe>`)
	}
	b.WriteString("</td><td>")
	b.WriteString(row.ShortAnswer)
	b.WriteString("</td></tr>")

	_, err := io.WriteString(w, b.String())
	return err
}

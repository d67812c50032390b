package render

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// WindowSize is the maximum number of numbered page controls.
const WindowSize = 5

// ControlKind identifies a pagination control.
type ControlKind int

// Control kinds in display order.
const (
	ControlFirst ControlKind = iota
	ControlPrevious
	ControlNumber
	ControlNext
	ControlLast
)

// Control is one pagination item. Page is the page it navigates to.
type Control struct {
	Kind     ControlKind
	Label    string
	Page     int
	Disabled bool
	Active   bool
}

// Window returns the inclusive range of numbered pages around current.
// When total is 0 the range is empty (end < start).
func Window(current, total int) (start, end int) {
	start = max(current-2, 1)
	end = start + WindowSize - 1
	if end > total {
		end = total
		start = max(end-WindowSize+1, 1)
	}
	return start, end
}

// Controls returns First, Previous, the numbered window, Next and Last.
func Controls(current, total int) []Control {
	atStart := current <= 1
	atEnd := current >= total

	start, end := Window(current, total)

	controls := make([]Control, 0, WindowSize+4)
	controls = append(controls,
		Control{Kind: ControlFirst, Label: "First", Page: 1, Disabled: atStart},
		Control{Kind: ControlPrevious, Label: "Previous", Page: current - 1, Disabled: atStart},
	)
	for i := start; i <= end; i++ {
		controls = append(controls, Control{
			Kind:   ControlNumber,
			Label:  strconv.Itoa(i),
			Page:   i,
			Active: i == current,
		})
	}
	controls = append(controls,
		Control{Kind: ControlNext, Label: "Next", Page: current + 1, Disabled: atEnd},
		Control{Kind: ControlLast, Label: "Last", Page: total, Disabled: atEnd},
	)
	return controls
}

// Numbered returns only the numbered controls of cs.
func Numbered(cs []Control) []Control {
	var out []Control
	for _, c := range cs {
		if c.Kind == ControlNumber {
			out = append(out, c)
		}
	}
	return out
}

// HrefFunc builds the link target for a page.
type HrefFunc func(page int) string

// PaginationRenderer writes pagination controls as a Bootstrap list.
type PaginationRenderer struct {
	href HrefFunc
}

// NewPaginationRenderer creates a renderer whose links are "#" and carry
// the target page in data-page, for script-driven navigation.
func NewPaginationRenderer() *PaginationRenderer {
	return &PaginationRenderer{href: func(int) string { return "#" }}
}

// NewLinkedPaginationRenderer creates a renderer whose links navigate to
// href(page).
func NewLinkedPaginationRenderer(href HrefFunc) *PaginationRenderer {
	return &PaginationRenderer{href: href}
}

// Component returns a component writing the controls for current/total.
func (r *PaginationRenderer) Component(current, total int) templ.Component {
	controls := Controls(current, total)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<ul class="pagination">`)
		for _, c := range controls {
			class := "page-item"
			switch {
			case c.Disabled:
				class += " disabled"
			case c.Active:
				class += " active"
			}
			fmt.Fprintf(&b, `<li class="%s"><a class="page-link" href="%s" data-page="%d">%s</a></li>`,
				class, templ.EscapeString(r.href(c.Page)), c.Page, templ.EscapeString(c.Label))
		}
		b.WriteString(`</ul>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Render writes the controls to w.
func (r *PaginationRenderer) Render(ctx context.Context, w io.Writer, current, total int) error {
	return r.Component(current, total).Render(ctx, w)
}

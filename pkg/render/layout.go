package render

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
)

// PageSizes offered by the page size selector.
var PageSizes = []int{10, 25, 50, 100}

// DocumentData feeds the full viewer page.
type DocumentData struct {
	Title      string
	Datasets   []string
	State      State
	TotalPages int

	// Pagination and Rows are rendered in place; nil renders nothing
	Pagination templ.Component
	Rows       templ.Component

	// Error is shown above the table when the last load failed
	Error string
}

// StateQuery encodes s as viewer query parameters.
func StateQuery(s State) url.Values {
	return url.Values{
		"dataset":   []string{s.Dataset},
		"page":      []string{strconv.Itoa(s.CurrentPage)},
		"page_size": []string{strconv.Itoa(s.PageSize)},
	}
}

// Document returns the full HTML page component.
func Document(d DocumentData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		esc := templ.EscapeString
		title := d.Title
		if title == "" {
			title = "Data Table"
		}

		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title>`+
			`<link rel="stylesheet" href="/static/src/bootstrap.min.css"></head><body><main class="container">`+
			`<h1>%s</h1><form method="get" class="controls"><select id="csv-selector" name="dataset">`,
			esc(title), esc(title)); err != nil {
			return err
		}
		for _, ds := range d.Datasets {
			sel := ""
			if ds == d.State.Dataset {
				sel = " selected"
			}
			if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`, esc(ds), sel, esc(ds)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</select><select id="page-size" name="page_size">`); err != nil {
			return err
		}
		for _, n := range PageSizes {
			sel := ""
			if n == d.State.PageSize {
				sel = " selected"
			}
			if _, err := fmt.Fprintf(w, `<option value="%d"%s>%d</option>`, n, sel, n); err != nil {
				return err
			}
		}

		refresh := StateQuery(d.State)
		refresh.Set("refresh", "1")
		if _, err := fmt.Fprintf(w, `</select><button type="submit">Show</button>`+
			`<a id="refresh-data" href="?%s">Refresh</a></form>`, esc(refresh.Encode())); err != nil {
			return err
		}

		if d.Error != "" {
			if _, err := fmt.Fprintf(w, `<div class="alert alert-danger" role="alert">%s</div>`, esc(d.Error)); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `<nav class="top-pagination">`); err != nil {
			return err
		}
		if d.Pagination != nil {
			if err := d.Pagination.Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</nav><table class="table"><thead><tr><th>#</th><th>Question</th>`+
			`<th>Long Answers</th><th>Short Answers</th></tr></thead><tbody id="data-rows">`); err != nil {
			return err
		}
		if d.Rows != nil {
			if err := d.Rows.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table></main></body></html>`)
		return err
	})
}

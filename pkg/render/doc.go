// Package render turns pages into HTML: the data table rows, the
// pagination controls and the surrounding document.
//
// Components are templ components and can be written to any io.Writer:
//
//	tr := render.NewTableRenderer()
//	if err := tr.Render(ctx, w, p.Data, p.CurrentPage, p.PageSize); err != nil {
//		return err
//	}
//
//	pr := render.NewPaginationRenderer()
//	if err := pr.Render(ctx, w, p.CurrentPage, p.TotalPages); err != nil {
//		return err
//	}
//
// Question and short answer text is written as-is; upstream content is
// trusted to be sanitized unless a Sanitizer is configured. Long answers
// are always isolated in a sandboxed iframe document.
package render

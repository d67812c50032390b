// Package page defines the paginated record shape returned by the data API
// and the shape validation applied to every decoded page.
package page

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed indicates a page body that parsed but does not have the
// expected shape.
var ErrMalformed = errors.New("malformed page")

// Row is a single tabular record.
type Row struct {
	Question     string `json:"question"`
	LongAnswers  string `json:"long_answers"`
	ShortAnswers string `json:"short_answers"`
}

// HasLongAnswer reports whether the long answer carries content.
// Whitespace-only values count as empty.
func (r Row) HasLongAnswer() bool {
	return strings.TrimSpace(r.LongAnswers) != ""
}

// HasShortAnswer reports whether the short answer carries content.
func (r Row) HasShortAnswer() bool {
	return strings.TrimSpace(r.ShortAnswers) != ""
}

// Page is one page of results with its pagination metadata.
type Page struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	PageSize    int `json:"pageSize"`

	// TotalRecords is optional; older backends omit it.
	TotalRecords int `json:"totalRecords,omitempty"`

	Data []Row `json:"data"`
}

// wirePage mirrors Page with pointer fields so missing keys can be told
// apart from zero values.
type wirePage struct {
	CurrentPage  *int            `json:"currentPage"`
	TotalPages   *int            `json:"totalPages"`
	PageSize     *int            `json:"pageSize"`
	TotalRecords *int            `json:"totalRecords"`
	Data         json.RawMessage `json:"data"`
}

// Decode parses body and validates its shape. Any failure wraps ErrMalformed.
// A missing pageSize decodes as 0.
func Decode(body []byte) (*Page, error) {
	var w wirePage
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if w.CurrentPage == nil {
		return nil, fmt.Errorf("%w: missing currentPage", ErrMalformed)
	}
	if w.TotalPages == nil {
		return nil, fmt.Errorf("%w: missing totalPages", ErrMalformed)
	}

	data := bytes.TrimSpace(w.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: data is not an array", ErrMalformed)
	}

	p := &Page{
		CurrentPage: *w.CurrentPage,
		TotalPages:  *w.TotalPages,
	}
	if w.PageSize != nil {
		p.PageSize = *w.PageSize
	}
	if w.TotalRecords != nil {
		p.TotalRecords = *w.TotalRecords
	}
	if err := json.Unmarshal(data, &p.Data); err != nil {
		return nil, fmt.Errorf("%w: decode rows: %v", ErrMalformed, err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the numeric invariants of an already decoded page.
func (p *Page) Validate() error {
	switch {
	case p == nil:
		return fmt.Errorf("%w: nil page", ErrMalformed)
	case p.CurrentPage < 1:
		return fmt.Errorf("%w: currentPage %d < 1", ErrMalformed, p.CurrentPage)
	case p.TotalPages < 0:
		return fmt.Errorf("%w: totalPages %d < 0", ErrMalformed, p.TotalPages)
	case p.PageSize < 0:
		return fmt.Errorf("%w: pageSize %d < 0", ErrMalformed, p.PageSize)
	case p.PageSize > 0 && len(p.Data) > p.PageSize:
		return fmt.Errorf("%w: %d rows exceed pageSize %d", ErrMalformed, len(p.Data), p.PageSize)
	}
	return nil
}

// Encode serializes p in the wire shape.
func Encode(p *Page) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("page cannot be nil")
	}
	if p.Data == nil {
		// keep "data": [] on the wire so the page decodes again
		cp := *p
		cp.Data = []Row{}
		p = &cp
	}
	return json.Marshal(p)
}

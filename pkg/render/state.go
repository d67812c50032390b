package render

// State is the explicit pagination state of a table view. It replaces a
// shared "current page" variable: every change produces a new State.
type State struct {
	Dataset     string
	PageSize    int
	CurrentPage int
}

// NewState starts at page 1.
func NewState(dataset string, pageSize int) State {
	return State{Dataset: dataset, PageSize: pageSize, CurrentPage: 1}
}

// WithPage moves to page n.
func (s State) WithPage(n int) State {
	s.CurrentPage = n
	return s
}

// WithDataset switches dataset and resets to page 1.
func (s State) WithDataset(id string) State {
	s.Dataset = id
	s.CurrentPage = 1
	return s
}

// WithPageSize changes the page size and resets to page 1.
func (s State) WithPageSize(n int) State {
	s.PageSize = n
	s.CurrentPage = 1
	return s
}

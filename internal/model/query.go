package model

// ListParams are the raw, all-optional list parameters as they arrive on the
// query string. Absence of one never affects interpretation of the others.
type ListParams struct {
	Page   string
	Limit  string
	Search string
	Sort   string
	Filter string
}

// ListQuery is a composed, ready-to-execute collection query. It is produced
// by the query composer and executed by the store; it never executes itself.
type ListQuery struct {
	Skip        int64
	Limit       int64
	SearchField string
	Search      string
	SortField   string
	SortAsc     bool
	FilterField string
	FilterValue any
}

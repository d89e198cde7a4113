package pagination

import (
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params carries list paging and sorting as received from the query string.
type Params struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Normalize clamps page/limit and resolves SortBy against a whitelist that maps
// public sort keys to SQL columns. Unknown keys fall back to defaultSort.
func (p Params) Normalize(allowed map[string]string, defaultSort string) Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if maxPage := MaxPage(p.Limit); p.Page > maxPage {
		p.Page = maxPage
	}
	if _, ok := allowed[p.SortBy]; !ok {
		p.SortBy = defaultSort
	}
	if strings.EqualFold(p.SortOrder, "asc") {
		p.SortOrder = "asc"
	} else {
		p.SortOrder = "desc"
	}
	return p
}

// MaxPage is the largest page whose offset still fits in an int.
func MaxPage(limit int) int {
	if limit < 1 {
		return math.MaxInt
	}
	return math.MaxInt / limit
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderBy renders an ORDER BY fragment. Callers must Normalize first.
func (p Params) OrderBy(allowed map[string]string) string {
	return allowed[p.SortBy] + " " + strings.ToUpper(p.SortOrder)
}

func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

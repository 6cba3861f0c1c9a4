package api

import (
	"game-deals/internal/domain"
)

// Upstream deal orderings.
const (
	SortDeals      = "Deal Rating"
	SortSavings    = "Savings"
	SortPrice      = "Price"
	SortMetacritic = "Metacritic"
	SortRecent     = "Recent"
	SortTitle      = "Title"
)

type DealQuery struct {
	Store      domain.Store
	PageSize   int
	SortBy     string
	Desc       bool
	OnSaleOnly bool
	MinCritic  int
}

func (q DealQuery) pageSize(fallback int) int {
	if q.PageSize <= 0 {
		return fallback
	}
	return q.PageSize
}

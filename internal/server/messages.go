package server

import (
	"game-deals/internal/catalog"
	"game-deals/internal/domain"
	"game-deals/internal/service"
)

type SearchGamesRequest struct {
	Region string         `json:"region,omitempty"`
	Filter catalog.Filter `json:"filter"`
}

type ListDealsRequest struct {
	Region     string `json:"region,omitempty"`
	Store      string `json:"store,omitempty"`
	PageSize   int    `json:"pageSize,omitempty"`
	SortBy     string `json:"sortBy,omitempty"`
	Desc       bool   `json:"desc,omitempty"`
	OnSaleOnly bool   `json:"onSaleOnly,omitempty"`
	MinCritic  int    `json:"minCritic,omitempty"`
}

// RegionRequest selects a pricing region; empty uses the persisted selection.
type RegionRequest struct {
	Region string `json:"region,omitempty"`
}

type GetGameRequest struct {
	ID     string `json:"id"`
	Region string `json:"region,omitempty"`
}

type ResolvePriceRequest struct {
	Title     string   `json:"title"`
	Store     string   `json:"store"`
	Region    string   `json:"region,omitempty"`
	BasePrice *float64 `json:"basePrice,omitempty"`
}

type Empty struct{}

type ListRegionsResponse struct {
	Regions []domain.Region `json:"regions"`
}

type ListStoresResponse struct {
	Stores   []domain.StoreInfo `json:"stores"`
	Advisory *service.Advisory  `json:"advisory,omitempty"`
}

type GameRequest struct {
	GameID string `json:"gameId"`
}

type WishlistEntryResponse struct {
	Entry domain.WishlistEntry `json:"entry"`
	Added bool                 `json:"added"`
}

type RemoveFromWishlistResponse struct {
	Removed bool `json:"removed"`
}

type ListWishlistRequest struct {
	Region string `json:"region,omitempty"`
	Query  string `json:"query,omitempty"`
}

type SetPriceAlertRequest struct {
	GameID string  `json:"gameId"`
	Target float64 `json:"target"`
}

type CompleteWelcomeRequest struct {
	UserName string `json:"userName"`
}

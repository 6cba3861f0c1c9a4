package server

import (
	"context"
	"net/http"
	"time"

	"game-deals/internal/api"
	"game-deals/internal/domain"
	"game-deals/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const CatalogServicePath = "/gamedeals.v1.CatalogService/"

type CatalogServer struct {
	catalogSvc  *service.CatalogService
	wishlistSvc *service.WishlistService
	settingsSvc *service.SettingsService
}

func NewCatalogServer(catalogSvc *service.CatalogService, wishlistSvc *service.WishlistService, settingsSvc *service.SettingsService) *CatalogServer {
	return &CatalogServer{catalogSvc: catalogSvc, wishlistSvc: wishlistSvc, settingsSvc: settingsSvc}
}

// Handler serves every procedure under CatalogServicePath.
func (s *CatalogServer) Handler() http.Handler {
	mux := http.NewServeMux()
	opts := []connect.HandlerOption{connect.WithCodec(jsonCodec{})}

	mount(mux, "SearchGames", s.SearchGames, opts)
	mount(mux, "ListDeals", s.ListDeals, opts)
	mount(mux, "GetFreeGames", s.GetFreeGames, opts)
	mount(mux, "GetHotDeals", s.GetHotDeals, opts)
	mount(mux, "GetGame", s.GetGame, opts)
	mount(mux, "ResolvePrice", s.ResolvePrice, opts)
	mount(mux, "ListRegions", s.ListRegions, opts)
	mount(mux, "ListStores", s.ListStores, opts)

	mount(mux, "AddToWishlist", s.AddToWishlist, opts)
	mount(mux, "RemoveFromWishlist", s.RemoveFromWishlist, opts)
	mount(mux, "SetPriceAlert", s.SetPriceAlert, opts)
	mount(mux, "ClearPriceAlert", s.ClearPriceAlert, opts)
	mount(mux, "ListWishlist", s.ListWishlist, opts)
	mount(mux, "ClearWishlist", s.ClearWishlist, opts)
	mount(mux, "CheckPriceAlerts", s.CheckPriceAlerts, opts)

	mount(mux, "GetSettings", s.GetSettings, opts)
	mount(mux, "UpdateSettings", s.UpdateSettings, opts)
	mount(mux, "CompleteWelcome", s.CompleteWelcome, opts)
	mount(mux, "ResetData", s.ResetData, opts)
	return mux
}

// mount registers a procedure, timing each call and mapping domain errors to Connect codes.
func mount[Req, Res any](mux *http.ServeMux, method string, fn func(context.Context, *Req) (*Res, error), opts []connect.HandlerOption) {
	procedure := CatalogServicePath + method
	handler := func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
		start := time.Now()
		defer func() {
			zerolog.Ctx(ctx).Debug().
				Str("procedure", method).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("procedure finished")
		}()

		res, err := fn(ctx, req.Msg)
		if err != nil {
			return nil, toConnectError(ctx, method, err)
		}
		return connect.NewResponse(res), nil
	}
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, handler, opts...))
}

func (s *CatalogServer) SearchGames(ctx context.Context, req *SearchGamesRequest) (*service.CatalogPage, error) {
	return s.catalogSvc.Search(ctx, req.Filter, req.Region)
}

func (s *CatalogServer) ListDeals(ctx context.Context, req *ListDealsRequest) (*service.CatalogPage, error) {
	q := api.DealQuery{
		Store:      domain.Store(req.Store),
		PageSize:   req.PageSize,
		SortBy:     req.SortBy,
		Desc:       req.Desc,
		OnSaleOnly: req.OnSaleOnly,
		MinCritic:  req.MinCritic,
	}
	if q.SortBy == "" {
		q.SortBy, q.Desc = api.SortDeals, true
	}
	return s.catalogSvc.ListDeals(ctx, q, req.Region)
}

func (s *CatalogServer) GetFreeGames(ctx context.Context, req *RegionRequest) (*service.CatalogPage, error) {
	return s.catalogSvc.FreeGames(ctx, req.Region)
}

func (s *CatalogServer) GetHotDeals(ctx context.Context, req *RegionRequest) (*service.CatalogPage, error) {
	return s.catalogSvc.HotDeals(ctx, req.Region)
}

func (s *CatalogServer) GetGame(ctx context.Context, req *GetGameRequest) (*service.GameDetail, error) {
	return s.catalogSvc.GetGame(ctx, req.ID, req.Region)
}

func (s *CatalogServer) ResolvePrice(ctx context.Context, req *ResolvePriceRequest) (*service.PriceQuote, error) {
	return s.catalogSvc.ResolvePrice(ctx, req.Title, req.Store, req.Region, req.BasePrice)
}

func (s *CatalogServer) ListRegions(_ context.Context, _ *Empty) (*ListRegionsResponse, error) {
	return &ListRegionsResponse{Regions: s.catalogSvc.Regions()}, nil
}

func (s *CatalogServer) ListStores(ctx context.Context, _ *Empty) (*ListStoresResponse, error) {
	stores, advisory, err := s.catalogSvc.Stores(ctx)
	if err != nil {
		return nil, err
	}
	return &ListStoresResponse{Stores: stores, Advisory: advisory}, nil
}

func (s *CatalogServer) AddToWishlist(ctx context.Context, req *GameRequest) (*WishlistEntryResponse, error) {
	entry, added, err := s.wishlistSvc.Add(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	return &WishlistEntryResponse{Entry: entry, Added: added}, nil
}

func (s *CatalogServer) RemoveFromWishlist(ctx context.Context, req *GameRequest) (*RemoveFromWishlistResponse, error) {
	removed, err := s.wishlistSvc.Remove(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	return &RemoveFromWishlistResponse{Removed: removed}, nil
}

func (s *CatalogServer) SetPriceAlert(ctx context.Context, req *SetPriceAlertRequest) (*WishlistEntryResponse, error) {
	entry, err := s.wishlistSvc.SetPriceAlert(ctx, req.GameID, req.Target)
	if err != nil {
		return nil, err
	}
	return &WishlistEntryResponse{Entry: entry}, nil
}

func (s *CatalogServer) ClearPriceAlert(ctx context.Context, req *GameRequest) (*WishlistEntryResponse, error) {
	entry, err := s.wishlistSvc.ClearPriceAlert(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	return &WishlistEntryResponse{Entry: entry}, nil
}

func (s *CatalogServer) ListWishlist(ctx context.Context, req *ListWishlistRequest) (*service.WishlistView, error) {
	return s.wishlistSvc.List(ctx, req.Region, req.Query)
}

func (s *CatalogServer) ClearWishlist(ctx context.Context, _ *Empty) (*Empty, error) {
	if err := s.wishlistSvc.Clear(ctx); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *CatalogServer) CheckPriceAlerts(ctx context.Context, req *RegionRequest) (*service.AlertReport, error) {
	return s.wishlistSvc.CheckPriceAlerts(ctx, req.Region)
}

func (s *CatalogServer) GetSettings(ctx context.Context, _ *Empty) (*domain.Settings, error) {
	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *CatalogServer) UpdateSettings(ctx context.Context, req *service.SettingsUpdate) (*domain.Settings, error) {
	settings, err := s.settingsSvc.Update(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *CatalogServer) CompleteWelcome(ctx context.Context, req *CompleteWelcomeRequest) (*domain.Settings, error) {
	settings, err := s.settingsSvc.CompleteWelcome(ctx, req.UserName)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *CatalogServer) ResetData(ctx context.Context, _ *Empty) (*Empty, error) {
	if err := s.settingsSvc.ResetData(ctx); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

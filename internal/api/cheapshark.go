package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"game-deals/internal/constants"
	"game-deals/internal/domain"
	"game-deals/internal/pricing"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type CheapSharkClient struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewCheapSharkClient(baseURL string, logger zerolog.Logger) *CheapSharkClient {
	return &CheapSharkClient{
		baseURL: baseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

func (c *CheapSharkClient) SearchByTitle(ctx context.Context, title string, limit int) ([]domain.Game, error) {
	params := url.Values{}
	params.Set("title", title)
	params.Set("pageSize", strconv.Itoa(pageSizeOr(limit, constants.SearchLimit)))
	deals, err := doRequest[[]dealResult](ctx, c, c.baseURL+"/deals?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return c.mergeDeals(*deals), nil
}

func (c *CheapSharkClient) ListDeals(ctx context.Context, q DealQuery) ([]domain.Game, error) {
	params := url.Values{}
	if q.Store != "" {
		info := q.Store.Info()
		if info.CheapSharkID == "" {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStore, q.Store)
		}
		params.Set("storeID", info.CheapSharkID)
	}
	params.Set("pageSize", strconv.Itoa(q.pageSize(constants.DealsPageSize)))
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.Desc {
		params.Set("desc", "1")
	} else {
		params.Set("desc", "0")
	}
	if q.OnSaleOnly {
		params.Set("onSale", "1")
	}
	if q.MinCritic > 0 {
		params.Set("metacritic", strconv.Itoa(q.MinCritic))
	}

	deals, err := doRequest[[]dealResult](ctx, c, c.baseURL+"/deals?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return c.mergeDeals(*deals), nil
}

func (c *CheapSharkClient) FreeDeals(ctx context.Context, limit int) ([]domain.Game, error) {
	params := url.Values{}
	params.Set("sortBy", SortRecent)
	params.Set("desc", "1")
	params.Set("onSale", "1")
	params.Set("upperPrice", "0")
	params.Set("pageSize", strconv.Itoa(pageSizeOr(limit, constants.FreeGamesLimit)))

	deals, err := doRequest[[]dealResult](ctx, c, c.baseURL+"/deals?"+params.Encode())
	if err != nil {
		return nil, err
	}
	free := (*deals)[:0]
	for _, d := range *deals {
		if parsePrice(d.SalePrice) == 0 {
			free = append(free, d)
		}
	}
	return c.mergeDeals(free), nil
}

// GameDetails looks a game up by its CheapShark game id. The API answers an unknown
// id with an empty JSON array instead of a 404.
func (c *CheapSharkClient) GameDetails(ctx context.Context, id string) (domain.Game, error) {
	raw, err := doRequest[json.RawMessage](ctx, c, c.baseURL+"/games?id="+url.QueryEscape(id))
	if err != nil {
		return domain.Game{}, err
	}
	body := bytes.TrimSpace(*raw)
	if len(body) == 0 || body[0] != '{' {
		return domain.Game{}, fmt.Errorf("%w: %s", domain.ErrGameNotFound, id)
	}

	var details gameDetailsResponse
	if err := json.Unmarshal(body, &details); err != nil {
		return domain.Game{}, fmt.Errorf("%w: decoding game %s: %v", domain.ErrServiceUnavailable, id, err)
	}
	if details.Info.Title == "" {
		return domain.Game{}, fmt.Errorf("%w: %s", domain.ErrGameNotFound, id)
	}

	game := domain.Game{
		ID:         id,
		Title:      details.Info.Title,
		SteamAppID: details.Info.SteamAppID,
		Image:      details.Info.Thumb,
	}
	if low := details.CheapestPriceEver; low.Price != "" {
		game.CheapestEver = &domain.PriceRecord{Price: parsePrice(low.Price)}
		if low.Date > 0 {
			game.CheapestEver.Date = time.Unix(low.Date, 0).UTC().Format(time.DateOnly)
		}
	}
	for _, d := range details.Deals {
		store, ok := domain.StoreByCheapSharkID(d.StoreID)
		if !ok {
			continue
		}
		game.Stores = append(game.Stores, toOffer(store, d.DealID, d.Price, d.RetailPrice, game.Title))
	}
	game.Image = ImageURL(game, ImageLibrary)
	return game, nil
}

func (c *CheapSharkClient) Stores(ctx context.Context) ([]domain.StoreInfo, error) {
	stores, err := doRequest[[]storeResult](ctx, c, c.baseURL+"/stores")
	if err != nil {
		return nil, err
	}
	var out []domain.StoreInfo
	for _, s := range *stores {
		store, ok := domain.StoreByCheapSharkID(s.StoreID)
		if !ok || s.IsActive != 1 {
			continue
		}
		out = append(out, store.Info())
	}
	return out, nil
}

// mergeDeals folds deals for the same game into one Game with an offer per store,
// keeping the order in which games first appear. Unsupported stores are dropped.
func (c *CheapSharkClient) mergeDeals(deals []dealResult) []domain.Game {
	games := make([]domain.Game, 0, len(deals))
	index := make(map[string]int, len(deals))
	dropped := 0

	for _, d := range deals {
		store, ok := domain.StoreByCheapSharkID(d.StoreID)
		if !ok {
			dropped++
			continue
		}
		offer := toOffer(store, d.DealID, d.SalePrice, d.NormalPrice, d.Title)

		if i, seen := index[d.GameID]; seen {
			if !hasStore(games[i].Stores, store) {
				games[i].Stores = append(games[i].Stores, offer)
			}
			continue
		}

		game := domain.Game{
			ID:          d.GameID,
			Title:       d.Title,
			SteamAppID:  d.SteamAppID,
			Image:       d.Thumb,
			CriticScore: atoi(d.MetacriticScore),
			Rating:      float64(atoi(d.SteamRatingPercent)) / 10,
			Stores:      []domain.StoreOffer{offer},
		}
		if d.ReleaseDate > 0 {
			game.ReleaseDate = time.Unix(d.ReleaseDate, 0).UTC().Format(time.DateOnly)
		}
		game.Image = ImageURL(game, ImageLibrary)
		index[d.GameID] = len(games)
		games = append(games, game)
	}

	if dropped > 0 {
		c.logger.Debug().Int("dropped", dropped).Msg("skipped deals from unsupported stores")
	}
	return games
}

func toOffer(store domain.Store, dealID, sale, normal, title string) domain.StoreOffer {
	offer := domain.StoreOffer{
		Store:  store,
		Price:  parsePrice(sale),
		DealID: dealID,
	}
	if original := parsePrice(normal); original > 0 {
		offer.OriginalPrice = domain.Float(original)
		if pct, ok := pricing.ComputeDiscount(original, offer.Price); ok {
			offer.Discount = domain.Int(pct)
		}
	}
	offer.URL = OfferURL(offer, title)
	return offer
}

func hasStore(offers []domain.StoreOffer, store domain.Store) bool {
	for _, o := range offers {
		if o.Store == store {
			return true
		}
	}
	return false
}

func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func pageSizeOr(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}

func doRequest[T any](ctx context.Context, client *CheapSharkClient, endpoint string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.ExternalAPITimeout)
	}
	if err := client.client.DoDeadline(req, resp, deadline); err != nil {
		client.logger.Warn().Err(err).Str("url", endpoint).Msg("deals API request failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		client.logger.Warn().Int("status", resp.StatusCode()).Str("url", endpoint).Msg("deals API returned an error")
		return nil, fmt.Errorf("%w: API error: %d", domain.ErrServiceUnavailable, resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrServiceUnavailable, err)
	}
	return &result, nil
}

type dealResult struct {
	InternalName       string `json:"internalName"`
	Title              string `json:"title"`
	DealID             string `json:"dealID"`
	StoreID            string `json:"storeID"`
	GameID             string `json:"gameID"`
	SalePrice          string `json:"salePrice"`
	NormalPrice        string `json:"normalPrice"`
	IsOnSale           string `json:"isOnSale"`
	Savings            string `json:"savings"`
	MetacriticScore    string `json:"metacriticScore"`
	SteamRatingText    string `json:"steamRatingText"`
	SteamRatingPercent string `json:"steamRatingPercent"`
	SteamAppID         string `json:"steamAppID"`
	ReleaseDate        int64  `json:"releaseDate"`
	LastChange         int64  `json:"lastChange"`
	Thumb              string `json:"thumb"`
}

type gameDetailsResponse struct {
	Info struct {
		Title      string `json:"title"`
		SteamAppID string `json:"steamAppID"`
		Thumb      string `json:"thumb"`
	} `json:"info"`
	CheapestPriceEver struct {
		Price string `json:"price"`
		Date  int64  `json:"date"`
	} `json:"cheapestPriceEver"`
	Deals []struct {
		StoreID     string `json:"storeID"`
		DealID      string `json:"dealID"`
		Price       string `json:"price"`
		RetailPrice string `json:"retailPrice"`
		Savings     string `json:"savings"`
	} `json:"deals"`
}

type storeResult struct {
	StoreID   string `json:"storeID"`
	StoreName string `json:"storeName"`
	IsActive  int    `json:"isActive"`
}

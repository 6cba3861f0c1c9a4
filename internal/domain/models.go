package domain

import (
	"strings"
	"time"
)

type Game struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Image       string       `json:"image,omitempty" yaml:"image"`
	Tags        []string     `json:"tags" yaml:"tags"`
	CriticScore int          `json:"criticScore" yaml:"critic_score"` // 0-100
	Rating      float64      `json:"rating" yaml:"rating"`            // 0-10
	Developer   string       `json:"developer,omitempty" yaml:"developer"`
	Publisher   string       `json:"publisher,omitempty" yaml:"publisher"`
	ReleaseDate string       `json:"releaseDate,omitempty" yaml:"release_date"` // YYYY-MM-DD
	Description string       `json:"description,omitempty" yaml:"description"`
	Platforms   []string     `json:"platforms,omitempty" yaml:"platforms"`
	SteamAppID  string       `json:"steamAppID,omitempty" yaml:"steam_app_id"`
	Stores      []StoreOffer `json:"stores" yaml:"stores"`
	// CheapestEver is the lowest USD price recorded across stores.
	CheapestEver *PriceRecord `json:"cheapestEver,omitempty" yaml:"cheapest_ever"`
}

// Released parses ReleaseDate; the zero time is returned when it is absent or malformed.
func (g Game) Released() time.Time {
	t, err := time.Parse(time.DateOnly, g.ReleaseDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (g Game) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

type StoreOffer struct {
	Store         Store    `json:"store" yaml:"store"`
	Price         float64  `json:"price" yaml:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty" yaml:"original_price"`
	Discount      *int     `json:"discount,omitempty" yaml:"discount"`
	DealID        string   `json:"dealID,omitempty" yaml:"deal_id"`
	URL           string   `json:"url,omitempty" yaml:"url"`
}

// OnSale reports whether the offer carries a discount that satisfies the
// offer invariant: original above current, or a 100% discount on a free offer.
func (o StoreOffer) OnSale() bool {
	if o.Discount == nil || *o.Discount <= 0 {
		return false
	}
	if o.Price == 0 {
		return true
	}
	return o.OriginalPrice != nil && *o.OriginalPrice > o.Price
}

type PriceRecord struct {
	Price float64 `json:"price" yaml:"price"`
	Date  string  `json:"date,omitempty" yaml:"date"` // YYYY-MM-DD
}

type Region struct {
	Code           string `json:"code" yaml:"code"`
	Name           string `json:"name" yaml:"name"`
	CurrencyCode   string `json:"currency" yaml:"currency"`
	CurrencySymbol string `json:"symbol" yaml:"symbol"`
}

type WishlistEntry struct {
	Game       Game      `json:"game"`
	DateAdded  time.Time `json:"dateAdded"`
	PriceAlert *float64  `json:"priceAlert,omitempty"`
}

type PriceAlert struct {
	ID          string    `json:"id"`
	GameID      string    `json:"gameId"`
	Title       string    `json:"title"`
	Target      float64   `json:"target"`
	Store       Store     `json:"store"`
	Price       float64   `json:"price"`
	Display     string    `json:"display"`
	Region      string    `json:"region"`
	TriggeredAt time.Time `json:"triggeredAt"`
}

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

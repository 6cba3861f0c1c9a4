package api

import (
	"fmt"
	"net/url"

	"game-deals/internal/domain"
)

type ImageKind string

const (
	ImageLibrary    ImageKind = "library"
	ImageHeader     ImageKind = "header"
	ImageCapsule    ImageKind = "capsule"
	ImageBackground ImageKind = "background"
)

const (
	steamCDN         = "https://cdn.akamai.steamstatic.com/steam/apps/%s/%s"
	placeholderImage = "https://via.placeholder.com/300x400/1a1a1a/888888?text=%s"
	dealRedirectURL  = "https://www.cheapshark.com/redirect?dealID=%s"
)

var steamImageFiles = map[ImageKind]string{
	ImageLibrary:    "library_600x900_2x.jpg",
	ImageHeader:     "header.jpg",
	ImageCapsule:    "capsule_616x353.jpg",
	ImageBackground: "library_hero.jpg",
}

// ImageURL picks Steam CDN artwork when the game has a Steam app id, then the
// source thumbnail, then a placeholder carrying the title.
func ImageURL(game domain.Game, kind ImageKind) string {
	if game.SteamAppID != "" && game.SteamAppID != "0" {
		file, ok := steamImageFiles[kind]
		if !ok {
			file = steamImageFiles[ImageLibrary]
		}
		return fmt.Sprintf(steamCDN, game.SteamAppID, file)
	}
	if game.Image != "" {
		return game.Image
	}
	return fmt.Sprintf(placeholderImage, url.QueryEscape(game.Title))
}

// OfferURL links to the deal when the source knows one, else to the store's search page.
func OfferURL(offer domain.StoreOffer, title string) string {
	if offer.URL != "" {
		return offer.URL
	}
	if offer.DealID != "" {
		return fmt.Sprintf(dealRedirectURL, url.QueryEscape(offer.DealID))
	}
	return offer.Store.SearchURL(title)
}

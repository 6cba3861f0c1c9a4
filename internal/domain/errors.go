package domain

import "errors"

var (
	ErrNoOffers           = errors.New("no store offers")
	ErrUnknownStore       = errors.New("unknown store")
	ErrUnknownRegion      = errors.New("unknown region")
	ErrGameNotFound       = errors.New("game not found")
	ErrInvalidGame        = errors.New("invalid game")
	ErrNotInWishlist      = errors.New("game not in wishlist")
	ErrInvalidPriceAlert  = errors.New("price alert target must be positive")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrInvalidSettings    = errors.New("invalid settings")
	ErrServiceUnavailable = errors.New("deals service unavailable")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrGameNotFound) || errors.Is(err, ErrNotInWishlist)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrUnknownStore) ||
		errors.Is(err, ErrUnknownRegion) ||
		errors.Is(err, ErrInvalidGame) ||
		errors.Is(err, ErrInvalidPriceAlert) ||
		errors.Is(err, ErrInvalidFilter) ||
		errors.Is(err, ErrInvalidSettings)
}

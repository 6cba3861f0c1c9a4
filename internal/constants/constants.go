package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	StorageTimeout     = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

// persisted preference keys
const (
	KeyUserName         = "userName"
	KeyCompletedWelcome = "completedWelcome"
	KeyTheme            = "theme"
	KeySelectedRegion   = "selectedRegion"
	KeyWishlist         = "wishlist"
	KeyNotifications    = "notifications"
)

var PersistedKeys = []string{
	KeyUserName,
	KeyCompletedWelcome,
	KeyTheme,
	KeySelectedRegion,
	KeyWishlist,
	KeyNotifications,
}

const (
	DealsPageSize     = 20
	SearchLimit       = 20
	FreeGamesLimit    = 20
	HotDealMinPercent = 50
	MaxFilterLimit    = 100
)

package domain

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeGame  Theme = "game"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeGame:
		return true
	}
	return false
}

type Notifications struct {
	PriceAlerts     bool `json:"priceAlerts"`
	NewDeals        bool `json:"newDeals"`
	FreeGames       bool `json:"freeGames"`
	WishlistUpdates bool `json:"wishlistUpdates"`
}

func DefaultNotifications() Notifications {
	return Notifications{
		PriceAlerts:     true,
		NewDeals:        false,
		FreeGames:       true,
		WishlistUpdates: true,
	}
}

type Settings struct {
	UserName         string        `json:"userName"`
	CompletedWelcome bool          `json:"completedWelcome"`
	Theme            Theme         `json:"theme"`
	SelectedRegion   string        `json:"selectedRegion"`
	Notifications    Notifications `json:"notifications"`
}

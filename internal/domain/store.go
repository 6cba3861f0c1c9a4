package domain

import (
	"fmt"
	"net/url"
	"strings"
)

type Store string

const (
	StoreSteam     Store = "steam"
	StoreEpic      Store = "epic"
	StoreGOG       Store = "gog"
	StoreHumble    Store = "humble"
	StoreFanatical Store = "fanatical"
)

// Stores lists every supported storefront in display order.
var Stores = []Store{StoreSteam, StoreEpic, StoreGOG, StoreHumble, StoreFanatical}

type StoreInfo struct {
	ID           Store  `json:"id"`
	Name         string `json:"name"`
	CheapSharkID string `json:"cheapSharkId"`
	searchURL    string
}

var storeInfo = map[Store]StoreInfo{
	StoreSteam:     {ID: StoreSteam, Name: "Steam", CheapSharkID: "1", searchURL: "https://store.steampowered.com/search/?term=%s"},
	StoreEpic:      {ID: StoreEpic, Name: "Epic Games", CheapSharkID: "25", searchURL: "https://store.epicgames.com/browse?q=%s"},
	StoreGOG:       {ID: StoreGOG, Name: "GOG", CheapSharkID: "7", searchURL: "https://www.gog.com/games?search=%s"},
	StoreHumble:    {ID: StoreHumble, Name: "Humble Store", CheapSharkID: "11", searchURL: "https://www.humblebundle.com/store/search?search=%s"},
	StoreFanatical: {ID: StoreFanatical, Name: "Fanatical", CheapSharkID: "15", searchURL: "https://www.fanatical.com/en/search?search=%s"},
}

// ParseStore accepts the canonical ids plus the long forms used by deal aggregators
// ("epicgames", "humblestore").
func ParseStore(s string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "steam":
		return StoreSteam, nil
	case "epic", "epicgames":
		return StoreEpic, nil
	case "gog":
		return StoreGOG, nil
	case "humble", "humblestore":
		return StoreHumble, nil
	case "fanatical":
		return StoreFanatical, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStore, s)
}

func StoreByCheapSharkID(id string) (Store, bool) {
	for _, s := range Stores {
		if storeInfo[s].CheapSharkID == id {
			return s, true
		}
	}
	return "", false
}

func (s Store) Valid() bool {
	_, ok := storeInfo[s]
	return ok
}

func (s Store) Info() StoreInfo {
	return storeInfo[s]
}

func (s Store) Name() string {
	if info, ok := storeInfo[s]; ok {
		return info.Name
	}
	return string(s)
}

// SearchURL links to the storefront search page for a title.
func (s Store) SearchURL(title string) string {
	info, ok := storeInfo[s]
	if !ok {
		return ""
	}
	return fmt.Sprintf(info.searchURL, url.QueryEscape(title))
}

package catalog

import (
	"sort"
	"strings"
)

type bySavings []ranked

func (a bySavings) Len() int           { return len(a) }
func (a bySavings) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a bySavings) Less(i, j int) bool { return a[i].discount > a[j].discount }

type byPrice []ranked

func (a byPrice) Len() int      { return len(a) }
func (a byPrice) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a byPrice) Less(i, j int) bool {
	if a[i].hasOffer != a[j].hasOffer {
		return a[i].hasOffer
	}
	return a[i].best < a[j].best
}

type byPriceDesc []ranked

func (a byPriceDesc) Len() int      { return len(a) }
func (a byPriceDesc) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a byPriceDesc) Less(i, j int) bool {
	if a[i].hasOffer != a[j].hasOffer {
		return a[i].hasOffer
	}
	return a[i].best > a[j].best
}

type byRating []ranked

func (a byRating) Len() int           { return len(a) }
func (a byRating) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byRating) Less(i, j int) bool { return a[i].game.Rating > a[j].game.Rating }

type byCritic []ranked

func (a byCritic) Len() int           { return len(a) }
func (a byCritic) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byCritic) Less(i, j int) bool { return a[i].game.CriticScore > a[j].game.CriticScore }

type byTitle []ranked

func (a byTitle) Len() int      { return len(a) }
func (a byTitle) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a byTitle) Less(i, j int) bool {
	return strings.ToLower(a[i].game.Title) < strings.ToLower(a[j].game.Title)
}

// byReleaseDate puts undated games last in both directions.
type byReleaseDate struct {
	games  []ranked
	newest bool
}

func (a byReleaseDate) Len() int      { return len(a.games) }
func (a byReleaseDate) Swap(i, j int) { a.games[i], a.games[j] = a.games[j], a.games[i] }
func (a byReleaseDate) Less(i, j int) bool {
	ti, tj := a.games[i].game.Released(), a.games[j].game.Released()
	if ti.IsZero() != tj.IsZero() {
		return !ti.IsZero()
	}
	if a.newest {
		return ti.After(tj)
	}
	return ti.Before(tj)
}

func sorter(kind string, games []ranked) sort.Interface {
	switch kind {
	case SortPriceAsc:
		return byPrice(games)
	case SortPriceDesc:
		return byPriceDesc(games)
	case SortRating:
		return byRating(games)
	case SortCritic:
		return byCritic(games)
	case SortTitle:
		return byTitle(games)
	case SortNewest:
		return byReleaseDate{games: games, newest: true}
	case SortOldest:
		return byReleaseDate{games: games}
	default:
		return bySavings(games)
	}
}

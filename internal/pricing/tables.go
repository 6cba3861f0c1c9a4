package pricing

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"game-deals/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed pricing.yaml
var defaultTables []byte

// RegionProfile is a store's multiplier over the USD base price for one region.
type RegionProfile struct {
	Multiplier float64 `yaml:"multiplier"`
	Currency   string  `yaml:"currency"`
}

type authenticEntry struct {
	Title  string                        `yaml:"title"`
	Prices map[string]map[string]float64 `yaml:"prices"`
}

type tablesFile struct {
	DefaultBasePrice float64                             `yaml:"default_base_price"`
	Regions          []domain.Region                     `yaml:"regions"`
	Authentic        []authenticEntry                    `yaml:"authentic"`
	StoreProfiles    map[string]map[string]RegionProfile `yaml:"store_profiles"`
	ConversionRates  map[string]float64                  `yaml:"conversion_rates"`
}

// Tables holds the three price sources. Authentic is keyed by normalized title,
// then store, then region code.
type Tables struct {
	DefaultBasePrice float64
	Regions          []domain.Region
	Authentic        map[string]map[domain.Store]map[string]float64
	StoreProfiles    map[domain.Store]map[string]RegionProfile
	ConversionRates  map[string]float64
}

func DefaultTables() (*Tables, error) {
	return ParseTables(defaultTables)
}

// LoadTables reads a pricing file from disk. An empty path yields the embedded tables.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pricing file: %w", err)
	}
	return ParseTables(data)
}

func ParseTables(data []byte) (*Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing pricing tables: %w", err)
	}

	t := &Tables{
		DefaultBasePrice: f.DefaultBasePrice,
		Authentic:        make(map[string]map[domain.Store]map[string]float64, len(f.Authentic)),
		StoreProfiles:    make(map[domain.Store]map[string]RegionProfile, len(f.StoreProfiles)),
		ConversionRates:  make(map[string]float64, len(f.ConversionRates)),
	}
	if t.DefaultBasePrice <= 0 {
		t.DefaultBasePrice = DefaultBasePrice
	}

	for _, r := range f.Regions {
		r.Code = normalizeRegion(r.Code)
		r.CurrencyCode = strings.ToUpper(r.CurrencyCode)
		if r.Code == "" {
			return nil, fmt.Errorf("pricing tables: region without code")
		}
		t.Regions = append(t.Regions, r)
	}

	for _, entry := range f.Authentic {
		key := NormalizeTitle(entry.Title)
		if key == "" {
			return nil, fmt.Errorf("pricing tables: authentic entry %q normalizes to an empty key", entry.Title)
		}
		byStore := t.Authentic[key]
		if byStore == nil {
			byStore = make(map[domain.Store]map[string]float64)
			t.Authentic[key] = byStore
		}
		for storeName, prices := range entry.Prices {
			store, err := domain.ParseStore(storeName)
			if err != nil {
				return nil, fmt.Errorf("pricing tables: %q: %w", entry.Title, err)
			}
			byRegion := make(map[string]float64, len(prices))
			for region, price := range prices {
				if price < 0 {
					return nil, fmt.Errorf("pricing tables: %q %s %s: negative price", entry.Title, store, region)
				}
				byRegion[normalizeRegion(region)] = price
			}
			byStore[store] = byRegion
		}
	}

	for storeName, profiles := range f.StoreProfiles {
		store, err := domain.ParseStore(storeName)
		if err != nil {
			return nil, fmt.Errorf("pricing tables: store profiles: %w", err)
		}
		byRegion := make(map[string]RegionProfile, len(profiles))
		for region, p := range profiles {
			if p.Multiplier < 0 {
				return nil, fmt.Errorf("pricing tables: %s %s: negative multiplier", store, region)
			}
			p.Currency = strings.ToUpper(p.Currency)
			byRegion[normalizeRegion(region)] = p
		}
		t.StoreProfiles[store] = byRegion
	}

	for region, rate := range f.ConversionRates {
		if rate < 0 {
			return nil, fmt.Errorf("pricing tables: %s: negative conversion rate", region)
		}
		t.ConversionRates[normalizeRegion(region)] = rate
	}

	return t, nil
}

func normalizeRegion(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

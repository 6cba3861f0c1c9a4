package pricing

import "testing"

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		price    float64
		currency string
		symbol   string
		want     string
	}{
		{59.99, "USD", "$", "$59.99"},
		{5, "EUR", "€", "€5.00"},
		{49.5, "GBP", "£", "£49.50"},
		{2999, "INR", "₹", "₹2999"},
		{23.6, "INR", "₹", "₹24"},
		{79.99, "CAD", "C$", "C$79.99"},
		{89.95, "AUD", "A$", "A$89.95"},
		{12.3, "JPY", "¥", "¥12.30"},
		{12.3, "inr", "₹", "₹12"},
	}
	for _, c := range cases {
		if got := FormatPrice(c.price, c.currency, c.symbol); got != c.want {
			t.Errorf("FormatPrice(%v, %s) = %q, want %q", c.price, c.currency, got, c.want)
		}
	}
}

func TestFormatPriceFreeForEveryCurrency(t *testing.T) {
	for _, code := range []string{"USD", "EUR", "GBP", "INR", "CAD", "AUD", "XYZ", ""} {
		if got := FormatPrice(0, code, "?"); got != FreeLabel {
			t.Errorf("FormatPrice(0, %q) = %q, want FREE", code, got)
		}
	}
}

func TestComputeDiscount(t *testing.T) {
	cases := []struct {
		original, current float64
		want              int
		ok                bool
	}{
		{59.99, 29.99, 50, true},
		{59.99, 59.99, 0, false},
		{19.99, 24.99, 0, false},
		{19.99, 0, 100, true},
		{0, 0, 0, false},
		{100, 99.9, 0, false},
		{100, 99, 1, true},
		{29.99, 24.99, 17, true},
	}
	for _, c := range cases {
		got, ok := ComputeDiscount(c.original, c.current)
		if got != c.want || ok != c.ok {
			t.Errorf("ComputeDiscount(%v, %v) = %d, %v; want %d, %v", c.original, c.current, got, ok, c.want, c.ok)
		}
	}
}

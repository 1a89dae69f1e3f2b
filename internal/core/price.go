package core

import "strings"

// Price is a contract price tier token.
//
// A tier is viewed three ways: the raw token that is stored, the human label
// shown and exported, and the numeric value used for sorting.
type Price string

const (
	Price121800 Price = "121800"
	Price155000 Price = "155000-16500"
	Price175000 Price = "175000"
)

type priceTier struct {
	token   Price
	label   string
	value   int
	aliases []string
}

// The 155000-16500 tier sorts by its negotiated price, not either bound of its label.
var priceTiers = []priceTier{
	{
		token:   Price121800,
		label:   "121 800 DH",
		value:   121800,
		aliases: []string{"121 800", "121800"},
	},
	{
		token:   Price155000,
		label:   "155 000 - 165 000 DH",
		value:   138500,
		aliases: []string{"155 000", "155000-16500", "138 500", "138500"},
	},
	{
		token:   Price175000,
		label:   "175 000 DH",
		value:   175000,
		aliases: []string{"175 000", "175000"},
	},
}

// Prices returns the known tiers in ascending sort order.
func Prices() []Price {
	out := make([]Price, len(priceTiers))
	for i, t := range priceTiers {
		out[i] = t.token
	}
	return out
}

func (p Price) tier() (priceTier, bool) {
	for _, t := range priceTiers {
		if t.token == p {
			return t, true
		}
	}
	return priceTier{}, false
}

// Known reports whether p is one of the three tier tokens.
func (p Price) Known() bool {
	_, ok := p.tier()
	return ok
}

// Label returns the human-readable label, or the raw token when p is unknown.
func (p Price) Label() string {
	if t, ok := p.tier(); ok {
		return t.label
	}
	return string(p)
}

// SortValue returns the numeric tier value; unknown tokens sort as 0.
func (p Price) SortValue() int {
	if t, ok := p.tier(); ok {
		return t.value
	}
	return 0
}

// ParsePriceLabel maps a token or a human-formatted label back to its token.
// Input that matches no tier is returned trimmed, unchanged otherwise.
func ParsePriceLabel(s string) Price {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	normalized := strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(s)
	for _, t := range priceTiers {
		for _, alias := range t.aliases {
			if strings.Contains(normalized, alias) {
				return t.token
			}
		}
	}
	return Price(s)
}

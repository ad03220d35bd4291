package models

// Product mirrors the catalog service's product shape: variants carry the
// purchasable units, each priced in minor currency units per currency.
type Product struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Thumbnail   string           `json:"thumbnail"`
	Variants    []ProductVariant `json:"variants"`
}

type ProductVariant struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Prices []ProductPrice `json:"prices"`
}

type ProductPrice struct {
	Amount       int64  `json:"amount"` // minor units (øre, cents)
	CurrencyCode string `json:"currency_code"`
}

// DisplayPrice returns the first variant's price in major units for the
// given currency, or (0, false) when the product has no price in it.
func (p Product) DisplayPrice(currency string) (float64, bool) {
	for _, v := range p.Variants {
		for _, pr := range v.Prices {
			if pr.CurrencyCode == currency {
				return float64(pr.Amount) / 100, true
			}
		}
	}
	return 0, false
}

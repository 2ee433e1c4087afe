package search

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/dsjohal14/quicksearch/internal/scope/catalog"
	"github.com/dsjohal14/quicksearch/internal/suggest"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Presenter turns catalog products into suggestion items: it formats
// prices, resolves image and product URLs and builds review summaries.
type Presenter struct {
	BaseURL          string
	MediaBaseURL     string
	PlaceholderImage string
}

// Item resolves a product for display
func (p Presenter) Item(prod catalog.Product) suggest.Item {
	productURL := p.ProductURL(prod)
	return suggest.Item{
		ID:      prod.ID,
		Name:    prod.Name,
		Price:   FormatPrice(prod.Price, prod.Currency),
		Reviews: ReviewSummary(prod, productURL),
		Image:   p.ImageURL(prod),
		URL:     productURL,
	}
}

// ProductURL returns the storefront URL of a product
func (p Presenter) ProductURL(prod catalog.Product) string {
	if prod.URLKey == "" {
		return joinURL(p.BaseURL, "/catalog/product/view/id/"+url.PathEscape(prod.ID))
	}
	return joinURL(p.BaseURL, url.PathEscape(prod.URLKey)+".html")
}

// ImageURL returns the small image URL of a product
func (p Presenter) ImageURL(prod catalog.Product) string {
	img := prod.Image
	if img == "" {
		img = p.PlaceholderImage
	}
	if img == "" || strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
		return img
	}
	return joinURL(p.MediaBaseURL, img)
}

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice formats a price in minor units, e.g. 129900 USD -> "$1,299.00".
// The number of minor digits follows the ISO 4217 scale of the currency, so
// 150000 KRW is "₩150,000". Unknown codes are shown with two decimals.
func FormatPrice(minor int64, code string) string {
	code = strings.ToUpper(code)
	if code == "" {
		code = "USD"
	}

	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return sign + formatMinor(minor, 2) + " " + code
	}

	scale, _ := currency.Standard.Rounding(unit)
	amount := formatMinor(minor, scale)

	symbol := currencySymbol(unit)
	if symbol == "" || symbol == unit.String() {
		return sign + amount + " " + unit.String()
	}
	return sign + symbol + amount
}

func formatMinor(minor int64, scale int) string {
	value := float64(minor)
	for i := 0; i < scale; i++ {
		value /= 10
	}
	return pricePrinter.Sprint(number.Decimal(value, number.Scale(scale)))
}

// currencySymbol returns the English symbol of unit, e.g. "$" or "€"
func currencySymbol(unit currency.Unit) string {
	s := pricePrinter.Sprint(currency.Symbol(unit.Amount(0)))
	if i := strings.IndexByte(s, ' '); i > 0 {
		return s[:i]
	}
	return ""
}

// ReviewSummary returns the short review summary markup, or "" when the
// product has no reviews.
func ReviewSummary(prod catalog.Product, productURL string) string {
	if prod.ReviewCount <= 0 {
		return ""
	}

	rating := prod.RatingSummary
	if rating < 0 {
		rating = 0
	}
	if rating > 100 {
		rating = 100
	}

	label := "Reviews"
	if prod.ReviewCount == 1 {
		label = "Review"
	}

	return fmt.Sprintf(
		`<div class="product-reviews-summary short">`+
			`<div class="rating-summary"><div class="rating-result" title="%d%%"><span style="width:%d%%"><span>%d%%</span></span></div></div>`+
			`<div class="reviews-actions"><a class="action view" href="%s#reviews">%d %s</a></div>`+
			`</div>`,
		rating, rating, rating, html.EscapeString(productURL), prod.ReviewCount, label,
	)
}

package cart

import (
	"errors"
	"sort"
	"strings"

	"github.com/flashmarket/storefront/internal/domain/pricing"
)

var ErrInvalidCode = errors.New("cart: invalid discount code")

// discountCodes is the recognized code table. Internal policy for now; the
// storefront has no runtime code administration.
var discountCodes = map[string]pricing.Discount{
	"FLASH10":  {Type: pricing.DiscountPercentage, Value: 10, Description: "10% off"},
	"FLASH20":  {Type: pricing.DiscountPercentage, Value: 20, Description: "20% off"},
	"FREESHIP": {Type: pricing.DiscountFixed, Value: 5, Description: "Free shipping"},
}

// LookupDiscountCode resolves a code case-insensitively.
func LookupDiscountCode(code string) (pricing.Discount, bool) {
	d, ok := discountCodes[strings.ToUpper(strings.TrimSpace(code))]
	return d, ok
}

// DiscountCodes lists the recognized codes, sorted, for display.
func DiscountCodes() []string {
	out := make([]string, 0, len(discountCodes))
	for code := range discountCodes {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

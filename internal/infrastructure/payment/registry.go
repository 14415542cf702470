package payment

import (
	dompay "github.com/flashmarket/storefront/internal/domain/payment"
)

// Methods returns every supported payment method keyed by its id.
func Methods() map[string]dompay.Method {
	methods := []dompay.Method{
		NewCard(),
		NewPayPal(),
		NewSINPE(),
		NewBitcoin(),
		NewBankTransfer(),
	}
	out := make(map[string]dompay.Method, len(methods))
	for _, m := range methods {
		out[m.Info().ID] = m
	}
	return out
}

package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	dompay "github.com/flashmarket/storefront/internal/domain/payment"
)

// usdPerBTC is a fixed demo exchange rate.
const usdPerBTC = 65000.0

// Bitcoin hands out a one-off address and waits for on-chain confirmation.
type Bitcoin struct{}

func NewBitcoin() Bitcoin { return Bitcoin{} }

func (Bitcoin) Info() dompay.Info {
	return dompay.Info{
		ID:         "bitcoin",
		Name:       "Bitcoin (BTC)",
		FeePercent: 1.5,
		Fields:     []string{"email"},
	}
}

func (Bitcoin) Validate(details map[string]string) []string {
	var problems []string
	if !emailPattern.MatchString(strings.TrimSpace(details["email"])) {
		problems = append(problems, "a valid email is required for the confirmation notice")
	}
	return problems
}

func (b Bitcoin) Process(ctx context.Context, amount float64, details map[string]string) (*dompay.Receipt, error) {
	_ = ctx
	address := "bc1q" + strings.ReplaceAll(uuid.NewString(), "-", "")[:28]
	btc := amount / usdPerBTC

	return &dompay.Receipt{
		TransactionID:        "BTC-" + uuid.NewString(),
		Method:               b.Info().Name,
		Amount:               amount,
		RequiresConfirmation: true,
		Reference:            address,
		Instructions: []string{
			"Open your Bitcoin wallet",
			fmt.Sprintf("Send exactly %.8f BTC to %s", btc, address),
			"The transaction confirms in 10-30 minutes",
			"You will receive an email once the payment confirms",
		},
		ProcessedAt: time.Now().UTC(),
	}, nil
}

package payment

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	dompay "github.com/flashmarket/storefront/internal/domain/payment"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// PayPal initiates a redirect flow; the shopper completes payment on the
// external site.
type PayPal struct{}

func NewPayPal() PayPal { return PayPal{} }

func (PayPal) Info() dompay.Info {
	return dompay.Info{
		ID:         "paypal",
		Name:       "PayPal",
		FeePercent: 3.4,
		Fields:     []string{"email"},
	}
}

func (PayPal) Validate(details map[string]string) []string {
	var problems []string
	if !emailPattern.MatchString(strings.TrimSpace(details["email"])) {
		problems = append(problems, "a valid email is required")
	}
	return problems
}

func (p PayPal) Process(ctx context.Context, amount float64, details map[string]string) (*dompay.Receipt, error) {
	_ = ctx
	orderID := "PP-" + uuid.NewString()

	return &dompay.Receipt{
		TransactionID:    orderID,
		Method:           p.Info().Name,
		Amount:           amount,
		RequiresRedirect: true,
		RedirectURL:      fmt.Sprintf("https://www.paypal.com/checkoutnow?token=%s", orderID),
		Instructions: []string{
			"Continue to PayPal",
			"Log in to your PayPal account",
			"Confirm the payment",
			"You will be redirected back to the store",
		},
		ProcessedAt: time.Now().UTC(),
	}, nil
}

package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	dompay "github.com/flashmarket/storefront/internal/domain/payment"
)

// BankTransfer hands out account data and a reference; the order is
// fulfilled once the transfer is confirmed out of band. No fee.
type BankTransfer struct{}

func NewBankTransfer() BankTransfer { return BankTransfer{} }

func (BankTransfer) Info() dompay.Info {
	return dompay.Info{
		ID:         "bank_transfer",
		Name:       "Bank Transfer",
		FeePercent: 0,
		Fields:     []string{"name", "email"},
	}
}

func (BankTransfer) Validate(details map[string]string) []string {
	var problems []string
	if len(strings.TrimSpace(details["name"])) < 3 {
		problems = append(problems, "account holder name is required")
	}
	if !emailPattern.MatchString(strings.TrimSpace(details["email"])) {
		problems = append(problems, "a valid email is required for the receipt")
	}
	return problems
}

func (t BankTransfer) Process(ctx context.Context, amount float64, details map[string]string) (*dompay.Receipt, error) {
	_ = ctx
	reference := "REF-" + strings.ToUpper(uuid.NewString()[:12])

	return &dompay.Receipt{
		TransactionID:        reference,
		Method:               t.Info().Name,
		Amount:               amount,
		RequiresConfirmation: true,
		Reference:            reference,
		Instructions: []string{
			"Log in to your online banking",
			"Transfer to account IBAN CR05015202001026284066",
			"Use the reference as the transfer description",
			"Your order ships once the transfer is confirmed (24-48 hours)",
		},
		ProcessedAt: time.Now().UTC(),
	}, nil
}

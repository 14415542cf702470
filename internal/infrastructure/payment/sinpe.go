package payment

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	dompay "github.com/flashmarket/storefront/internal/domain/payment"
)

var phonePattern = regexp.MustCompile(`^\d{8}$`)

// usdToCRC is the fixed demo conversion rate for SINPE instructions.
const usdToCRC = 520.0

// SINPE generates a SINPE Móvil code the shopper confirms from their banking
// app. No fee.
type SINPE struct{}

func NewSINPE() SINPE { return SINPE{} }

func (SINPE) Info() dompay.Info {
	return dompay.Info{
		ID:         "sinpe",
		Name:       "SINPE Móvil",
		FeePercent: 0,
		Fields:     []string{"phone", "national_id"},
	}
}

func (SINPE) Validate(details map[string]string) []string {
	var problems []string
	if !phonePattern.MatchString(details["phone"]) {
		problems = append(problems, "phone must have 8 digits")
	}
	if details["national_id"] == "" {
		problems = append(problems, "national id is required")
	}
	return problems
}

func (s SINPE) Process(ctx context.Context, amount float64, details map[string]string) (*dompay.Receipt, error) {
	_ = ctx
	code := uuid.NewString()[:8]

	return &dompay.Receipt{
		TransactionID:        "SINPE-" + uuid.NewString(),
		Method:               s.Info().Name,
		Amount:               amount,
		RequiresConfirmation: true,
		ConfirmationCode:     code,
		Instructions: []string{
			"Open your mobile banking app",
			"Select SINPE Móvil",
			"Enter the code " + code,
			fmt.Sprintf("Confirm the payment of ₡%.2f", amount*usdToCRC),
		},
		ProcessedAt: time.Now().UTC(),
	}, nil
}

package payment

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	dompay "github.com/flashmarket/storefront/internal/domain/payment"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	expiryPattern     = regexp.MustCompile(`^\d{2}/\d{2}$`)
)

// Card settles synchronously, simulating a credit/debit card gateway.
type Card struct{}

func NewCard() Card { return Card{} }

func (Card) Info() dompay.Info {
	return dompay.Info{
		ID:         "card",
		Name:       "Credit/Debit Card",
		FeePercent: 2.5,
		Fields:     []string{"holder", "number", "cvv", "expiry"},
	}
}

func (Card) Validate(details map[string]string) []string {
	var problems []string

	if holder := strings.TrimSpace(details["holder"]); len(holder) < 3 {
		problems = append(problems, "card holder name is required")
	}

	number := strings.ReplaceAll(details["number"], " ", "")
	if !cardNumberPattern.MatchString(number) {
		problems = append(problems, "card number must have 16 digits")
	} else if !luhnValid(number) {
		problems = append(problems, "card number failed checksum")
	}

	if !cvvPattern.MatchString(details["cvv"]) {
		problems = append(problems, "cvv must have 3 or 4 digits")
	}

	if !expiryPattern.MatchString(details["expiry"]) {
		problems = append(problems, "expiry must use MM/YY format")
	} else {
		parts := strings.Split(details["expiry"], "/")
		month, _ := strconv.Atoi(parts[0])
		year, _ := strconv.Atoi(parts[1])
		if month < 1 || month > 12 {
			problems = append(problems, "expiry month is invalid")
		} else if expired(month, 2000+year) {
			problems = append(problems, "card is expired")
		}
	}

	return problems
}

func (c Card) Process(ctx context.Context, amount float64, details map[string]string) (*dompay.Receipt, error) {
	_ = ctx
	number := strings.ReplaceAll(details["number"], " ", "")

	return &dompay.Receipt{
		TransactionID: "TXN-" + uuid.NewString(),
		Method:        c.Info().Name,
		Amount:        amount,
		Reference:     "**** " + number[len(number)-4:],
		ProcessedAt:   time.Now().UTC(),
	}, nil
}

// luhnValid runs the Luhn checksum over a digits-only card number.
func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func expired(month, year int) bool {
	now := time.Now().UTC()
	endOfMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return now.After(endOfMonth)
}

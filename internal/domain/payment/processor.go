package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrAmountInvalid = errors.New("payment: amount must be greater than zero")

// Info describes a payment method to the checkout UI.
type Info struct {
	ID         string
	Name       string
	FeePercent float64
	Fields     []string
}

// Receipt is the method-specific outcome of a settled (or initiated) payment.
// Methods that cannot settle synchronously flag the follow-up they need:
// a redirect to an external wallet, or an out-of-band confirmation.
type Receipt struct {
	TransactionID        string
	Method               string
	Amount               float64
	Fee                  float64
	RequiresRedirect     bool
	RequiresConfirmation bool
	RedirectURL          string
	ConfirmationCode     string
	Reference            string
	Instructions         []string
	ProcessedAt          time.Time
}

// ValidationError carries the per-field problems a method found with the
// submitted details.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "payment: invalid details: " + strings.Join(e.Problems, "; ")
}

// Method is the implementation side of the bridge: one concrete way to move
// money.
type Method interface {
	Info() Info
	Validate(details map[string]string) []string
	Process(ctx context.Context, amount float64, details map[string]string) (*Receipt, error)
}

// Processor is the abstraction side: it validates, computes the method fee,
// and delegates settlement. The method can be swapped at runtime while the
// shopper changes their mind.
type Processor struct {
	method Method
}

func NewProcessor(method Method) *Processor {
	return &Processor{method: method}
}

// SwitchMethod swaps the active payment method.
func (p *Processor) SwitchMethod(method Method) {
	p.method = method
}

func (p *Processor) MethodInfo() Info {
	return p.method.Info()
}

// Fee returns the method's cut of the given amount.
func (p *Processor) Fee(amount float64) float64 {
	return amount * p.method.Info().FeePercent / 100
}

// Quote breaks an amount into subtotal, fee, and total to charge.
func (p *Processor) Quote(amount float64) (subtotal, fee, total float64) {
	fee = p.Fee(amount)
	return amount, fee, amount + fee
}

// Pay validates the details, then settles amount plus fee with the active
// method. A *ValidationError is returned when the details are rejected.
func (p *Processor) Pay(ctx context.Context, amount float64, details map[string]string) (*Receipt, error) {
	if amount <= 0 {
		return nil, ErrAmountInvalid
	}
	if problems := p.method.Validate(details); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	_, fee, total := p.Quote(amount)
	receipt, err := p.method.Process(ctx, total, details)
	if err != nil {
		return nil, fmt.Errorf("payment: %s: %w", p.method.Info().ID, err)
	}
	receipt.Fee = fee
	return receipt, nil
}

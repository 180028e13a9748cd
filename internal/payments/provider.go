package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/findersfee/internal/model"
)

// ChargeRequest asks a mobile money provider to collect from a phone.
type ChargeRequest struct {
	Method   string
	Phone    string
	Amount   int64
	Currency string
	ClaimID  int64
}

// Provider starts mobile money collections. Charge returns the provider's
// reference once the request is accepted; settlement arrives later.
type Provider interface {
	Charge(ctx context.Context, req ChargeRequest) (string, error)
}

// SimulatedProvider accepts every well-formed request and hands out random
// references. It stands in for MTN MoMo and Airtel Money in development.
type SimulatedProvider struct {
	// Decline, when set, rejects charges from this phone number.
	Decline string
}

// Charge implements Provider.
func (p *SimulatedProvider) Charge(ctx context.Context, req ChargeRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch req.Method {
	case model.PaymentMethodMTN, model.PaymentMethodAirtel:
	default:
		return "", fmt.Errorf("unsupported method %q", req.Method)
	}
	if req.Amount <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}
	if p.Decline != "" && req.Phone == p.Decline {
		return "", fmt.Errorf("charge declined for %s", req.Phone)
	}
	return "MM-" + uuid.NewString(), nil
}

package checkout

import (
	"github.com/cockroachdb/errors"
)

// GatewayError is returned when the gateway refused or failed a charge
// creation. FallbackURL is the static payment link the buyer can use instead.
type GatewayError struct {
	Err         error
	FallbackURL string
}

func (e *GatewayError) Error() string {
	return "payment creation failed: " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// AsGatewayError extracts a *GatewayError from err's chain.
func AsGatewayError(err error) (*GatewayError, bool) {
	var gw *GatewayError
	if errors.As(err, &gw) {
		return gw, true
	}
	return nil, false
}

// internal/ledger/errors.go
package ledger

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExists   = errors.New("token already exists")
)

// InvariantViolation is the panic value raised when a mutation would break a
// reserve invariant. It signals a pricing defect, never bad user input.
type InvariantViolation struct {
	Token  common.Address
	Rule   string
	Detail string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("ledger invariant %q violated for %s: %s", v.Rule, v.Token.Hex(), v.Detail)
}

func violate(token common.Address, rule, format string, args ...any) {
	panic(&InvariantViolation{Token: token, Rule: rule, Detail: fmt.Sprintf(format, args...)})
}

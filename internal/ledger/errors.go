package ledger

import "github.com/pkg/errors"

// Failed operations leave the ledger untouched and return one of these,
// wrapped with the offending identifier or field. Match with errors.Is.
var (
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid request status transition")
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrRequestNotFound   = errors.New("material request not found")
	ErrInvalidValue      = errors.New("invalid value")
	ErrDuplicateItem     = errors.New("inventory item already exists")
)

func missing(field string) error {
	return errors.Wrap(ErrMissingField, field)
}

package ledger

import "errors"

// All failures are recoverable at the request boundary: the enclosing transaction is
// rolled back and the store is left unchanged.
var (
	ErrNotFound          = errors.New("referenced record not found")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("not enough stock available")
	ErrAlreadyResolved   = errors.New("already resolved")
	ErrLockImmutable     = errors.New("cannot update locked drugs")
)

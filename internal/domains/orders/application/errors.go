package application

import (
	"errors"
	"fmt"

	"github.com/hknkuvan/spree/internal/domains/orders/domain"
)

// ErrMergeConflict signals that two carts could not be merged. The merge
// is skipped and both orders are preserved; the associator never lets
// this escape to the caller's happy path.
var ErrMergeConflict = errors.New("orders cannot be merged")

func mergeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrCurrencyMismatch) ||
		errors.Is(err, domain.ErrCrossStoreMerge) ||
		errors.Is(err, domain.ErrNotCart) {
		return fmt.Errorf("%w: %w", ErrMergeConflict, err)
	}
	return err
}

package application

import (
	"errors"
	"fmt"

	"github.com/hknkuvan/spree/internal/domains/stores/domain"
	"github.com/hknkuvan/spree/internal/domains/stores/ports"
)

var (
	// ErrValidation signals the store violated a required-field invariant.
	ErrValidation = errors.New("invalid store input")
	// ErrLastStore signals a blocked deletion of the only remaining store.
	ErrLastStore = errors.New("cannot delete the only remaining store")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNameRequired) ||
		errors.Is(err, domain.ErrURLRequired) ||
		errors.Is(err, domain.ErrCodeRequired) ||
		errors.Is(err, domain.ErrCurrencyRequired) ||
		errors.Is(err, domain.ErrCountryRequired) ||
		errors.Is(err, domain.ErrMailFromRequired) ||
		errors.Is(err, domain.ErrInvalidMailFrom) ||
		errors.Is(err, ports.ErrCodeTaken) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if errors.Is(err, ports.ErrLastStore) {
		return fmt.Errorf("%w: %w", ErrLastStore, err)
	}
	return err
}

package providers

import (
	"context"
	"errors"

	"github.com/dharmasatrya/fareradar/internal/models"
)

// Provider returns one-way offers for req in the raw upstream shape. Adapters
// do not normalize; that happens once, centrally.
type Provider interface {
	Name() string
	Search(ctx context.Context, req models.SearchRequest) ([]models.RawOffer, error)
}

var (
	ErrTemporaryFailure = errors.New("provider temporarily unavailable")
	ErrUnauthorized     = errors.New("provider rejected credentials")
)

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

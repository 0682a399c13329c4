package geocode

import (
	"context"
	"errors"
	"log"
)

// ErrUnavailable means no provider could resolve the coordinates. Callers
// treat it as non-fatal: address fields simply stay unset.
var ErrUnavailable = errors.New("geocode: no provider available")

type Result struct {
	City             string
	Street           string
	FormattedAddress string
	PlusCode         string
}

type Provider interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*Result, error)
}

// Chain tries providers in order and returns the first successful result.
type Chain []Provider

func (c Chain) ReverseGeocode(ctx context.Context, lat, lng float64) (*Result, error) {
	for _, p := range c {
		res, err := p.ReverseGeocode(ctx, lat, lng)
		if err == nil {
			return res, nil
		}
		log.Printf("geocode provider failed, trying next: %v", err)
	}
	return nil, ErrUnavailable
}

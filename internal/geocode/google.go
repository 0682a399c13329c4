package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type GoogleProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewGoogleProvider(apiKey string) *GoogleProvider {
	return &GoogleProvider{
		BaseURL: "https://maps.googleapis.com",
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type googleGeocodeResp struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
	PlusCode struct {
		GlobalCode string `json:"global_code"`
	} `json:"plus_code"`
}

func (p *GoogleProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*Result, error) {
	if p.APIKey == "" {
		return nil, errors.New("google: api key not configured")
	}
	if p.Client == nil {
		return nil, errors.New("google: http client is nil")
	}

	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	q.Set("key", p.APIKey)
	q.Set("language", "pt-BR")

	reqURL := fmt.Sprintf("%s/maps/api/geocode/json?%s", p.BaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("google: status %d", resp.StatusCode)
	}

	var decoded googleGeocodeResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if decoded.Status != "OK" || len(decoded.Results) == 0 {
		return nil, fmt.Errorf("google: geocode status %q", decoded.Status)
	}

	first := decoded.Results[0]
	out := &Result{
		FormattedAddress: first.FormattedAddress,
		PlusCode:         decoded.PlusCode.GlobalCode,
	}

	var route, streetNumber string
	for _, comp := range first.AddressComponents {
		for _, typ := range comp.Types {
			switch typ {
			case "locality":
				out.City = comp.LongName
			case "administrative_area_level_2":
				if out.City == "" {
					out.City = comp.LongName
				}
			case "route":
				route = comp.LongName
			case "street_number":
				streetNumber = comp.LongName
			}
		}
	}

	switch {
	case route != "" && streetNumber != "":
		out.Street = route + ", " + streetNumber
	case route != "":
		out.Street = route
	default:
		out.Street = first.FormattedAddress
	}

	return out, nil
}

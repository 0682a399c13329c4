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

// NominatimProvider is the keyless OpenStreetMap fallback.
type NominatimProvider struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

func NewNominatimProvider(baseURL string) *NominatimProvider {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &NominatimProvider{
		BaseURL:   baseURL,
		UserAgent: "GeoLoc193/1.0",
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResp struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		Road         string `json:"road"`
		Pedestrian   string `json:"pedestrian"`
		Path         string `json:"path"`
	} `json:"address"`
	Error string `json:"error,omitempty"`
}

func (p *NominatimProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*Result, error) {
	if p.Client == nil {
		return nil, errors.New("nominatim: http client is nil")
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))
	q.Set("accept-language", "pt-BR")

	reqURL := fmt.Sprintf("%s/reverse?%s", p.BaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("nominatim: status %d", resp.StatusCode)
	}

	var decoded nominatimResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if decoded.Error != "" {
		return nil, errors.New("nominatim: " + decoded.Error)
	}

	city := decoded.Address.City
	if city == "" {
		city = decoded.Address.Town
	}
	if city == "" {
		city = decoded.Address.Village
	}
	if city == "" {
		city = decoded.Address.Municipality
	}

	street := decoded.Address.Road
	if street == "" {
		street = decoded.Address.Pedestrian
	}
	if street == "" {
		street = decoded.Address.Path
	}

	return &Result{
		City:             city,
		Street:           street,
		FormattedAddress: decoded.DisplayName,
	}, nil
}

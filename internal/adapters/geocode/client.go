package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reperio/internal/domain"
)

// Client resolves postal addresses through a BAN-style geocoding endpoint
// (api-adresse compatible). Unresolvable addresses never surface as errors;
// they degrade to a tagged department-centroid fallback.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     logger,
	}
}

type banResponse struct {
	Features []banFeature `json:"features"`
}

type banFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lng, lat]
	} `json:"geometry"`
	Properties struct {
		Type string `json:"type"`
	} `json:"properties"`
}

func (c *Client) Geocode(ctx context.Context, address string, loc domain.Locality) domain.GeocodeResult {
	parts := []string{address, loc.Name}
	if loc.PostalCode != "" {
		parts = append(parts, loc.PostalCode)
	}
	parts = append(parts, "France")
	query := strings.Join(parts, ", ")

	res, err := c.lookup(ctx, query)
	if err != nil {
		c.log.Warn("geocode failed, using fallback", "query", query, "err", err)
		return Fallback(address, loc)
	}
	return res
}

func (c *Client) lookup(ctx context.Context, query string) (domain.GeocodeResult, error) {
	v := url.Values{}
	v.Set("q", query)
	v.Set("limit", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+v.Encode(), nil)
	if err != nil {
		return domain.GeocodeResult{}, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return domain.GeocodeResult{}, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return domain.GeocodeResult{}, fmt.Errorf("geocoder http %d", res.StatusCode)
	}
	var body banResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return domain.GeocodeResult{}, err
	}
	if len(body.Features) == 0 {
		return domain.GeocodeResult{}, fmt.Errorf("no results")
	}
	f := body.Features[0]
	if len(f.Geometry.Coordinates) != 2 {
		return domain.GeocodeResult{}, fmt.Errorf("malformed coordinates")
	}
	lng, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
	if !validCoords(lat, lng) {
		return domain.GeocodeResult{}, fmt.Errorf("invalid coordinates %f,%f", lat, lng)
	}
	return domain.GeocodeResult{
		Lat:      lat,
		Lng:      lng,
		Accuracy: accuracyFor(f.Properties.Type),
		Fallback: false,
	}, nil
}

// accuracyFor maps the provider feature type onto our two-level accuracy:
// building/house level is precise, anything coarser is approximate.
func accuracyFor(featureType string) domain.GeoAccuracy {
	if featureType == "housenumber" {
		return domain.AccuracyPrecise
	}
	return domain.AccuracyApproximate
}

func validCoords(lat, lng float64) bool {
	if lat == 0 && lng == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

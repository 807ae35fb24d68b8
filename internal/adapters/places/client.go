package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"reperio/internal/domain"
)

// maxPages bounds pagination draining regardless of the configured listing
// cap; the provider never serves more than three pages per query anyway.
const maxPages = 3

type Config struct {
	BaseURL     string
	APIKey      string
	DetailDelay time.Duration
	MaxListings int
}

// Client talks to a Places-compatible search provider. Detail fetches are
// paced through a limiter to stay under unpublished rate limits.
type Client struct {
	cfg       Config
	http      *http.Client
	details   *rate.Limiter
	pageDelay time.Duration
	log       *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.DetailDelay <= 0 {
		cfg.DetailDelay = 300 * time.Millisecond
	}
	if cfg.MaxListings <= 0 {
		cfg.MaxListings = 60
	}
	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: 15 * time.Second},
		details:   rate.NewLimiter(rate.Every(cfg.DetailDelay), 1),
		pageDelay: 2 * time.Second,
		log:       logger,
	}
}

// TextSearch drains all result pages up to the configured cap and returns
// sparse listings (provider id, name, address).
func (c *Client) TextSearch(ctx context.Context, query string, loc domain.Locality) ([]domain.RawListing, error) {
	q := query + " " + loc.Name
	if loc.PostalCode != "" {
		q += " " + loc.PostalCode
	}

	var out []domain.RawListing
	pageToken := ""
	for page := 0; page < maxPages; page++ {
		resp, err := c.searchPage(ctx, q, pageToken)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			// A later page failing loses nothing already drained.
			c.log.Warn("text search page failed", "query", q, "page", page, "err", err)
			break
		}
		for _, r := range resp.Results {
			if r.PlaceID == "" {
				continue
			}
			out = append(out, domain.RawListing{
				ProviderID:       r.PlaceID,
				Name:             r.Name,
				FormattedAddress: r.FormattedAddress,
			})
			if len(out) >= c.cfg.MaxListings {
				return out, nil
			}
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
		// Page tokens need a moment before they become valid server-side.
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-time.After(c.pageDelay):
		}
	}
	return out, nil
}

func (c *Client) searchPage(ctx context.Context, query, pageToken string) (*textSearchResponse, error) {
	v := url.Values{}
	v.Set("query", query)
	if c.cfg.APIKey != "" {
		v.Set("key", c.cfg.APIKey)
	}
	if pageToken != "" {
		v.Set("pagetoken", pageToken)
	}
	var resp textSearchResponse
	if err := c.getJSON(ctx, "/textsearch?"+v.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "" && resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("provider status %s", resp.Status)
	}
	return &resp, nil
}

// FetchDetails returns the fully populated listing, or nil when the
// provider has no record. The caller drops phoneless listings; there is no
// reliable way to contact a business without one.
func (c *Client) FetchDetails(ctx context.Context, providerID string) (*domain.RawListing, error) {
	if err := c.details.Wait(ctx); err != nil {
		return nil, err
	}
	v := url.Values{}
	v.Set("place_id", providerID)
	if c.cfg.APIKey != "" {
		v.Set("key", c.cfg.APIKey)
	}
	var resp detailsResponse
	if err := c.getJSON(ctx, "/details?"+v.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil || (resp.Status != "" && resp.Status != "OK") {
		return nil, nil
	}
	r := resp.Result
	listing := &domain.RawListing{
		ProviderID:       providerID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Phone:            r.Phone,
		Website:          normalizeWebsite(r.Website),
		Rating:           r.Rating,
		ReviewCount:      r.ReviewCount,
	}
	if r.PlaceID != "" {
		listing.ProviderID = r.PlaceID
	}
	return listing, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.BaseURL, "/")+path, nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("provider http %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// normalizeWebsite reduces a listing website to its registrable domain so
// equal businesses advertise the same site regardless of path or scheme.
func normalizeWebsite(raw *string) *string {
	if raw == nil || *raw == "" {
		return nil
	}
	u, err := url.Parse(*raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(u.Hostname())
	if err != nil {
		registrable = u.Hostname()
	}
	return &registrable
}

package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"reperio/internal/domain"
	"reperio/internal/textnorm"
)

// matchThreshold is the minimum name similarity for accepting a registry
// search result as the same business.
const matchThreshold = 0.7

// Client looks up administrative business status in a SIRENE-style company
// registry.
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

type siretResponse struct {
	EtatAdministratif string `json:"etat_administratif"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Siren             string `json:"siren"`
	NomComplet        string `json:"nom_complet"`
	EtatAdministratif string `json:"etat_administratif"`
}

// LookupByID resolves the status of a specific establishment.
func (c *Client) LookupByID(ctx context.Context, registryID string) (domain.BusinessStatus, error) {
	var body siretResponse
	if err := c.getJSON(ctx, "/siret/"+url.PathEscape(registryID), &body); err != nil {
		return domain.StatusUnknown, err
	}
	return statusFor(body.EtatAdministratif), nil
}

// SearchByName finds the best-matching registered business in a locality.
// Matches below the similarity threshold are rejected; an empty id with a
// nil error means no acceptable match.
func (c *Client) SearchByName(ctx context.Context, name, locality string) (string, domain.BusinessStatus, error) {
	v := url.Values{}
	v.Set("q", name)
	if locality != "" {
		v.Set("commune", locality)
	}
	var body searchResponse
	if err := c.getJSON(ctx, "/search?"+v.Encode(), &body); err != nil {
		return "", domain.StatusUnknown, err
	}

	bestScore := 0.0
	var best *searchResult
	for i := range body.Results {
		score := similarity(name, body.Results[i].NomComplet)
		if score > bestScore {
			bestScore = score
			best = &body.Results[i]
		}
	}
	if best == nil || bestScore < matchThreshold {
		return "", domain.StatusUnknown, nil
	}
	return best.Siren, statusFor(best.EtatAdministratif), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("registry: no record")
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("registry http %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// statusFor maps the registry's one-letter administrative state. "A" is
// active; "F" (fermé) and "C" (cessé) are ceased. Anything else is unknown.
func statusFor(etat string) domain.BusinessStatus {
	switch strings.ToUpper(etat) {
	case "A":
		return domain.StatusActive
	case "F", "C":
		return domain.StatusCeased
	default:
		return domain.StatusUnknown
	}
}

// similarity is a normalized levenshtein ratio over folded names, in 0..1.
func similarity(a, b string) float64 {
	fa, fb := textnorm.Fold(a), textnorm.Fold(b)
	if fa == fb {
		return 1
	}
	longest := len([]rune(fa))
	if l := len([]rune(fb)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(fa, fb)
	return 1 - float64(dist)/float64(longest)
}

package geocode

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"reperio/internal/domain"
)

func serve(t *testing.T, body string, code int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

var paris = domain.Locality{Name: "Paris", PostalCode: "75001", DepartmentCode: "75"}

func TestGeocodePrecise(t *testing.T) {
	srv := serve(t, `{"features":[{"geometry":{"coordinates":[2.3488,48.8534]},"properties":{"type":"housenumber"}}]}`, 200)
	c := New(srv.URL, slog.New(slog.DiscardHandler))

	res := c.Geocode(context.Background(), "12 rue de Rivoli", paris)

	if res.Fallback {
		t.Fatal("provider-resolved result tagged as fallback")
	}
	if res.Accuracy != domain.AccuracyPrecise {
		t.Errorf("accuracy = %s, want precise", res.Accuracy)
	}
	if res.Lat != 48.8534 || res.Lng != 2.3488 {
		t.Errorf("coordinates swapped or lost: %+v", res)
	}
}

func TestGeocodeCoarseFeatureIsApproximate(t *testing.T) {
	srv := serve(t, `{"features":[{"geometry":{"coordinates":[2.3488,48.8534]},"properties":{"type":"municipality"}}]}`, 200)
	c := New(srv.URL, slog.New(slog.DiscardHandler))

	res := c.Geocode(context.Background(), "somewhere", paris)
	if res.Accuracy != domain.AccuracyApproximate || res.Fallback {
		t.Errorf("coarse feature type: %+v", res)
	}
}

func TestGeocodeFallsBack(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"zero results", `{"features":[]}`, 200},
		{"invalid coordinates", `{"features":[{"geometry":{"coordinates":[0,0]},"properties":{"type":"housenumber"}}]}`, 200},
		{"malformed geometry", `{"features":[{"geometry":{"coordinates":[2.3]},"properties":{}}]}`, 200},
		{"server error", ``, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.body, tt.code)
			c := New(srv.URL, slog.New(slog.DiscardHandler))

			res := c.Geocode(context.Background(), "12 rue de Rivoli", paris)
			if !res.Fallback {
				t.Errorf("expected fallback result, got %+v", res)
			}
		})
	}
}

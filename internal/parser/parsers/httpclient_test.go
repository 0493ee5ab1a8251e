package parsers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/propline/internal/pkg/config"
	"github.com/Vodeneev/propline/internal/pkg/models"
)

func TestNewHTTPClient_Headers(t *testing.T) {
	var ua, custom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		custom = r.Header.Get("X-Client")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := NewHTTPClient(&config.ParserConfig{
		Timeout:   time.Second,
		UserAgent: "propline-test",
		Headers:   map[string]string{"X-Client": "sportsbook"},
	})
	body, err := FetchPage(context.Background(), c, srv.URL)
	require.NoError(t, err)
	require.Equal(t, "<html></html>", body)
	require.Equal(t, "propline-test", ua)
	require.Equal(t, "sportsbook", custom)
}

func TestNewHTTPClient_CloudflareBypassWrapsTransport(t *testing.T) {
	plain := NewHTTPClient(&config.ParserConfig{})
	wrapped := NewHTTPClient(&config.ParserConfig{CloudflareBypass: true})
	require.NotEqual(t, plain.GetClient().Transport, wrapped.GetClient().Transport)
}

func TestFetchPage_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewHTTPClient(&config.ParserConfig{Timeout: time.Second})
	_, err := FetchPage(context.Background(), c, srv.URL)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusForbidden, se.Code)
}

func TestPageLookup(t *testing.T) {
	page := `<html><script>var data = {"players":[{"name":"Josh Allen","draftkings_pass":"245.5"}]};</script></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	l := &PageLookup{
		Source:   "draftkings",
		Client:   NewHTTPClient(&config.ParserConfig{Timeout: time.Second}),
		URLs:     []string{srv.URL},
		Priority: []string{"draftkings"},
	}

	got, err := l.LookupPlayer(context.Background(), "Josh Allen", "player_passing_yards")
	require.NoError(t, err)
	require.Equal(t, 245.5, got.PropLine)
	require.Equal(t, "draftkings", got.Source)

	_, err = l.LookupPlayer(context.Background(), "Derrick Henry", "player_passing_yards")
	require.True(t, errors.Is(err, models.ErrNoOddsData))
}

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/propline/internal/pkg/health/handlers"
	"github.com/Vodeneev/propline/internal/pkg/interfaces"
	"github.com/Vodeneev/propline/internal/pkg/models"
	"github.com/Vodeneev/propline/internal/pkg/performance"
)

type countingParser struct {
	name  string
	calls atomic.Int32
}

func (p *countingParser) Start(ctx context.Context) error { return nil }
func (p *countingParser) Stop() error                     { return nil }
func (p *countingParser) GetName() string                 { return p.name }
func (p *countingParser) ParseOnce(ctx context.Context) error {
	p.calls.Add(1)
	return nil
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

func seedProps(t *testing.T) {
	t.Helper()
	ClearProps()
	t.Cleanup(ClearProps)
	now := time.Now()
	AddProps([]models.Prop{
		{Player: "Josh Allen", League: "NFL", PropType: "player_pass_yds", Market: "Passing Yards", Line: 245.5, Source: "draftkings", UpdatedAt: now},
		{Player: "Jalen Milroe", League: "CFB", PropType: "player_pass_yds", Market: "Passing Yards", Line: 215.5, Source: "rotowire", UpdatedAt: now},
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv := httptest.NewServer(NewMux())
	defer srv.Close()

	resp, _ := get(t, srv, "/ping")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get(t, srv, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPropsAndRows(t *testing.T) {
	seedProps(t)
	srv := httptest.NewServer(NewMux())
	defer srv.Close()

	resp, body := get(t, srv, "/props?league=nfl")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "1", resp.Header.Get("X-Props-Count"))
	props := body["props"].([]any)
	require.Equal(t, "Josh Allen", props[0].(map[string]any)["player"])

	_, body = get(t, srv, "/rows?player=milroe")
	rows := body["rows"].([]any)
	require.Len(t, rows, 1)
	require.Equal(t, "Passing Yards (215.5)", rows[0].(map[string]any)["market"])
}

func TestParseEndpoint(t *testing.T) {
	p := &countingParser{name: "rotowire"}
	RegisterParsers([]interfaces.Parser{p})
	t.Cleanup(func() { RegisterParsers(nil) })

	srv := httptest.NewServer(NewMux())
	defer srv.Close()

	resp, body := get(t, srv, "/parse?parser=RotoWire")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(1), body["count"])
	require.Equal(t, int32(1), p.calls.Load())

	resp, _ = get(t, srv, "/parse?parser=fanduel")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLookupEndpoint(t *testing.T) {
	handlers.SetLookupFunc(func(ctx context.Context, req models.LookupRequest) (*models.GatheredData, error) {
		if req.Player == "Nobody" {
			return &models.GatheredData{Request: req}, models.ErrNoOddsData
		}
		return &models.GatheredData{
			Request:  req,
			OddsData: &models.OddsData{PropLine: 72.5, Source: "rotowire"},
		}, nil
	})
	t.Cleanup(func() { handlers.SetLookupFunc(nil) })

	srv := httptest.NewServer(NewMux())
	defer srv.Close()

	resp, body := get(t, srv, "/lookup?player=Ja%27Marr+Chase&prop_type=player_receiving_yards")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 72.5, body["odds_data"].(map[string]any)["prop_line"])

	resp, body = get(t, srv, "/lookup?player=Nobody&prop_type=player_receiving_yards")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, models.ErrNoOddsData.Error(), body["message"])

	resp, _ = get(t, srv, "/lookup?player=Nobody")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExtractEndpoint(t *testing.T) {
	srv := httptest.NewServer(NewMux())
	defer srv.Close()

	post := func(category, body string) (int, map[string]any) {
		resp, err := http.Post(srv.URL+"/extract?category="+category, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp.StatusCode, out
	}

	status, out := post("passing", `{"fanduel_passing": "O 231.5", "draftkings_passing": 245.5}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, out["found"])
	require.Equal(t, 245.5, out["value"])

	status, out = post("receiving", `{name: 'Ja Marr Chase', stats: {rec_yds: 'u72.5',},}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 72.5, out["value"])

	status, out = post("rushing", `{"player": "x"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, false, out["found"])

	status, _ = post("rushing", "  ")
	require.Equal(t, http.StatusBadRequest, status)

	resp, err := http.Get(srv.URL + "/extract?category=passing")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMergePropLists(t *testing.T) {
	a := []models.Prop{{Player: "Josh Allen", PropType: "player_pass_yds", Source: "draftkings", Team: "BUF", Line: 240.5}}
	b := []models.Prop{{Player: "josh allen", PropType: "player_pass_yds", Source: "DraftKings", Line: 245.5}}

	merged := MergePropLists(a, b)
	require.Len(t, merged, 1)
	require.Equal(t, 245.5, merged[0].Line)
	require.Equal(t, "BUF", merged[0].Team)
}

func TestAddProps_DropsInvalid(t *testing.T) {
	ClearProps()
	t.Cleanup(ClearProps)

	AddProps([]models.Prop{
		{Player: " Josh  Allen ", League: "nfl", PropType: "player_pass_yds", Line: 245.5, Source: "draftkings"},
		{Player: "", PropType: "player_pass_yds", Line: 100, Source: "draftkings"},
		{Player: "Jalen Milroe", PropType: "player_pass_yds", Line: -3, Source: "rotowire"},
	})

	got := GetProps("", "")
	require.Len(t, got, 1)
	require.Equal(t, "Josh Allen", got[0].Player)
	require.Equal(t, "NFL", got[0].League)
}

func TestMetricsEndpoint(t *testing.T) {
	performance.GetTracker().Reset()
	t.Cleanup(performance.GetTracker().Reset)
	performance.GetTracker().RecordParserRun("rotowire", time.Second, nil)

	rec := httptest.NewRecorder()
	NewMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var m performance.MetricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	require.Len(t, m.Parsers, 1)
	require.Equal(t, "rotowire", m.Parsers[0].Name)
}

func TestWithRequestLog_PassesStatus(t *testing.T) {
	h := withRequestLog(NewMux())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pong\n", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/extract", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

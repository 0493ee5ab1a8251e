package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Vodeneev/propline/internal/pkg/models"
)

// LookupFunc answers a single player/market query across sources.
type LookupFunc func(ctx context.Context, req models.LookupRequest) (*models.GatheredData, error)

var lookupFunc LookupFunc

func SetLookupFunc(fn LookupFunc) {
	lookupFunc = fn
}

// HandleLookup handles /lookup?player=&prop_type=&game=
func HandleLookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.LookupRequest{
		Game:     strings.TrimSpace(q.Get("game")),
		Player:   strings.TrimSpace(q.Get("player")),
		PropType: strings.TrimSpace(q.Get("prop_type")),
	}
	if req.Player == "" || req.PropType == "" {
		writeError(w, http.StatusBadRequest, "player and prop_type are required")
		return
	}
	if lookupFunc == nil {
		writeError(w, http.StatusServiceUnavailable, "lookup is not configured")
		return
	}

	data, err := lookupFunc(r.Context(), req)
	switch {
	case errors.Is(err, models.ErrNoOddsData):
		// the gatherer still reports what it knows about the player
		if data == nil {
			data = &models.GatheredData{Request: req}
		}
		data.Message = err.Error()
		writeJSON(w, http.StatusNotFound, data)
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeJSON(w, http.StatusOK, data)
	}
}

package handlers

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/Vodeneev/propline/internal/pkg/extract"
)

const maxExtractBody = 4 << 20

var priorityFunc = func() extract.Priority { return extract.DefaultPriority }

// SetPriorityFunc sets where /extract reads the sportsbook priority from.
func SetPriorityFunc(fn func() extract.Priority) {
	priorityFunc = fn
}

// HandleExtract handles POST /extract?category=: the body is a JSON (or
// JavaScript object literal) candidate, the response is the extracted line.
func HandleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxExtractBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, "empty body")
		return
	}
	candidate, err := extract.DecodeLenient(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := map[string]any{"category": category, "found": false}
	if v, ok := extract.Extract(candidate, category, priorityFunc()); ok {
		resp["found"] = true
		resp["value"] = v
	}
	writeJSON(w, http.StatusOK, resp)
}

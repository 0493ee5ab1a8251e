package health

import (
	"strings"
	"sync"

	"github.com/Vodeneev/propline/internal/pkg/interfaces"
)

// Global parser registry for on-demand parsing
var (
	globalParsers   []interfaces.Parser
	globalParsersMu sync.RWMutex
)

// RegisterParsers registers parsers for on-demand parsing
func RegisterParsers(parsers []interfaces.Parser) {
	globalParsersMu.Lock()
	defer globalParsersMu.Unlock()
	globalParsers = append([]interfaces.Parser(nil), parsers...)
}

// GetParsers returns a copy of registered parsers (thread-safe)
func GetParsers() []interfaces.Parser {
	globalParsersMu.RLock()
	defer globalParsersMu.RUnlock()
	return append([]interfaces.Parser(nil), globalParsers...)
}

// LookupParser returns the registered parser that can answer single-player
// queries under the given name.
func LookupParser(name string) (interfaces.PlayerLookup, bool) {
	globalParsersMu.RLock()
	defer globalParsersMu.RUnlock()
	for _, p := range globalParsers {
		if !strings.EqualFold(p.GetName(), name) {
			continue
		}
		l, ok := p.(interfaces.PlayerLookup)
		return l, ok
	}
	return nil, false
}

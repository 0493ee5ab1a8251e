package health

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Vodeneev/propline/internal/pkg/models"
	"github.com/Vodeneev/propline/internal/pkg/validation"
)

// InMemoryPropStore stores the latest props for fast API access
type InMemoryPropStore struct {
	mu    sync.RWMutex
	props map[string]models.Prop // key: Prop.Key()
}

var globalPropStore = &InMemoryPropStore{props: make(map[string]models.Prop)}

var (
	propSanitizer = validation.NewSanitizer()
	propValidator = validation.NewValidator()
)

// MergePropLists merges prop lists by key; later lists win.
func MergePropLists(lists ...[]models.Prop) []models.Prop {
	byKey := make(map[string]models.Prop)
	for _, list := range lists {
		for _, p := range list {
			mergePropInto(byKey, p)
		}
	}
	out := make([]models.Prop, 0, len(byKey))
	for _, p := range byKey {
		out = append(out, p)
	}
	sortProps(out)
	return out
}

// mergePropInto replaces the line and odds but keeps descriptive fields the
// newer record doesn't carry.
func mergePropInto(byKey map[string]models.Prop, p models.Prop) {
	key := p.Key()
	existing, ok := byKey[key]
	if !ok {
		byKey[key] = p
		return
	}
	if p.Position == "" {
		p.Position = existing.Position
	}
	if p.Team == "" {
		p.Team = existing.Team
	}
	if p.Opponent == "" {
		p.Opponent = existing.Opponent
	}
	if p.League == "" {
		p.League = existing.League
	}
	if p.StartTime.IsZero() {
		p.StartTime = existing.StartTime
	}
	byKey[key] = p
}

// AddProps adds or updates props in the in-memory store
func AddProps(props []models.Prop) {
	props, dropped := validation.Filter(props, propSanitizer, propValidator)
	if dropped > 0 {
		slog.Debug("Dropped invalid props", "dropped", dropped)
	}

	globalPropStore.mu.Lock()
	defer globalPropStore.mu.Unlock()
	for _, p := range props {
		mergePropInto(globalPropStore.props, p)
	}
	slog.Debug("Stored props", "added", len(props), "total_props_in_store", len(globalPropStore.props))
}

// GetProps returns stored props filtered by league and player (both optional,
// case-insensitive; player is a substring match).
func GetProps(league, player string) []models.Prop {
	league = strings.TrimSpace(league)
	player = strings.ToLower(strings.TrimSpace(player))

	globalPropStore.mu.RLock()
	out := make([]models.Prop, 0, len(globalPropStore.props))
	for _, p := range globalPropStore.props {
		if league != "" && !strings.EqualFold(p.League, league) {
			continue
		}
		if player != "" && !strings.Contains(strings.ToLower(p.Player), player) {
			continue
		}
		out = append(out, p)
	}
	globalPropStore.mu.RUnlock()

	sortProps(out)
	return out
}

// ClearProps clears the store; called at the start of each parsing cycle.
func ClearProps() {
	globalPropStore.mu.Lock()
	defer globalPropStore.mu.Unlock()
	cleared := len(globalPropStore.props)
	globalPropStore.props = make(map[string]models.Prop)
	slog.Info("Cleared props from in-memory store", "cleared_count", cleared)
}

// most recent first, then by player for stable output
func sortProps(props []models.Prop) {
	sort.Slice(props, func(i, j int) bool {
		if !props[i].UpdatedAt.Equal(props[j].UpdatedAt) {
			return props[i].UpdatedAt.After(props[j].UpdatedAt)
		}
		if props[i].Player != props[j].Player {
			return props[i].Player < props[j].Player
		}
		if props[i].PropType != props[j].PropType {
			return props[i].PropType < props[j].PropType
		}
		return props[i].Source < props[j].Source
	})
}

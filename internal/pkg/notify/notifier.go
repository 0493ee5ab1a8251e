// Package notify delivers prop line movement alerts.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// LineMovement is a change of a prop line between two parse cycles.
type LineMovement struct {
	CycleID    string
	Player     string
	PropType   string
	Market     string
	Source     string
	League     string
	Previous   float64
	Current    float64
	StartTime  time.Time
	DetectedAt time.Time
}

// Change returns the signed line difference.
func (lm LineMovement) Change() float64 {
	return lm.Current - lm.Previous
}

// Notifier sends line movement alerts.
type Notifier interface {
	NotifyLineMovement(ctx context.Context, lm LineMovement) error
	Stop()
}

var _ Notifier = LogNotifier{}

// LogNotifier writes alerts to the log; used when Telegram isn't configured.
type LogNotifier struct{}

func (LogNotifier) NotifyLineMovement(ctx context.Context, lm LineMovement) error {
	slog.Info("Line movement",
		"cycle_id", lm.CycleID,
		"player", lm.Player,
		"prop_type", lm.PropType,
		"source", lm.Source,
		"previous", lm.Previous,
		"current", lm.Current,
		"change", lm.Change())
	return nil
}

func (LogNotifier) Stop() {}

// FormatLineMovement renders an alert in Telegram legacy Markdown.
func FormatLineMovement(lm LineMovement) string {
	var b strings.Builder
	b.WriteString("📊 *Prop line movement*\n\n")
	b.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(lm.Player)))
	market := lm.Market
	if market == "" {
		market = lm.PropType
	}
	b.WriteString(fmt.Sprintf("📌 %s", escapeMarkdown(market)))
	if lm.League != "" {
		b.WriteString(fmt.Sprintf(" | %s", lm.League))
	}
	b.WriteString("\n\n")
	source := strings.TrimSpace(lm.Source)
	if source == "" {
		source = "unknown"
	}
	b.WriteString(fmt.Sprintf("🏠 *%s*\n", escapeMarkdown(source)))
	b.WriteString(fmt.Sprintf("Was: *%.1f* → now: *%.1f* (%+.1f)\n", lm.Previous, lm.Current, lm.Change()))
	if !lm.StartTime.IsZero() {
		b.WriteString(fmt.Sprintf("🕐 Kick-off: %s\n", lm.StartTime.UTC().Format("2006-01-02 15:04 UTC")))
	}
	return b.String()
}

// escapeMarkdown escapes the legacy Markdown control characters.
func escapeMarkdown(text string) string {
	return strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	).Replace(text)
}

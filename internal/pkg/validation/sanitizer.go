package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Vodeneev/propline/internal/pkg/interfaces"
	"github.com/Vodeneev/propline/internal/pkg/models"
)

var propTypePattern = regexp.MustCompile(`[^a-z0-9_]+`)

// Sanitizer implements prop sanitization
type Sanitizer struct{}

func NewSanitizer() interfaces.PropSanitizer {
	return &Sanitizer{}
}

// SanitizeProp sanitizes prop data
func (s *Sanitizer) SanitizeProp(prop *models.Prop) {
	if prop == nil {
		return
	}
	prop.Player = s.sanitizeString(prop.Player)
	prop.Position = strings.ToUpper(s.sanitizeString(prop.Position))
	prop.Team = s.sanitizeString(prop.Team)
	prop.Opponent = s.sanitizeString(prop.Opponent)
	prop.League = strings.ToUpper(s.sanitizeString(prop.League))
	prop.Market = s.sanitizeString(prop.Market)
	prop.PropType = s.sanitizePropType(prop.PropType)
	prop.Source = strings.ToLower(s.sanitizeString(prop.Source))
}

// sanitizeString drops control characters and collapses whitespace; page
// scripts often carry " " and newlines inside names.
func (s *Sanitizer) sanitizeString(str string) string {
	str = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, str)
	return strings.Join(strings.Fields(str), " ")
}

// "Player Passing-Yards" -> "player_passing_yards"
func (s *Sanitizer) sanitizePropType(str string) string {
	str = strings.ToLower(strings.TrimSpace(str))
	str = strings.NewReplacer(" ", "_", "-", "_").Replace(str)
	return strings.Trim(propTypePattern.ReplaceAllString(str, ""), "_")
}

package validation

import (
	"fmt"
	"math"

	"github.com/Vodeneev/propline/internal/pkg/interfaces"
	"github.com/Vodeneev/propline/internal/pkg/models"
)

const (
	maxPropLine      = 1000 // no yardage prop gets near this
	minAmericanOdds  = 100
	maxAmericanOdds  = 100000
	maxPlayerNameLen = 80
)

// Validator implements prop validation
type Validator struct{}

func NewValidator() interfaces.PropValidator {
	return &Validator{}
}

// ValidateProp validates prop data
func (v *Validator) ValidateProp(prop *models.Prop) error {
	if prop == nil {
		return fmt.Errorf("prop cannot be nil")
	}

	if prop.Player == "" {
		return fmt.Errorf("player cannot be empty")
	}
	if len(prop.Player) > maxPlayerNameLen {
		return fmt.Errorf("player name too long: %d chars", len(prop.Player))
	}
	if prop.PropType == "" {
		return fmt.Errorf("prop type cannot be empty")
	}
	if prop.Source == "" {
		return fmt.Errorf("source cannot be empty")
	}

	if math.IsNaN(prop.Line) || math.IsInf(prop.Line, 0) {
		return fmt.Errorf("line must be a finite number")
	}
	if prop.Line < 0 || prop.Line > maxPropLine {
		return fmt.Errorf("line out of range: %v", prop.Line)
	}

	if err := validateOdds(prop.OverOdds); err != nil {
		return fmt.Errorf("over odds: %w", err)
	}
	if err := validateOdds(prop.UnderOdds); err != nil {
		return fmt.Errorf("under odds: %w", err)
	}
	return nil
}

// American odds are never inside (-100, +100).
func validateOdds(odds *int) error {
	if odds == nil {
		return nil
	}
	a := *odds
	if a < 0 {
		a = -a
	}
	if a < minAmericanOdds || a > maxAmericanOdds {
		return fmt.Errorf("invalid american odds: %d", *odds)
	}
	return nil
}

// Filter sanitizes props and drops the invalid ones, returning them with the
// number dropped.
func Filter(props []models.Prop, s interfaces.PropSanitizer, v interfaces.PropValidator) ([]models.Prop, int) {
	out := props[:0:0]
	dropped := 0
	for i := range props {
		p := props[i]
		s.SanitizeProp(&p)
		if err := v.ValidateProp(&p); err != nil {
			dropped++
			continue
		}
		out = append(out, p)
	}
	return out, dropped
}

package interfaces

import "github.com/Vodeneev/propline/internal/pkg/models"

// PropValidator rejects props that cannot be shown or tracked
type PropValidator interface {
	ValidateProp(prop *models.Prop) error
}

// PropSanitizer normalizes scraped text fields in place
type PropSanitizer interface {
	SanitizeProp(prop *models.Prop)
}

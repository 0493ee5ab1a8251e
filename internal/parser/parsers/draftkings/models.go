package draftkings

// Ответы sportsbook API v5 (eventgroups/.../categories/...).
type eventGroupResponse struct {
	EventGroup eventGroup `json:"eventGroup"`
}

type eventGroup struct {
	EventGroupID    int64           `json:"eventGroupId"`
	Name            string          `json:"name"`
	OfferCategories []offerCategory `json:"offerCategories"`
	Events          []event         `json:"events"`
}

type event struct {
	EventID   int64  `json:"eventId"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	TeamName1 string `json:"teamName1"`
	TeamName2 string `json:"teamName2"`
}

type offerCategory struct {
	OfferCategoryID             int64                   `json:"offerCategoryId"`
	Name                        string                  `json:"name"`
	OfferSubcategoryDescriptors []subcategoryDescriptor `json:"offerSubcategoryDescriptors"`
}

type subcategoryDescriptor struct {
	SubcategoryID    int64             `json:"subcategoryId"`
	Name             string            `json:"name"`
	OfferSubcategory *offerSubcategory `json:"offerSubcategory"`
}

type offerSubcategory struct {
	Name   string     `json:"name"`
	Offers [][]market `json:"offers"`
}

type market struct {
	ProviderOfferID string    `json:"providerOfferId"`
	EventID         int64     `json:"eventId"`
	Label           string    `json:"label"`
	StartDate       string    `json:"startDate"`
	Outcomes        []outcome `json:"outcomes"`
}

type outcome struct {
	Label        string   `json:"label"`
	Participant  string   `json:"participant"`
	Line         *float64 `json:"line"`
	OddsAmerican string   `json:"oddsAmerican"`
}

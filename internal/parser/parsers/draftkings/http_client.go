package draftkings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/Vodeneev/propline/internal/parser/parsers"
)

const defaultBaseURL = "https://sportsbook.draftkings.com/sites/US-NJ-SB/api/v5"

type Client struct {
	baseURL string
	client  *resty.Client
}

func NewClient(baseURL string, client *resty.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client.SetHeader("Referer", "https://sportsbook.draftkings.com/"),
	}
}

// GetCategory возвращает дескрипторы подкатегорий для категории предложений.
// GET /eventgroups/{id}/categories/{category}?format=json
func (c *Client) GetCategory(ctx context.Context, eventGroupID string, categoryID int) (*eventGroup, error) {
	u := fmt.Sprintf("%s/eventgroups/%s/categories/%d?format=json", c.baseURL, eventGroupID, categoryID)
	return c.getEventGroup(ctx, u)
}

// GetSubcategory возвращает рынки одной подкатегории.
// GET /eventgroups/{id}/categories/{category}/subcategories/{sub}?format=json
func (c *Client) GetSubcategory(ctx context.Context, eventGroupID string, categoryID int, subcategoryID int64) (*eventGroup, error) {
	u := fmt.Sprintf("%s/eventgroups/%s/categories/%d/subcategories/%d?format=json", c.baseURL, eventGroupID, categoryID, subcategoryID)
	return c.getEventGroup(ctx, u)
}

func (c *Client) getEventGroup(ctx context.Context, url string) (*eventGroup, error) {
	res, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	if res.IsError() {
		return nil, &parsers.StatusError{URL: url, Code: res.StatusCode()}
	}
	var out eventGroupResponse
	if err := json.Unmarshal(res.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode event group: %w", err)
	}
	return &out.EventGroup, nil
}

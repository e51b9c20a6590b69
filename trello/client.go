package trello

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.trello.com/1"

// Card is a Trello card as returned by the REST API
type Card struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
	Due  string `json:"due"` // RFC3339, empty if unset
}

// Client is a minimal Trello REST client covering the card operations
// the bot needs: list, create, move, delete, set custom field.
type Client struct {
	key     string
	token   string
	baseURL string
	httpCli *http.Client
}

// NewClient creates a new Trello client
func NewClient(key, token string) *Client {
	return &Client{
		key:     key,
		token:   token,
		baseURL: defaultBaseURL,
		httpCli: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetBaseURL overrides the API base URL (tests)
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// ListCards returns all cards in a list
func (c *Client) ListCards(ctx context.Context, listID string) ([]Card, error) {
	var cards []Card
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("lists/%s/cards", listID), nil, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// CreateCard creates a card at the bottom of a list. due may be nil.
func (c *Client) CreateCard(ctx context.Context, listID, name, desc string, due *time.Time) (*Card, error) {
	params := url.Values{}
	params.Set("idList", listID)
	params.Set("name", name)
	params.Set("desc", desc)
	params.Set("pos", "bottom")
	if due != nil {
		params.Set("due", due.UTC().Format(time.RFC3339))
	}

	var card Card
	if err := c.do(ctx, http.MethodPost, "cards", params, nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// MoveCard moves a card to another list
func (c *Client) MoveCard(ctx context.Context, cardID, listID string) error {
	params := url.Values{}
	params.Set("idList", listID)
	return c.do(ctx, http.MethodPut, fmt.Sprintf("cards/%s", cardID), params, nil, nil)
}

// DeleteCard deletes a card permanently
func (c *Client) DeleteCard(ctx context.Context, cardID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("cards/%s", cardID), nil, nil, nil)
}

// SetCustomField sets a text custom-field value on a card
func (c *Client) SetCustomField(ctx context.Context, cardID, fieldID, value string) error {
	body := map[string]interface{}{
		"value": map[string]string{"text": value},
	}
	endpoint := fmt.Sprintf("cards/%s/customField/%s/item", cardID, fieldID)
	return c.do(ctx, http.MethodPut, endpoint, nil, body, nil)
}

// do performs an authenticated API request. Credentials travel as query
// parameters per the Trello API convention.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.key)
	params.Set("token", c.token)

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("trello request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("trello %s %s: status %d: %s", method, endpoint, resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

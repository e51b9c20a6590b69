package line

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.line.me/v2/bot"

// quick-reply labels are capped by the Messaging API
const maxQuickReplyLabel = 20

// QuickReply is a label/text pair rendered as a tappable option.
// Tapping it sends Text back as a normal message.
type QuickReply struct {
	Label string
	Text  string
}

// Profile is a user's LINE profile
type Profile struct {
	DisplayName string `json:"displayName"`
}

// Client is a LINE Messaging API client
type Client struct {
	token   string
	baseURL string
	httpCli *http.Client
}

// NewClient creates a new LINE client with the channel access token
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpCli: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetBaseURL overrides the API base URL (tests)
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// textMessage is the wire form of an outgoing text message
type textMessage struct {
	Type       string          `json:"type"`
	Text       string          `json:"text"`
	QuickReply *quickReplyWire `json:"quickReply,omitempty"`
}

type quickReplyWire struct {
	Items []quickReplyItem `json:"items"`
}

type quickReplyItem struct {
	Type   string           `json:"type"`
	Action quickReplyAction `json:"action"`
}

type quickReplyAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// BuildTextMessage builds the outgoing message payload, truncating
// quick-reply labels to the API limit
func BuildTextMessage(text string, quickReplies []QuickReply) map[string]interface{} {
	msg := textMessage{Type: "text", Text: text}
	if len(quickReplies) > 0 {
		items := make([]quickReplyItem, 0, len(quickReplies))
		for _, q := range quickReplies {
			items = append(items, quickReplyItem{
				Type: "action",
				Action: quickReplyAction{
					Type:  "message",
					Label: truncateRunes(q.Label, maxQuickReplyLabel),
					Text:  q.Text,
				},
			})
		}
		msg.QuickReply = &quickReplyWire{Items: items}
	}

	// round-trip through JSON to a generic map so Reply/Push can embed it
	data, _ := json.Marshal(msg)
	var out map[string]interface{}
	_ = json.Unmarshal(data, &out)
	return out
}

// Reply answers an inbound event via its reply token
func (c *Client) Reply(ctx context.Context, replyToken, text string, quickReplies []QuickReply) error {
	payload := map[string]interface{}{
		"replyToken": replyToken,
		"messages":   []interface{}{BuildTextMessage(text, quickReplies)},
	}
	return c.post(ctx, "message/reply", payload)
}

// Push sends a text message to a user
func (c *Client) Push(ctx context.Context, userID, text string) error {
	payload := map[string]interface{}{
		"to":       userID,
		"messages": []interface{}{BuildTextMessage(text, nil)},
	}
	return c.post(ctx, "message/push", payload)
}

// GetProfile fetches a user's profile
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/profile/%s", c.baseURL, userID), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("line request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("line profile: status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/%s", c.baseURL, endpoint), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("line request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("line %s: status %d: %s", endpoint, resp.StatusCode, string(body))
	}
	return nil
}

// ValidateSignature verifies an X-Line-Signature header: base64 of
// HMAC-SHA256 over the raw request body keyed by the channel secret,
// compared in constant time.
func ValidateSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package platform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// RestClient is a thin adapter over the platform's REST API. It covers
// exactly the operations in Client; anything richer belongs in the
// external gateway process.
type RestClient struct {
	base   string
	token  string
	client *http.Client
	log    zerolog.Logger
}

// NewRestClient NewRestClient. base is the API root, e.g.
// https://discord.com/api/v10.
func NewRestClient(base, token string, log zerolog.Logger) *RestClient {
	return &RestClient{
		base:   base,
		token:  token,
		client: &http.Client{Timeout: defaultTimeout},
		log:    log.With().Str("component", "platform").Logger(),
	}
}

// SendMessage SendMessage
func (c *RestClient) SendMessage(channelID, text string, embed json.RawMessage) (*SentMessage, error) {
	body := map[string]interface{}{"content": text}
	if len(embed) > 0 {
		body["embeds"] = []json.RawMessage{embed}
	}
	sent := &SentMessage{}
	err := c.do(http.MethodPost, fmt.Sprintf("/channels/%s/messages", channelID), body, sent)
	if err != nil {
		return nil, err
	}
	return sent, nil
}

// CreateDMChannel CreateDMChannel
func (c *RestClient) CreateDMChannel(userID string) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	err := c.do(http.MethodPost, "/users/@me/channels", map[string]string{"recipient_id": userID}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// AddRole AddRole
func (c *RestClient) AddRole(guildID, userID, roleID string) error {
	return c.do(http.MethodPut, fmt.Sprintf("/guilds/%s/members/%s/roles/%s", guildID, userID, roleID), nil, nil)
}

// RemoveRole RemoveRole
func (c *RestClient) RemoveRole(guildID, userID, roleID string) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/guilds/%s/members/%s/roles/%s", guildID, userID, roleID), nil, nil)
}

// SetNickname SetNickname
func (c *RestClient) SetNickname(guildID, userID, nick string) error {
	return c.do(http.MethodPatch, fmt.Sprintf("/guilds/%s/members/%s", guildID, userID), map[string]string{"nick": nick}, nil)
}

// AddReaction AddReaction
func (c *RestClient) AddReaction(channelID, messageID, emoji string) error {
	path := fmt.Sprintf("/channels/%s/messages/%s/reactions/%s/@me", channelID, messageID, url.PathEscape(emoji))
	return c.do(http.MethodPut, path, nil, nil)
}

// DeleteMessage DeleteMessage
func (c *RestClient) DeleteMessage(channelID, messageID string) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID), nil, nil)
}

func (c *RestClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("platform call failed")
		return fmt.Errorf("platform: %s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

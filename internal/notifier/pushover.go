package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const pushoverAPI = "https://api.pushover.net/1/messages.json"

// PushoverChannel sends via the Pushover message API. Credentials come from
// PUSHOVER_USER_KEY and PUSHOVER_APP_TOKEN.
type PushoverChannel struct {
	Client *http.Client
}

func NewPushoverChannel() *PushoverChannel {
	return &PushoverChannel{Client: &http.Client{Timeout: 15 * time.Second}}
}

func (p *PushoverChannel) Name() string { return "pushover" }

func (p *PushoverChannel) Send(ctx context.Context, msg Message) error {
	userKey := os.Getenv("PUSHOVER_USER_KEY")
	appToken := os.Getenv("PUSHOVER_APP_TOKEN")
	if userKey == "" || appToken == "" {
		return fmt.Errorf("PUSHOVER_USER_KEY or PUSHOVER_APP_TOKEN not set")
	}

	form := url.Values{}
	form.Set("token", appToken)
	form.Set("user", userKey)
	form.Set("title", msg.Title)
	form.Set("message", msg.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pushoverAPI, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("pushover post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("pushover: status %d: %s", resp.StatusCode, body)
	}
	return nil
}

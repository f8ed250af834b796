package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Notify sends one text message to the configured chat. Delivery failure is
// the caller's to log; it never affects orchestration state.
func (t *Telegram) Notify(message string) error {
	base := t.APIBase
	if base == "" {
		base = defaultAPIBase
	}

	payload, err := json.Marshal(telegramMessage{
		ChatID: t.ChatID,
		Text:   message,
	})
	if err != nil {
		return err
	}

	client := http.Client{
		Timeout: 30 * time.Second,
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", base, t.BotToken)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification via Telegram: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to send notification via Telegram: %d", resp.StatusCode)
	}

	return nil
}

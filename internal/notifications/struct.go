package notifications

// Telegram delivers report messages to a chat via the Telegram bot API.
type Telegram struct {
	BotToken string
	ChatID   string
	// APIBase overrides the Telegram API host, mainly for tests.
	APIBase string
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
	DisableNotification   bool   `json:"disable_notification"`
}

package notifier

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pricingradar/models"
)

// maxAlertsPerMessage keeps a single Telegram message under the 4096 char
// API limit.
const maxAlertsPerMessage = 10

// TelegramNotifier pushes scan alerts to a Telegram chat. A nil notifier
// is valid and does nothing, so an unconfigured bot disables pushes
// without sprinkling checks through the callers.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier connects to the Telegram bot API. Returns nil when
// token or chatID is unset, or when the bot cannot be reached.
func NewTelegramNotifier(token string, chatID int64) *TelegramNotifier {
	if token == "" || chatID == 0 {
		log.Printf("Telegram notifications disabled (no token/chat configured)")
		return nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("Failed to create telegram bot: %v", err)
		return nil
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		log.Printf("Failed to reach telegram bot API: %v", err)
		return nil
	}

	log.Printf("✅ Telegram notifications enabled for chat %d", chatID)
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// NotifyAlerts sends the scan's alerts as one message.
func (n *TelegramNotifier) NotifyAlerts(alerts []models.Alert) {
	if n == nil || len(alerts) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔔 Price scan: %d alert(s)\n\n", len(alerts)))
	for i, a := range alerts {
		if i >= maxAlertsPerMessage {
			b.WriteString(fmt.Sprintf("... and %d more", len(alerts)-i))
			break
		}
		b.WriteString(fmt.Sprintf("• [%s] %s\n", a.Severity, a.Message))
	}

	msg := tgbotapi.NewMessage(n.chatID, b.String())
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("Failed to send telegram alert: %v", err)
	}
}

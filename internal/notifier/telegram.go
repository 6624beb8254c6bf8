// Package notifier delivers alerts through the Telegram Bot API.
package notifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"alphascan/internal/models"
	"alphascan/internal/retry"
)

// AlertHistory serves stored alerts for the /top bot command.
type AlertHistory interface {
	TopAlerts(k int) ([]models.Alert, error)
}

// Telegram sends pair alerts and service notices to a single chat.
type Telegram struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	policy  retry.Policy
	history AlertHistory
}

// NewTelegram creates a Telegram notifier. Delivery failures are retried
// with linear backoff; every send failure is a DeliveryError at the
// pipeline level and never aborts a scan pass.
func NewTelegram(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Telegram{
		bot:    bot,
		chatID: chatIDInt,
		policy: retry.Policy{
			MaxAttempts: maxRetries,
			Backoff:     retry.LinearBackoff(retryDelayBase),
		},
	}, nil
}

// SetHistory attaches an alert history backend for the /top command.
// Without one the command reports that history is unavailable.
func (t *Telegram) SetHistory(h AlertHistory) {
	t.history = h
}

// ListenForCommands starts a goroutine that polls for Telegram updates and
// answers bot commands. It returns immediately; the goroutine stops when
// ctx is cancelled.
func (t *Telegram) ListenForCommands(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil && update.Message.IsCommand() {
					t.handleCommand(update.Message)
				}
			}
		}
	}()
}

func (t *Telegram) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "ping":
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Pong")
		t.bot.Send(reply) //nolint:errcheck
	case "top":
		reply := tgbotapi.NewMessage(msg.Chat.ID, t.topMessage(topCommandLimit))
		reply.ParseMode = "MarkdownV2"
		t.bot.Send(reply) //nolint:errcheck
	}
}

const topCommandLimit = 5

// topMessage renders the response for the /top command.
func (t *Telegram) topMessage(k int) string {
	if t.history == nil {
		return "Alert history is unavailable"
	}
	alerts, err := t.history.TopAlerts(k)
	if err != nil {
		return fmt.Sprintf("Failed to load alerts: `%s`", escapeMarkdownV2(err.Error()))
	}
	if len(alerts) == 0 {
		return "No alerts recorded yet"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 *Top %d alerts*\n", len(alerts))
	for i, a := range alerts {
		name := a.Symbol
		if name == "" {
			name = a.PairAddress
		}
		fmt.Fprintf(&b, "%d\\. %s \\(%d/100\\)\n", i+1, escapeMarkdownV2(name), a.Score)
	}
	return b.String()
}

// sendMarkdownV2 sends a MarkdownV2 message with the retry policy.
func (t *Telegram) sendMarkdownV2(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "MarkdownV2"

	return t.policy.Do(ctx, func() error {
		_, err := t.bot.Send(msg)
		return err
	})
}

// Notify delivers one pair alert.
func (t *Telegram) Notify(ctx context.Context, alert models.Alert) error {
	return t.sendMarkdownV2(ctx, FormatAlert(alert))
}

// SendError sends a scan failure notice. Call this only on the first
// occurrence of a consecutive failure sequence.
func (t *Telegram) SendError(ctx context.Context, scanErr error) error {
	text := fmt.Sprintf("⚠️ *Scan error*\n`%s`", escapeMarkdownV2(scanErr.Error()))
	return t.sendMarkdownV2(ctx, text)
}

// SendRecovery sends a recovery notice after consecutive failures.
func (t *Telegram) SendRecovery(ctx context.Context, failureCount int) error {
	text := fmt.Sprintf("✅ *Scanning recovered* after %d consecutive failure\\(s\\)", failureCount)
	return t.sendMarkdownV2(ctx, text)
}

// FormatAlert renders the alert message body.
func FormatAlert(alert models.Alert) string {
	headline := "NEW"
	if alert.Trending {
		headline = "HOT"
	}
	name := alert.Symbol
	if name == "" {
		name = alert.Name
	}
	if name == "" {
		name = alert.PairAddress
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔥 *%s %s*\n", headline, escapeMarkdownV2(name))
	fmt.Fprintf(&b, "🕒 Age: %dm\n", alert.AgeMinutes)
	fmt.Fprintf(&b, "⭐ Alpha Score: %d/100\n\n", alert.Score)
	fmt.Fprintf(&b, "💰 MC: %s\n", escapeMarkdownV2(formatUSD(alert.MarketCapUSD)))
	fmt.Fprintf(&b, "💧 Liq: %s\n", escapeMarkdownV2(formatUSD(alert.LiquidityUSD)))
	fmt.Fprintf(&b, "📈 Vol \\(5m\\): %s\n\n", escapeMarkdownV2(formatUSD(alert.Volume5mUSD)))
	fmt.Fprintf(&b, "📦 Bundles: %d%%\n", alert.BundleRisk)
	fmt.Fprintf(&b, "🔫 Snipers: %s\n", escapeMarkdownV2(string(alert.SniperLevel)))
	if alert.URL != "" {
		fmt.Fprintf(&b, "\n🔗 %s\n", escapeMarkdownV2(alert.URL))
	}
	return b.String()
}

func formatUSD(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

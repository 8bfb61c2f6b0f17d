package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"expansion-monitor/internal/logging"
	"expansion-monitor/internal/signals"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	NotifySignal NotificationType = "signal"
	NotifyError  NotificationType = "error"
	NotifyInfo   NotificationType = "info"
)

// Notification represents a notification message
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Symbol    string
	Timeframe string
	Action    string
	Tier      string
	Price     float64
	Timestamp time.Time
}

// Notifier interface for different notification providers
type Notifier interface {
	Send(ctx context.Context, notification *Notification) error
	Name() string
	IsEnabled() bool
}

// Manager fans notifications out to every enabled provider
type Manager struct {
	notifiers []Notifier
	minTier   signals.Tier
	onFailure func(notifier string, err error)
}

// NewManager creates a manager that alerts on actionable signals at or above minTier
func NewManager(minTier signals.Tier) *Manager {
	if _, ok := signals.ParseTier(string(minTier)); !ok {
		minTier = signals.TierA
	}
	return &Manager{
		notifiers: make([]Notifier, 0),
		minTier:   minTier,
	}
}

// AddNotifier adds a notification provider
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// OnFailure registers a callback invoked for every failed delivery
func (m *Manager) OnFailure(fn func(notifier string, err error)) {
	m.onFailure = fn
}

// Enabled reports whether any provider is enabled
func (m *Manager) Enabled() bool {
	for _, n := range m.notifiers {
		if n.IsEnabled() {
			return true
		}
	}
	return false
}

// Send sends a notification to all enabled providers
func (m *Manager) Send(ctx context.Context, notification *Notification) error {
	var errs []error
	for _, n := range m.notifiers {
		if !n.IsEnabled() {
			continue
		}
		if err := n.Send(ctx, notification); err != nil {
			logging.NotificationContext(n.Name(), "").WithError(err).Warn("Notification failed")
			if m.onFailure != nil {
				m.onFailure(n.Name(), err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// ShouldAlert reports whether s is actionable and ranks at or above the minimum tier
func (m *Manager) ShouldAlert(s signals.Signal) bool {
	return s.Actionable() && s.Tier.AtLeast(m.minTier)
}

// NotifySignals alerts on every qualifying signal in ranked order and returns the number sent
func (m *Manager) NotifySignals(ctx context.Context, ranked []signals.Signal) (int, error) {
	if !m.Enabled() {
		return 0, nil
	}

	sent := 0
	var errs []error
	for _, s := range ranked {
		if !m.ShouldAlert(s) {
			continue
		}
		if err := m.Send(ctx, SignalNotification(s)); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// SignalNotification renders a signal as an alert
func SignalNotification(s signals.Signal) *Notification {
	marker := "▲"
	if s.Action == signals.ActionShort {
		marker = "▼"
	}
	return &Notification{
		Type:      NotifySignal,
		Title:     fmt.Sprintf("%s [%s] %s %s %s", marker, s.Tier, s.Action, s.Symbol, s.Timeframe),
		Message:   fmt.Sprintf("%s %s @ %.4f\nTier: %s\nReason: %s", s.Action, s.Symbol, s.Price, s.Tier, s.Reason),
		Symbol:    s.Symbol,
		Timeframe: string(s.Timeframe),
		Action:    string(s.Action),
		Tier:      string(s.Tier),
		Price:     s.Price,
		Timestamp: s.Timestamp,
	}
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return client.Do(req)
}

// =============================================================================
// TELEGRAM NOTIFIER
// =============================================================================

// TelegramNotifier sends notifications via Telegram
type TelegramNotifier struct {
	botToken string
	chatID   string
	apiBase  string
	enabled  bool
	client   *http.Client
}

// TelegramConfig holds Telegram configuration
type TelegramConfig struct {
	BotToken string
	ChatID   string
	Enabled  bool
	APIBase  string // defaults to https://api.telegram.org
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(config TelegramConfig) *TelegramNotifier {
	apiBase := config.APIBase
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	return &TelegramNotifier{
		botToken: config.BotToken,
		chatID:   config.ChatID,
		apiBase:  apiBase,
		enabled:  config.Enabled && config.BotToken != "" && config.ChatID != "",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramNotifier) Name() string {
	return "telegram"
}

func (t *TelegramNotifier) IsEnabled() bool {
	return t.enabled
}

func (t *TelegramNotifier) Send(ctx context.Context, notification *Notification) error {
	if !t.enabled {
		return nil
	}

	payload := map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       fmt.Sprintf("*%s*\n\n%s", notification.Title, notification.Message),
		"parse_mode": "Markdown",
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	resp, err := postJSON(ctx, t.client, url, payload)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}

// =============================================================================
// DISCORD NOTIFIER
// =============================================================================

// DiscordNotifier sends notifications via Discord webhook
type DiscordNotifier struct {
	webhookURL string
	enabled    bool
	client     *http.Client
}

// DiscordConfig holds Discord configuration
type DiscordConfig struct {
	WebhookURL string
	Enabled    bool
}

// NewDiscordNotifier creates a new Discord notifier
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: config.WebhookURL,
		enabled:    config.Enabled && config.WebhookURL != "",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *DiscordNotifier) Name() string {
	return "discord"
}

func (d *DiscordNotifier) IsEnabled() bool {
	return d.enabled
}

func (d *DiscordNotifier) Send(ctx context.Context, notification *Notification) error {
	if !d.enabled {
		return nil
	}

	color := 0x00FF00
	switch {
	case notification.Type == NotifyError:
		color = 0xFF0000
	case notification.Action == string(signals.ActionShort):
		color = 0xFF0000
	case notification.Tier == string(signals.TierCaution):
		color = 0xFFA500
	}

	embed := map[string]interface{}{
		"title":       notification.Title,
		"description": notification.Message,
		"color":       color,
	}
	if !notification.Timestamp.IsZero() {
		embed["timestamp"] = notification.Timestamp.Format(time.RFC3339)
	}

	if notification.Symbol != "" {
		fields := []map[string]interface{}{
			{"name": "Symbol", "value": notification.Symbol, "inline": true},
			{"name": "Timeframe", "value": notification.Timeframe, "inline": true},
			{"name": "Tier", "value": notification.Tier, "inline": true},
		}
		if notification.Price > 0 {
			fields = append(fields, map[string]interface{}{
				"name": "Price", "value": fmt.Sprintf("%.4f", notification.Price), "inline": true,
			})
		}
		embed["fields"] = fields
	}

	payload := map[string]interface{}{
		"embeds": []map[string]interface{}{embed},
	}

	resp, err := postJSON(ctx, d.client, d.webhookURL, payload)
	if err != nil {
		return fmt.Errorf("failed to send discord message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("discord API returned status %d", resp.StatusCode)
	}

	return nil
}

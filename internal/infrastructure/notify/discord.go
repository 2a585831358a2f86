package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/frederickimanuels/tokenscopex8/internal/application/port"
	"github.com/frederickimanuels/tokenscopex8/internal/domain"
)

const defaultAPIBaseURL = "https://discord.com/api/v10"

// DiscordNotifier posts alert messages to the channel stored on the alert
// row, via the bot REST API.
type DiscordNotifier struct {
	token   string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

func NewDiscord(token, baseURL string, timeout time.Duration, logger zerolog.Logger) *DiscordNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	return &DiscordNotifier{
		token:   token,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *DiscordNotifier) Send(ctx context.Context, note port.Notification) error {
	payload := map[string]string{"content": renderMessage(note)}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	u := fmt.Sprintf("%s/channels/%s/messages", n.baseURL, note.Alert.ChannelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+n.token)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification response status %d", resp.StatusCode)
	}

	n.log.Info().
		Int64("alert_id", note.Alert.ID).
		Str("channel_id", note.Alert.ChannelID).
		Msg("notification delivered")
	return nil
}

func renderMessage(note port.Notification) string {
	b := strings.Builder{}
	if note.Alert.Kind == domain.KindMetric {
		b.WriteString("📈 **Metric Alert!** 📈\n")
		fmt.Fprintf(&b, "<@%s>, your alert for **%s** was triggered!\n", note.Alert.UserID, note.Alert.Label())
		fmt.Fprintf(&b, "**Current Value:** `%.2f%%`", note.Value)
	} else {
		b.WriteString("🔔 **Price Alert!** 🔔\n")
		fmt.Fprintf(&b, "<@%s>, your alert for **%s** was triggered!\n", note.Alert.UserID, note.Alert.Label())
		// plain decimal form, never scientific notation
		fmt.Fprintf(&b, "**Current Price (%s):** `$%s`", note.Pair, strconv.FormatFloat(note.Value, 'f', -1, 64))
	}
	if note.Alert.MentionRoleID != "" {
		fmt.Fprintf(&b, " <@&%s>", note.Alert.MentionRoleID)
	}
	return b.String()
}

var _ port.Notifier = (*DiscordNotifier)(nil)

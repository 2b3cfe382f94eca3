package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/powersched/powersched/internal/models"
)

const defaultAPIURL = "https://slack.com/api/chat.postMessage"

// SlackNotifier sends a direct message to each stakeholder of an
// instance when its power state changes.
type SlackNotifier struct {
	token  string
	apiURL string
	client *http.Client
	logger zerolog.Logger
}

// NewSlackNotifier creates a notifier using the given bot token.
func NewSlackNotifier(token string, logger zerolog.Logger) *SlackNotifier {
	return &SlackNotifier{
		token:  token,
		apiURL: defaultAPIURL,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger.With().Str("component", "slack_notification").Logger(),
	}
}

type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Notify messages every stakeholder attached to the instance. Failed
// sends are logged and collected; remaining stakeholders are still
// attempted.
func (n *SlackNotifier) Notify(ctx context.Context, decision models.ActionDecision, atUTC time.Time) error {
	inst := decision.Instance
	text := formatMessage(decision, atUTC)

	var errs []error
	for _, userID := range inst.Stakeholders {
		if err := n.postMessage(ctx, userID, text); err != nil {
			n.logger.Error().
				Err(err).
				Str("instance_name", inst.Name).
				Str("instance_id", inst.InstanceID).
				Str("action", string(decision.Action)).
				Str("slack_user_id", userID).
				Msg("Failed to send Slack notification")
			errs = append(errs, err)
			continue
		}
		n.logger.Info().
			Str("instance_name", inst.Name).
			Str("instance_id", inst.InstanceID).
			Str("action", string(decision.Action)).
			Str("slack_user_id", userID).
			Msg("Sent Slack notification")
	}
	return errors.Join(errs...)
}

func (n *SlackNotifier) postMessage(ctx context.Context, channel, text string) error {
	body, err := json.Marshal(postMessageRequest{Channel: channel, Text: text})
	if err != nil {
		return fmt.Errorf("encoding Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building Slack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting Slack message: %w", err)
	}
	defer resp.Body.Close()

	var result postMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding Slack response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("slack API error: %s", result.Error)
	}
	return nil
}

func formatMessage(decision models.ActionDecision, atUTC time.Time) string {
	emoji := "🔴"
	actionText := "stopped"
	if decision.Action == models.ActionStart {
		emoji = "🟢"
		actionText = "started"
	}

	inst := decision.Instance
	return fmt.Sprintf("%s *EC2 Instance Power State Change*\n\n"+
		"*Instance:* %s\n"+
		"*Instance ID:* `%s`\n"+
		"*Action:* %s\n"+
		"*Region:* %s\n"+
		"*Time:* %s",
		emoji, inst.Name, inst.InstanceID, actionText, inst.Region,
		atUTC.Format("2006-01-02 15:04:05 UTC"))
}

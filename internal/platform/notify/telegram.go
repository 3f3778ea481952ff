package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gmodels "giveaway-engine-backend/internal/features/giveaway/models"

	"github.com/rs/zerolog/log"
)

const telegramAPIBase = "https://api.telegram.org/bot"

type telegramDispatcher struct {
	httpClient *http.Client
	token      string
}

// NewTelegram returns a dispatcher that messages users through the Bot API.
func NewTelegram(token string) Dispatcher {
	return &telegramDispatcher{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		token:      token,
	}
}

type apiResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func (d *telegramDispatcher) WinnerSelected(ctx context.Context, userID int64, giveaway *gmodels.Giveaway) error {
	message := fmt.Sprintf(
		"Congratulations! You won the giveaway \"%s\".\n\nPrize: %s\n\nPlease open the app and submit your shipping details to receive it.",
		giveaway.Title,
		giveaway.PrizeName,
	)

	if err := d.sendMessage(ctx, userID, message); err != nil {
		return fmt.Errorf("failed to notify winner %d: %w", userID, err)
	}

	log.Debug().
		Int64("user_id", userID).
		Str("giveaway_id", giveaway.ID).
		Msg("winner notification sent")
	return nil
}

func (d *telegramDispatcher) sendMessage(ctx context.Context, chatID int64, text string) error {
	endpoint := telegramAPIBase + d.token + "/sendMessage"
	params := url.Values{
		"chat_id": {fmt.Sprintf("%d", chatID)},
		"text":    {text},
	}

	var response apiResponse
	if err := d.makeRequest(ctx, endpoint, params, &response); err != nil {
		return err
	}
	if !response.Ok {
		return fmt.Errorf("telegram API error: %s", response.Description)
	}
	return nil
}

func (d *telegramDispatcher) makeRequest(ctx context.Context, endpoint string, data url.Values, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"recipebox"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	webhookURL string
	httpClient doer
}

func NewClient(webhookURL string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// PostRecipe posts a short summary of recipe to channel.
func (c *Client) PostRecipe(ctx context.Context, channel string, recipe recipebox.Recipe) error {
	return c.PostMessage(ctx, channel, FormatRecipe(recipe))
}

// FormatRecipe renders recipe as Slack mrkdwn.
func FormatRecipe(recipe recipebox.Recipe) string {
	var b strings.Builder
	if recipe.URL != "" {
		fmt.Fprintf(&b, "*<%s|%s>*", recipe.URL, recipe.Label)
	} else {
		fmt.Fprintf(&b, "*%s*", recipe.Label)
	}
	if recipe.Source != "" {
		fmt.Fprintf(&b, " from %s", recipe.Source)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, ":stopwatch: %s", recipebox.FormatCookingTime(int(recipe.TotalTime)))
	if recipe.Yield > 0 {
		fmt.Fprintf(&b, "  :bust_in_silhouette: %g servings", recipe.Yield)
	}
	if recipe.Calories > 0 {
		fmt.Fprintf(&b, "  :fire: %.0f kcal", recipe.Calories)
	}
	if len(recipe.HealthLabels) > 0 {
		fmt.Fprintf(&b, "\n%s", recipebox.TruncateText(strings.Join(recipe.HealthLabels, ", "), 120))
	}
	return b.String()
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PublishClient delivers post text to the external publish provider
// over a JSON webhook. The provider must answer 2xx with a non-empty
// post id; anything else is a publish failure.
type PublishClient struct {
	url    string
	client *http.Client
}

func NewPublishClient(url string) *PublishClient {
	return &PublishClient{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type publishRequest struct {
	Text string `json:"text"`
}

type publishResponse struct {
	PostID string `json:"postId"`
}

func (c *PublishClient) Publish(ctx context.Context, text string) (string, error) {
	reqBody, err := json.Marshal(publishRequest{Text: text})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d body=%q", resp.StatusCode, string(body))
	}

	var pr publishResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return "", fmt.Errorf("failed to decode json: %w body=%q", err, string(body))
	}
	if pr.PostID == "" {
		return "", fmt.Errorf("missing postId in response body=%q", string(body))
	}

	return pr.PostID, nil
}

package upstream

import (
	"resty.dev/v3"
)

// NewHTTPClient creates a resty client for a single upstream base URL.
// Requests are sent once: the client is built with retries disabled.
func NewHTTPClient(baseURL string, headers map[string]string) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)

	for k, v := range headers {
		client.SetHeader(k, v)
	}

	return client
}

package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"chatrelay/internal/config"
	"chatrelay/internal/interfaces"
)

// maxResponseBody bounds how much of a provider response is read for logging.
const maxResponseBody = 4 << 10

// GupshupClient sends WhatsApp text messages through the Gupshup HTTP API.
type GupshupClient struct {
	apiKey   string
	source   string
	appName  string
	channel  string
	endpoint string
	http     *http.Client
}

func NewGupshupClient(cfg config.GupshupConfig) interfaces.Messenger {
	return NewGupshupClientWithHTTP(cfg, BuildHTTPClient(cfg.Timeout))
}

// NewGupshupClientWithHTTP is NewGupshupClient with a caller-supplied HTTP client.
func NewGupshupClientWithHTTP(cfg config.GupshupConfig, hc *http.Client) *GupshupClient {
	return &GupshupClient{
		apiKey:   cfg.APIKey,
		source:   cfg.SourceNumber,
		appName:  cfg.AppName,
		channel:  cfg.Channel,
		endpoint: cfg.Endpoint,
		http:     hc,
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendMessage makes exactly one delivery attempt. A non-2xx status is reported
// through DeliveryResult.Err together with the status and body.
func (g *GupshupClient) SendMessage(ctx context.Context, to, content string) interfaces.DeliveryResult {
	msg, err := json.Marshal(textMessage{Type: "text", Text: content})
	if err != nil {
		return interfaces.DeliveryResult{Err: fmt.Errorf("encode message: %w", err)}
	}

	form := url.Values{}
	form.Set("channel", g.channel)
	form.Set("source", g.source)
	form.Set("destination", to)
	form.Set("message", string(msg))
	form.Set("src.name", g.appName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return interfaces.DeliveryResult{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("apikey", g.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.http.Do(req)
	if err != nil {
		return interfaces.DeliveryResult{Err: fmt.Errorf("send message: %w", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	result := interfaces.DeliveryResult{StatusCode: resp.StatusCode, Body: string(body)}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Err = &StatusError{StatusCode: resp.StatusCode, Body: result.Body}
	}
	return result
}

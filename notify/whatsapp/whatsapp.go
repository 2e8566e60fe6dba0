// Package whatsapp sends roast reminders through a WhatsApp gateway API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dsagrinders/dsagrinders/config"
)

// Client posts messages to the configured WhatsApp gateway.
type Client struct {
	apiURL     string
	token      string
	enabled    bool
	httpClient *http.Client
}

// Message is the gateway's send payload.
type Message struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// New creates a new WhatsApp client.
func New(cfg *config.WhatsAppConfig) *Client {
	if cfg.GatewayURL != "" {
		if _, err := url.Parse(cfg.GatewayURL); err != nil {
			log.Errorf("Invalid WhatsApp gateway URL: %v", err)
		}
	}

	return &Client{
		apiURL:  cfg.GatewayURL,
		token:   cfg.Token,
		enabled: cfg.Enabled,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether the channel is configured to send at all.
func (c *Client) Enabled() bool {
	return c.enabled
}

// SendRoast sends a roast reminder to a phone number in E.164 format.
func (c *Client) SendRoast(ctx context.Context, phoneNumber, body string) error {
	if !c.enabled {
		log.Debug("WhatsApp notifications are disabled, skipping roast message")
		return nil
	}

	if phoneNumber == "" {
		log.Warn("Phone number is empty, skipping WhatsApp roast")
		return nil
	}

	return c.sendMessage(ctx, Message{To: phoneNumber, Body: body})
}

func (c *Client) sendMessage(ctx context.Context, msg Message) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		var errorMsg strings.Builder
		if resp.Body != nil {
			buf := make([]byte, 256)
			if n, _ := resp.Body.Read(buf); n > 0 {
				errorMsg.WriteString(": ")
				errorMsg.Write(buf[:n])
			}
		}
		return fmt.Errorf("whatsapp gateway returned status %d%s", resp.StatusCode, errorMsg.String())
	}

	log.Debug("Sent WhatsApp roast", "to", msg.To)
	return nil
}

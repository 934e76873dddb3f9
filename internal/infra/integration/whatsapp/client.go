package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

// Client talks to an Evolution API server. Every seller has an instance
// named after their user ID; the service itself uses a shared one.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// SendText sends a plain message and returns Evolution's message id.
func (c *Client) SendText(ctx context.Context, instance, phone, text string) (string, error) {
	var out SendTextResponse
	err := c.do(ctx, http.MethodPost, "/message/sendText/"+instance, SendTextInput{Number: phone, Text: text}, &out)
	if err != nil {
		return "", err
	}
	c.logger.Debug("✅ WhatsApp: mensagem enviada", zap.String("instance", instance), zap.String("id", out.Key.ID))
	return out.Key.ID, nil
}

func (c *Client) ConnectionState(ctx context.Context, instance string) (entity.WhatsAppStatus, error) {
	var out ConnectionStateResponse
	if err := c.do(ctx, http.MethodGet, "/instance/connectionState/"+instance, nil, &out); err != nil {
		return "", err
	}
	return MapConnectionState(out.Instance.State), nil
}

// Connect starts pairing and returns the QR code (data URI).
func (c *Client) Connect(ctx context.Context, instance string) (string, error) {
	var out ConnectResponse
	if err := c.do(ctx, http.MethodGet, "/instance/connect/"+instance, nil, &out); err != nil {
		return "", err
	}
	if out.Base64 == "" {
		return "", fmt.Errorf("evolution: instância %s não retornou QR code", instance)
	}
	return out.Base64, nil
}

// MapConnectionState converts Evolution's connection state into ours.
func MapConnectionState(state string) entity.WhatsAppStatus {
	switch strings.ToLower(state) {
	case "open":
		return entity.WhatsAppOnline
	case "connecting":
		return entity.WhatsAppConnecting
	}
	return entity.WhatsAppOffline
}

// MapMessageStatus converts a delivery ack from messages.update.
func MapMessageStatus(status string) (entity.MessageStatus, bool) {
	switch strings.ToUpper(status) {
	case "SERVER_ACK", "PENDING":
		return entity.MessageSent, true
	case "DELIVERY_ACK":
		return entity.MessageDelivered, true
	case "READ", "PLAYED":
		return entity.MessageRead, true
	case "ERROR":
		return entity.MessageFailed, true
	}
	return "", false
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("evolution: erro ao serializar payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("evolution: erro ao criar requisição: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("evolution: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		_ = json.Unmarshal(respBody, &apiErr)
		c.logger.Warn("❌ Evolution API retornou erro",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		if apiErr.Response.Message != nil {
			return fmt.Errorf("evolution api error %d: %v", resp.StatusCode, apiErr.Response.Message)
		}
		return fmt.Errorf("evolution api error: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("evolution: erro ao parsear resposta: %w", err)
	}
	return nil
}

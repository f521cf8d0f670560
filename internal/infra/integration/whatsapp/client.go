package whatsapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

const DefaultBaseURL = "https://graph.facebook.com/v18.0"

// Client fala com a WhatsApp Cloud API. Credenciais vêm por chamada porque
// o admin pode trocá-las em tempo de execução.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "whatsapp-cloud-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("⚡ Circuit breaker mudou de estado")
		},
		// 4xx é erro do pedido, não indisponibilidade da API
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500
			}
			return err == nil
		},
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// SendText envia uma mensagem de texto simples para um número (só dígitos).
func (c *Client) SendText(ctx context.Context, accessToken, phoneNumberID, to, body string) error {
	if accessToken == "" || phoneNumberID == "" {
		return fmt.Errorf("whatsapp não configurado")
	}

	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.sendText(ctx, accessToken, phoneNumberID, to, body)
	})
	return err
}

func (c *Client) sendText(ctx context.Context, accessToken, phoneNumberID, to, body string) error {
	payload := sendTextRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao chamar whatsapp api: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var result SendMessageResponse
	_ = json.Unmarshal(respBody, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if result.Error != nil {
			apiErr.Code = result.Error.Code
			apiErr.Message = result.Error.Message
		}
		log.Warn().Int("status", resp.StatusCode).Str("to", to).Msg("❌ WhatsApp: API retornou erro")
		return apiErr
	}

	if result.Error != nil {
		return &APIError{StatusCode: resp.StatusCode, Code: result.Error.Code, Message: result.Error.Message}
	}

	log.Info().Str("to", to).Msg("✅ WhatsApp: Mensagem enviada")
	return nil
}

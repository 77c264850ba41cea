// Package messaging delivers outbound chat messages through the HTTP gateway.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agendazap/agendazap/pkg/logging"
)

var gatewayTracer = otel.Tracer("agendazap.internal.messaging.gateway")

const (
	sendMaxAttempts = 3
	sendBackoffBase = 500 * time.Millisecond
)

// GatewaySender posts messages to the external messaging gateway. Sends are
// retried on transport errors and 5xx responses; 4xx responses fail fast.
type GatewaySender struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewGatewaySender creates a sender for the gateway at baseURL.
func NewGatewaySender(baseURL, token string, logger *logging.Logger) *GatewaySender {
	if logger == nil {
		logger = logging.Default()
	}
	return &GatewaySender{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type outboundMessage struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// Send delivers one text message to the recipient.
func (s *GatewaySender) Send(ctx context.Context, to, text string) error {
	if s.baseURL == "" {
		return errors.New("messaging: gateway url not configured")
	}
	if to == "" {
		return errors.New("messaging: recipient is required")
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("messaging: message text is required")
	}

	ctx, span := gatewayTracer.Start(ctx, "gateway.send",
		trace.WithAttributes(attribute.String("messaging.recipient", to)))
	defer span.End()

	body, err := json.Marshal(outboundMessage{To: to, Text: text})
	if err != nil {
		return fmt.Errorf("messaging: encode payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= sendMaxAttempts; attempt++ {
		lastErr = s.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return fmt.Errorf("messaging: send to %s: %w", to, perm.err)
		}
		s.logger.Warn("messaging: send attempt failed",
			"recipient", to,
			"attempt", attempt,
			"error", lastErr,
		)
		if attempt < sendMaxAttempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("messaging: send to %s: %w", to, ctx.Err())
			case <-time.After(sendBackoffBase * time.Duration(attempt)):
			}
		}
	}
	return fmt.Errorf("messaging: send to %s failed after %d attempts: %w", to, sendMaxAttempts, lastErr)
}

// permanentError marks a response that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func (s *GatewaySender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck

	switch {
	case resp.StatusCode < http.StatusMultipleChoices:
		return nil
	case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	default:
		return &permanentError{err: fmt.Errorf("gateway rejected message: status %d", resp.StatusCode)}
	}
}

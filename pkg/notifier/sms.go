package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrGatewayTimeout means the SMS gateway did not answer within the send
// window. The gateway frequently accepts messages it never acknowledges in
// time, so callers treat this as "queued", not as a failure.
var ErrGatewayTimeout = errors.New("sms gateway did not respond within the send window")

// DefaultSMSTimeout bounds one gateway call.
const DefaultSMSTimeout = 12 * time.Second

// SMSSender delivers one message to an E.164 number and returns the
// gateway-assigned message id.
type SMSSender interface {
	Send(ctx context.Context, to, message string) (string, error)
}

// HTTPSMSSender talks to a form-encoded HTTP SMS gateway.
type HTTPSMSSender struct {
	baseURL  string
	apiKey   string
	senderID string
	userID   string
	password string
	timeout  time.Duration
	client   *http.Client
	log      *zap.Logger
}

func NewHTTPSMSSender(baseURL, apiKey, senderID, userID, password string, timeout time.Duration, log *zap.Logger) *HTTPSMSSender {
	if timeout <= 0 {
		timeout = DefaultSMSTimeout
	}
	return &HTTPSMSSender{
		baseURL:  baseURL,
		apiKey:   apiKey,
		senderID: senderID,
		userID:   userID,
		password: password,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

type smsGatewayResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"msgid"`
	Reason    string `json:"reason"`
}

func (s *HTTPSMSSender) Send(ctx context.Context, to, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("userid", s.userID)
	form.Set("password", s.password)
	form.Set("senderid", s.senderID)
	form.Set("sendMethod", "quick")
	form.Set("msgType", "text")
	form.Set("msg", message)
	form.Set("mobile", to)
	form.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/send", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			s.log.Warn("sms gateway timed out, treating as queued",
				zap.String("to", maskPhone(to)))
			return "", ErrGatewayTimeout
		}
		return "", fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sms gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var gw smsGatewayResponse
	if err := json.Unmarshal(body, &gw); err != nil {
		return "", fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if !strings.EqualFold(gw.Status, "success") {
		return "", fmt.Errorf("sms gateway rejected message: %s", gw.Reason)
	}

	return gw.MessageID, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func maskPhone(phone string) string {
	if phone == "" {
		return "[empty]"
	}
	if len(phone) < 4 {
		return "***"
	}
	return "***" + phone[len(phone)-4:]
}

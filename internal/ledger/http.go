package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker/v2"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/logger"
	"github.com/osse101/pointshop/internal/metrics"
)

// balanceBody is the wire form of a balance on the remote ledger
type balanceBody struct {
	Balance int64 `json:"balance"`
}

// HTTPLedger talks to a remote balance service:
//
//	GET {base}/balances/{platform}/{user}  -> {"balance": n}
//	PUT {base}/balances/{platform}/{user}  <- {"balance": n}
//
// Calls run through a circuit breaker; 5xx responses and transport errors count as failures.
type HTTPLedger struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewHTTPLedger creates an HTTPLedger with its own circuit breaker
func NewHTTPLedger(baseURL string, client *http.Client) *HTTPLedger {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: BreakerMaxRequests,
		Interval:    BreakerInterval,
		Timeout:     BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > BreakerConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.LedgerBreakerState.WithLabelValues(BackendHTTP).Set(float64(to))
			logger.Info(LogMsgBreakerStateChange, "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return NewHTTPLedgerWithBreaker(baseURL, client, cb)
}

// NewHTTPLedgerWithBreaker creates an HTTPLedger with a caller-provided breaker
func NewHTTPLedgerWithBreaker(baseURL string, client *http.Client, breaker *gobreaker.CircuitBreaker[*http.Response]) *HTTPLedger {
	return &HTTPLedger{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		breaker: breaker,
	}
}

// GetBalance fetches the user's balance
func (h *HTTPLedger) GetBalance(ctx context.Context, user domain.Identity) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.balanceURL(user), nil)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgBuildRequest, err)
	}

	resp, err := h.do(req)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgGetBalanceFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf(ErrMsgGetBalanceFailed, fmt.Errorf(ErrMsgUnexpectedStatus, resp.StatusCode))
	}

	var body balanceBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf(ErrMsgDecodeResponse, err)
	}
	return body.Balance, nil
}

// SetBalance overwrites the user's balance
func (h *HTTPLedger) SetBalance(ctx context.Context, user domain.Identity, balance int64) error {
	payload, err := json.Marshal(balanceBody{Balance: balance})
	if err != nil {
		return fmt.Errorf(ErrMsgEncodeRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.balanceURL(user), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf(ErrMsgBuildRequest, err)
	}
	req.Header.Set(HeaderContentType, ContentTypeJSON)

	resp, err := h.do(req)
	if err != nil {
		return fmt.Errorf(ErrMsgSetBalanceFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf(ErrMsgSetBalanceFailed, fmt.Errorf(ErrMsgUnexpectedStatus, resp.StatusCode))
	}
	return nil
}

// do sends the request through the breaker. The caller closes the body on success.
func (h *HTTPLedger) do(req *http.Request) (*http.Response, error) {
	if requestID := logger.GetRequestID(req.Context()); requestID != "" {
		req.Header.Set(HeaderRequestID, requestID)
	}

	return h.breaker.Execute(func() (*http.Response, error) {
		resp, err := h.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, fmt.Errorf(ErrMsgUnexpectedStatus, resp.StatusCode)
		}
		return resp, nil
	})
}

func (h *HTTPLedger) balanceURL(user domain.Identity) string {
	return fmt.Sprintf(BalancePathFormat, h.baseURL, url.PathEscape(user.Platform), url.PathEscape(user.UserID))
}

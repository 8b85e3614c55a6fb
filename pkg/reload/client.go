package reload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/tablewatch/internal/logging"
	"github.com/aretw0/tablewatch/pkg/domain"
)

const (
	// DefaultTimeout bounds a single reload request.
	DefaultTimeout = 10 * time.Second

	// maxExcerpt caps how much of an error body ends up in outcomes and logs.
	maxExcerpt = 512
)

// Client sends reload mutations to one orchestrator endpoint.
type Client struct {
	host       string
	port       int
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient injects the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a structured logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the orchestrator at host:port.
func NewClient(host string, port int, opts ...Option) *Client {
	c := &Client{
		host:    host,
		port:    port,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	return c
}

// Endpoint returns the GraphQL URL the client posts to.
func (c *Client) Endpoint() string {
	return "http://" + net.JoinHostPort(c.host, strconv.Itoa(c.port)) + "/graphql"
}

type requestBody struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type typedResult struct {
	TypeName            string       `json:"__typename"`
	Message             string       `json:"message"`
	LoadStatus          string       `json:"loadStatus"`
	LocationOrLoadError *typedResult `json:"locationOrLoadError"`
}

// Reload asks the orchestrator to reload location and classifies the result.
func (c *Client) Reload(ctx context.Context, location string) domain.ReloadOutcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(requestBody{
		Query:     ReloadMutation,
		Variables: map[string]any{"location": location},
	})
	if err != nil {
		return transport(0, fmt.Sprintf("failed to encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return transport(0, fmt.Sprintf("failed to build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Reload request failed", "endpoint", c.Endpoint(), "err", err)
		return transport(0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transport(resp.StatusCode, fmt.Sprintf("failed to read response: %v", err))
	}
	c.logger.Debug("Reload request finished",
		"endpoint", c.Endpoint(),
		"location", location,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return classify(resp.StatusCode, body)
}

func classify(status int, body []byte) domain.ReloadOutcome {
	if status < 200 || status > 299 {
		return transport(status, excerpt(body))
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return transport(status, "invalid response body: "+excerpt(body))
	}

	if rawErrs, ok := top["errors"]; ok {
		var errs []domain.GraphQLError
		if err := json.Unmarshal(rawErrs, &errs); err != nil || len(errs) == 0 {
			return domain.ReloadOutcome{
				Kind:       domain.OutcomeApplicationError,
				StatusCode: status,
				Message:    excerpt(rawErrs),
			}
		}
		return domain.ReloadOutcome{
			Kind:       domain.OutcomeApplicationError,
			StatusCode: status,
			Errors:     errs,
		}
	}

	var data struct {
		Reload *typedResult `json:"reloadRepositoryLocation"`
	}
	if raw, ok := top["data"]; ok {
		_ = json.Unmarshal(raw, &data)
	}
	if r := data.Reload; r != nil {
		if errorTypeNames[r.TypeName] {
			return rejected(status, r)
		}
		if le := r.LocationOrLoadError; le != nil && errorTypeNames[le.TypeName] {
			return rejected(status, le)
		}
	}

	return domain.ReloadOutcome{Kind: domain.OutcomeSuccess, StatusCode: status}
}

func rejected(status int, r *typedResult) domain.ReloadOutcome {
	return domain.ReloadOutcome{
		Kind:       domain.OutcomeApplicationError,
		StatusCode: status,
		Errors:     []domain.GraphQLError{{Message: r.Message, TypeName: r.TypeName}},
	}
}

func transport(status int, msg string) domain.ReloadOutcome {
	return domain.ReloadOutcome{
		Kind:       domain.OutcomeTransportError,
		StatusCode: status,
		Message:    msg,
	}
}

func excerpt(b []byte) string {
	if len(b) > maxExcerpt {
		return string(b[:maxExcerpt]) + "..."
	}
	return string(b)
}

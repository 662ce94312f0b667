package centralserver

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/edvin/provisioning/internal/core"
	"github.com/edvin/provisioning/internal/metrics"
	"github.com/edvin/provisioning/internal/model"
)

// maxResponseBytes caps how much of a central server response is read.
const maxResponseBytes = 64 << 20

// Credentials are the caller's Basic auth credentials, passed through to
// the central server unchanged.
type Credentials struct {
	Username string
	Password string
}

// ForwardRequest describes one call to one central server.
type ForwardRequest struct {
	ShardID     int
	Type        model.ObjectType
	ID          string
	Method      string
	Body        []byte
	Credentials Credentials
	// ClientAddr becomes X-Forwarded-For. Inbound forwarding headers are never copied.
	ClientAddr string
	RequestID  string
	// List requires a 200 response with a JSON array body.
	List bool
}

// Response is a validated central server response with the central server
// id already stamped into the body.
type Response struct {
	ShardID int
	Status  int
	Body    Body
}

type Client struct {
	shards     []model.Shard
	byID       map[int]model.Shard
	httpClient *http.Client
}

// NewClient creates a client for the given central servers. connectTimeout
// bounds dialing and the TLS handshake only: there is no overall request
// timeout, so a central server that accepts the connection and then stalls
// holds the request until the caller's context ends.
func NewClient(shards []model.Shard, connectTimeout time.Duration, tlsConfig *tls.Config) *Client {
	byID := make(map[int]model.Shard, len(shards))
	for _, s := range shards {
		byID[s.ID] = s
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: connectTimeout,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		shards:     shards,
		byID:       byID,
		httpClient: &http.Client{Transport: transport},
	}
}

// Forward sends one request to one central server and validates the response.
func (c *Client) Forward(ctx context.Context, fr ForwardRequest) (*Response, error) {
	shard, ok := c.byID[fr.ShardID]
	if !ok {
		return nil, fmt.Errorf("forward to central server %d: %w", fr.ShardID, core.ErrUnknownShard)
	}

	target, err := actionURL(shard.URL, fr.Type, fr.ID)
	if err != nil {
		return nil, fmt.Errorf("forward to central server %d: %w", fr.ShardID, err)
	}

	var body io.Reader
	if fr.Body != nil {
		body = bytes.NewReader(fr.Body)
	}
	req, err := http.NewRequestWithContext(ctx, fr.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(fr.Credentials.Username, fr.Credentials.Password)
	req.Header.Set("Accept", "application/json")
	if fr.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if fr.RequestID != "" {
		req.Header.Set("X-Request-ID", fr.RequestID)
	}
	if fr.ClientAddr != "" {
		req.Header.Set("X-Forwarded-For", fr.ClientAddr)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveForward(fr.ShardID, fr.Method, start, err)
		return nil, &UpstreamError{ShardID: fr.ShardID, URL: target, Err: fmt.Errorf("central server request: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.ObserveForward(fr.ShardID, fr.Method, start, err)
		return nil, &UpstreamError{ShardID: fr.ShardID, URL: target, Status: resp.StatusCode, Header: resp.Header, Err: fmt.Errorf("read response: %w", err)}
	}

	parsed, err := validateResponse(fr, resp, data)
	metrics.ObserveForward(fr.ShardID, fr.Method, start, err)
	if err != nil {
		return nil, &UpstreamError{
			ShardID: fr.ShardID,
			URL:     target,
			Status:  resp.StatusCode,
			Header:  resp.Header,
			Body:    data,
			Err:     err,
		}
	}
	parsed.StampCentralServer(fr.ShardID)

	return &Response{
		ShardID: fr.ShardID,
		Status:  resp.StatusCode,
		Body:    parsed,
	}, nil
}

func validateResponse(fr ForwardRequest, resp *http.Response, data []byte) (Body, error) {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return Body{}, fmt.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	if fr.List && resp.StatusCode != http.StatusOK {
		return Body{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if !model.ResultCode(resp.StatusCode).Valid() {
		return Body{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	parsed, err := ParseBody(data)
	if err != nil {
		return Body{}, err
	}
	if fr.List && parsed.Kind != ObjectList {
		return Body{}, fmt.Errorf("expected JSON array, got %s", parsed.Kind)
	}
	return parsed, nil
}

func actionURL(base string, t model.ObjectType, id string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse central server URL: %w", err)
	}
	q := u.Query()
	q.Set("action", t.Action())
	if id != "" {
		q.Set("id", id)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/benchrace/benchrace/internal/outcome"
	"github.com/benchrace/benchrace/internal/reqspec"
)

// Config carries transport-level settings shared by all implementations.
type Config struct {
	Timeout   time.Duration // client-level timeout safety net
	ProxyURL  string        // optional; falls back to environment proxies
	ProxyUser string
	ProxyPass string
}

// Client is implemented by every transport in this package. It matches
// executor.Client structurally so implementations plug straight into the
// engine.
type Client interface {
	Dispatch(ctx context.Context, spec reqspec.Spec) outcome.Raw
}

// ForName returns the named client implementation.
func ForName(name string, cfg Config) (Client, error) {
	switch name {
	case "pooled":
		return NewPooled(cfg)
	case "basic":
		return NewBasic(cfg), nil
	default:
		return nil, fmt.Errorf("unknown client implementation %q", name)
	}
}

// NewTransport builds the tuned transport shared by pooled clients.
func NewTransport(cfg Config) (*http.Transport, error) {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("proxy url: %w", err)
		}
		if cfg.ProxyUser != "" {
			if cfg.ProxyPass != "" {
				proxy.User = url.UserPassword(cfg.ProxyUser, cfg.ProxyPass)
			} else {
				proxy.User = url.User(cfg.ProxyUser)
			}
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return transport, nil
}

// Pooled dispatches through a single shared http.Client with connection
// reuse. This is also the implementation the harness trusts for its own
// connectivity pre-check.
type Pooled struct {
	client *http.Client
}

func NewPooled(cfg Config) (*Pooled, error) {
	transport, err := NewTransport(cfg)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout < 0 {
		timeout = 0
	}
	return &Pooled{client: &http.Client{Timeout: timeout, Transport: transport}}, nil
}

func (p *Pooled) Dispatch(ctx context.Context, spec reqspec.Spec) outcome.Raw {
	return dispatch(ctx, p.client, spec, encodeLegacy)
}

// Basic builds a fresh default-transport client per dispatch, modelling a
// competitor with no connection reuse across requests.
type Basic struct {
	cfg Config
}

func NewBasic(cfg Config) *Basic {
	return &Basic{cfg: cfg}
}

func (b *Basic) Dispatch(ctx context.Context, spec reqspec.Spec) outcome.Raw {
	client := &http.Client{Timeout: b.cfg.Timeout}
	defer client.CloseIdleConnections()
	return dispatch(ctx, client, spec, encodeStructured)
}

type wireException struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type wireMeta struct {
	RequestTime string `json:"request_time"`
	ProcessTime string `json:"process_time"`
	Tag         string `json:"tag,omitempty"`
}

type wireResponse struct {
	Headers       map[string]string `json:"headers"`
	ContentLength int64             `json:"content_length"`
}

// encoder assembles the outcome payload for one settled request. exc is nil
// on a clean 200-class response.
type encoder func(status int, exc *wireException, resp wireResponse, meta wireMeta) []byte

// encodeLegacy renders status as a numeric string and the exception as a
// JSON-encoded string ("{}" when absent).
func encodeLegacy(status int, exc *wireException, resp wireResponse, meta wireMeta) []byte {
	excJSON := "{}"
	if exc != nil {
		if b, err := json.Marshal(exc); err == nil {
			excJSON = string(b)
		}
	}
	payload := struct {
		Response   wireResponse `json:"response"`
		HTTPStatus string       `json:"http_status"`
		Exception  string       `json:"exception"`
		Meta       wireMeta     `json:"meta"`
	}{resp, strconv.Itoa(status), excJSON, meta}
	b, _ := json.Marshal(payload)
	return b
}

// encodeStructured renders status as an integer and the exception as a
// nested object, omitted when absent.
func encodeStructured(status int, exc *wireException, resp wireResponse, meta wireMeta) []byte {
	payload := struct {
		Response   wireResponse   `json:"response"`
		HTTPStatus int            `json:"http_status"`
		Exception  *wireException `json:"exception,omitempty"`
		Meta       wireMeta       `json:"meta"`
	}{resp, status, exc, meta}
	b, _ := json.Marshal(payload)
	return b
}

const timeLayout = "2006-01-02 15:04:05.000"

func dispatch(ctx context.Context, client *http.Client, spec reqspec.Spec, encode encoder) outcome.Raw {
	start := time.Now()

	finish := func(status int, exc *wireException, resp wireResponse) outcome.Raw {
		end := time.Now()
		meta := wireMeta{
			RequestTime: start.Format(timeLayout) + " -> " + end.Format(timeLayout),
			ProcessTime: fmt.Sprintf("%.4f", end.Sub(start).Seconds()),
			Tag:         spec.Tag,
		}
		return outcome.Raw{
			Payload: encode(status, exc, resp, meta),
			Latency: end.Sub(start),
		}
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, spec.URL, nil)
	if err != nil {
		return finish(0, &wireException{
			Type:    "HttpError",
			Message: fmt.Sprintf("build request: %v", err),
		}, wireResponse{Headers: map[string]string{}})
	}

	res, err := client.Do(req)
	if err != nil {
		// Batch cancellation is a hard failure with no payload stage; the
		// executor reclassifies or discards it.
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return outcome.Raw{Err: context.Canceled, Latency: time.Since(start)}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return finish(0, &wireException{
				Type:    "Timeout",
				Message: fmt.Sprintf("Request timeout after %.2f seconds", spec.Timeout.Seconds()),
			}, wireResponse{Headers: map[string]string{}})
		}
		return finish(0, &wireException{
			Type:    "HttpError",
			Message: fmt.Sprintf("Request error: %v", err),
		}, wireResponse{Headers: map[string]string{}})
	}
	defer res.Body.Close()

	// Drain so the connection can be reused; body content is not part of
	// any verdict.
	read, _ := io.Copy(io.Discard, res.Body)

	headers := make(map[string]string, len(res.Header))
	for key := range res.Header {
		headers[key] = res.Header.Get(key)
	}
	resp := wireResponse{Headers: headers, ContentLength: read}

	var exc *wireException
	if res.StatusCode < 200 || res.StatusCode > 299 {
		exc = &wireException{
			Type:    "HttpStatusError",
			Message: fmt.Sprintf("HTTP status error: %d", res.StatusCode),
		}
	}
	return finish(res.StatusCode, exc, resp)
}

package http

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/internal/providers/shared/tlsconfig"
	"github.com/crmarques/boxctl/resource"
	"github.com/crmarques/boxctl/server"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	formMediaType      = "application/x-www-form-urlencoded"
	jsonMediaType      = "application/json"
	userAgent          = "boxctl"
	versionEndpoint    = "guest/system/version"
)

var _ server.Executor = (*Gateway)(nil)
var _ server.VersionReader = (*Gateway)(nil)

// CallObserver receives one notification per executed call.
type CallObserver interface {
	ObserveCall(endpoint string, outcome string, elapsed time.Duration)
}

// Gateway executes BoxBilling API calls over HTTP.
type Gateway struct {
	baseURL  *url.URL
	referer  string
	apiUser  string
	sefURLs  bool
	client   *http.Client
	limiter  *rate.Limiter
	tlsDebug tlsDebugInfo
	observer CallObserver
}

type GatewayOption func(*Gateway)

func WithHTTPClient(client *http.Client) GatewayOption {
	return func(g *Gateway) {
		if g == nil || client == nil {
			return
		}
		g.client = client
	}
}

func WithCallObserver(observer CallObserver) GatewayOption {
	return func(g *Gateway) {
		if g == nil {
			return
		}
		g.observer = observer
	}
}

func NewGateway(cfg config.Target, opts ...GatewayOption) (*Gateway, error) {
	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerSecond < 0 {
		return nil, validationError("target.requests-per-second must not be negative", nil)
	}

	tlsConfig, err := buildTLSConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	gateway := &Gateway{
		baseURL: baseURL,
		referer: strings.TrimSpace(cfg.EffectiveReferer()),
		apiUser: cfg.EffectiveAPIUser(),
		sefURLs: cfg.SEFURLs,
		client: &http.Client{
			Timeout:   defaultHTTPTimeout,
			Transport: transport,
		},
		tlsDebug: newTLSDebugInfo(cfg.TLS),
	}
	if cfg.RequestsPerSecond > 0 {
		gateway.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(gateway)
	}
	return gateway, nil
}

// Execute performs one call. Failures of every kind are reported through the
// result and, with IgnoreErrors, demoted to Result.Ignored.
func (g *Gateway) Execute(ctx context.Context, call server.Call) server.Result {
	started := time.Now()
	value, err := g.call(ctx, call)
	result := server.Settle(value, err, call.IgnoreErrors)

	if result.Ignored != nil {
		logIgnored(ctx, call, result.Ignored)
	}
	if g.observer != nil {
		g.observer.ObserveCall(resource.FilterPath(call.Endpoint), outcomeLabel(result), time.Since(started))
	}
	return result
}

// Version reads the running BoxBilling version through the public guest API.
func (g *Gateway) Version(ctx context.Context) (string, error) {
	value, err := g.call(ctx, server.Call{Endpoint: versionEndpoint})
	if err != nil {
		return "", err
	}
	version := strings.TrimSpace(resource.CanonicalString(value))
	if version == "" {
		return "", transportError("remote API returned an empty version", nil)
	}
	return version, nil
}

func (g *Gateway) call(ctx context.Context, call server.Call) (resource.Value, error) {
	if g == nil {
		return nil, validationError("API gateway is not configured", nil)
	}

	endpoint := resource.FilterPath(call.Endpoint)
	if endpoint == "" {
		return nil, validationError("API endpoint is required", nil)
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, transportError("request was canceled while waiting for rate limiter", err)
		}
	}

	request, err := g.newRequest(ctx, endpoint, call)
	if err != nil {
		return nil, err
	}

	status, body, err := g.execute(ctx, endpoint, request)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(status, body)
}

func outcomeLabel(result server.Result) string {
	switch {
	case result.Ignored != nil:
		return "ignored"
	case result.Err != nil:
		return strings.ToLower(string(categoryOf(result.Err)))
	default:
		return "ok"
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, validationError("target.base-url is required", nil)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return nil, validationError("target.base-url is invalid", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, validationError("target.base-url must use http or https", nil)
	}
	if parsed.Host == "" {
		return nil, validationError("target.base-url host is required", nil)
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed, nil
}

func buildTLSConfig(tlsSettings *config.TLS) (*tls.Config, error) {
	return tlsconfig.Build(tlsSettings, "target")
}

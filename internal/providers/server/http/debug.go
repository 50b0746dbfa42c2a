package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-logr/logr"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/server"
)

type tlsDebugInfo struct {
	enabled            bool
	insecureSkipVerify bool
	caCertFile         string
	clientCertFile     string
}

func newTLSDebugInfo(tlsSettings *config.TLS) tlsDebugInfo {
	if tlsSettings == nil {
		return tlsDebugInfo{}
	}

	return tlsDebugInfo{
		enabled:            true,
		insecureSkipVerify: tlsSettings.InsecureSkipVerify,
		caCertFile:         strings.TrimSpace(tlsSettings.CACertFile),
		clientCertFile:     strings.TrimSpace(tlsSettings.ClientCertFile),
	}
}

func (g *Gateway) doRequest(ctx context.Context, endpoint string, request *http.Request) (*http.Response, error) {
	logger := logr.FromContextOrDiscard(ctx).V(1)
	logger.Info(
		"http request",
		"endpoint", endpoint,
		"url", redactURL(request.URL),
		"tls", g.tlsDebug.enabled,
		"mtls", g.tlsDebug.clientCertFile != "",
		"insecureSkipVerify", g.tlsDebug.insecureSkipVerify,
		"caCertFile", g.tlsDebug.caCertFile,
	)

	response, err := g.client.Do(request)
	if err != nil {
		logger.Info("http request failed", "endpoint", endpoint, "error", err.Error())
		return nil, err
	}

	logger.Info("http response", "endpoint", endpoint, "status", response.StatusCode)
	return response, nil
}

// logIgnored reports a swallowed failure; it is only visible at info level
// when the call asked for debug output.
func logIgnored(ctx context.Context, call server.Call, err error) {
	logger := logr.FromContextOrDiscard(ctx)
	if !call.Debug {
		logger = logger.V(1)
	}
	logger.Info("ignored API failure", "endpoint", call.Endpoint, "error", err.Error())
}

func redactURL(value *url.URL) string {
	if value == nil {
		return ""
	}

	cloned := *value
	cloned.User = nil
	return cloned.String()
}

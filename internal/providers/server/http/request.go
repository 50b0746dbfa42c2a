package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/crmarques/boxctl/resource"
	"github.com/crmarques/boxctl/server"
)

const maxResponseBytes = 1 << 20

func (g *Gateway) newRequest(ctx context.Context, endpoint string, call server.Call) (*http.Request, error) {
	body := encodeForm(call.Data).Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpointURL(endpoint), strings.NewReader(body))
	if err != nil {
		return nil, internalError("failed to create remote request", err)
	}

	request.Header.Set("Content-Type", formMediaType)
	request.Header.Set("Accept", jsonMediaType)
	request.Header.Set("User-Agent", userAgent)

	referer := strings.TrimSpace(call.Referer)
	if referer == "" {
		referer = g.referer
	}
	if referer != "" {
		request.Header.Set("Referer", referer)
	}
	if call.Token != "" {
		request.SetBasicAuth(g.apiUser, call.Token)
	}

	return request, nil
}

func (g *Gateway) execute(ctx context.Context, endpoint string, request *http.Request) (int, []byte, error) {
	response, err := g.doRequest(ctx, endpoint, request)
	if err != nil {
		return 0, nil, transportError("remote request failed", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, transportError("failed to read remote response body", err)
	}
	return response.StatusCode, body, nil
}

// endpointURL routes through /api/ with SEF URLs, otherwise through index.php?_url=.
func (g *Gateway) endpointURL(endpoint string) string {
	target := *g.baseURL
	if g.sefURLs {
		target.Path = g.baseURL.Path + "/api/" + endpoint
		return target.String()
	}

	target.Path = g.baseURL.Path + "/index.php"
	target.RawQuery = url.Values{"_url": []string{"/api/" + endpoint}}.Encode()
	return target.String()
}

// encodeForm flattens data into PHP-style form fields: nested mappings become
// key[sub] and lists become key[0], key[1].
func encodeForm(data resource.Data) url.Values {
	values := url.Values{}
	for _, key := range sortedKeys(data) {
		appendFormValue(values, key, data[key])
	}
	return values
}

func appendFormValue(values url.Values, key string, value any) {
	switch typed := value.(type) {
	case map[string]any:
		for _, nestedKey := range sortedKeys(typed) {
			appendFormValue(values, key+"["+nestedKey+"]", typed[nestedKey])
		}
	case []any:
		for idx, nested := range typed {
			appendFormValue(values, fmt.Sprintf("%s[%d]", key, idx), nested)
		}
	default:
		values.Add(key, resource.CanonicalString(value))
	}
}

func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

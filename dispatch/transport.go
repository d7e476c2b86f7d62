package dispatch

import (
	"encoding/json"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/BaSui01/fetchup/config"
	"github.com/BaSui01/fetchup/internal/tlsutil"
)

// Transport sends one request. *http.Client satisfies it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(req *http.Request) (*http.Response, error)

func (f TransportFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Decoder decodes a response body into v.
type Decoder interface {
	Decode(r io.Reader, v any) error
}

// JSONDecoder decodes a single JSON value.
type JSONDecoder struct{}

func (JSONDecoder) Decode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

// NewHTTPClient builds the default hardened client from cfg, wrapping it with
// otelhttp instrumentation when cfg.Tracing is set.
func NewHTTPClient(cfg config.TransportConfig) *http.Client {
	client := tlsutil.SecureHTTPClient(cfg)
	if cfg.Tracing {
		client.Transport = otelhttp.NewTransport(client.Transport)
	}
	return client
}

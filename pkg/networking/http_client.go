// Package networking provides the HTTP plumbing shared by the API client
// and the OpenAPI document fetcher.
package networking

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
)

const (
	// HttpScheme is the insecure HTTP scheme.
	HttpScheme = "http"

	// HttpsScheme is the HTTPS scheme.
	HttpsScheme = "https"
)

// HttpTimeout is the default timeout for outgoing HTTP requests.
const HttpTimeout = 30 * time.Second

// HTTPClient is the interface used by the fetch helpers. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Dialer control function for validating addresses prior to connection.
func protectedDialerControl(_, address string, _ syscall.RawConn) error {
	return AddressReferencesPrivateIp(address)
}

// ValidatingTransport checks the request URL scheme prior to forwarding.
// HTTPS is always accepted, plain HTTP only when AllowHTTP is set.
type ValidatingTransport struct {
	Transport http.RoundTripper
	AllowHTTP bool
}

// RoundTrip validates the request URL prior to forwarding.
func (t *ValidatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	parsedUrl, err := url.Parse(req.URL.String())
	if err != nil {
		return nil, fmt.Errorf("the supplied URL %s is malformed", req.URL.String())
	}

	switch parsedUrl.Scheme {
	case HttpsScheme:
	case HttpScheme:
		if !t.AllowHTTP {
			return nil, fmt.Errorf("the supplied URL %s is not HTTPS scheme", req.URL.String())
		}
	default:
		return nil, fmt.Errorf("the supplied URL %s has unsupported scheme %s", req.URL.String(), parsedUrl.Scheme)
	}

	return t.Transport.RoundTrip(req)
}

// apiKeyTransport adds X-API-KEY authentication to HTTP requests.
type apiKeyTransport struct {
	transport http.RoundTripper
	apiKey    string
}

// RoundTrip adds the X-API-KEY header and forwards the request.
func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original.
	newReq := req.Clone(req.Context())
	newReq.Header.Set("X-API-KEY", t.apiKey)

	return t.transport.RoundTrip(newReq)
}

// requestIDTransport tags every outgoing request with a fresh X-Request-Id
// so server-side logs can be correlated with CLI invocations.
type requestIDTransport struct {
	transport http.RoundTripper
}

// RoundTrip adds the X-Request-Id header and forwards the request.
func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	newReq := req.Clone(req.Context())
	if newReq.Header.Get("X-Request-Id") == "" {
		newReq.Header.Set("X-Request-Id", uuid.NewString())
	}

	return t.transport.RoundTrip(newReq)
}

// HttpClientBuilder provides a fluent interface for building HTTP clients.
type HttpClientBuilder struct {
	clientTimeout         time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	caCertPath            string
	apiKey                string
	allowHTTP             bool
	allowPrivate          bool
}

// NewHttpClientBuilder returns a new HttpClientBuilder.
func NewHttpClientBuilder() *HttpClientBuilder {
	return &HttpClientBuilder{
		clientTimeout:         HttpTimeout,
		tlsHandshakeTimeout:   10 * time.Second,
		responseHeaderTimeout: 10 * time.Second,
	}
}

// WithTimeout overrides the overall client timeout.
func (b *HttpClientBuilder) WithTimeout(timeout time.Duration) *HttpClientBuilder {
	b.clientTimeout = timeout
	return b
}

// WithCABundle sets the CA certificate bundle path.
func (b *HttpClientBuilder) WithCABundle(path string) *HttpClientBuilder {
	b.caCertPath = path
	return b
}

// WithAPIKey attaches X-API-KEY authentication to every request.
func (b *HttpClientBuilder) WithAPIKey(apiKey string) *HttpClientBuilder {
	b.apiKey = apiKey
	return b
}

// WithAllowInsecure allows plain HTTP URLs. Off by default.
func (b *HttpClientBuilder) WithAllowInsecure(allow bool) *HttpClientBuilder {
	b.allowHTTP = allow
	return b
}

// WithPrivateIPs allows connections to private IP addresses.
func (b *HttpClientBuilder) WithPrivateIPs(allow bool) *HttpClientBuilder {
	b.allowPrivate = allow
	return b
}

// Build creates the configured HTTP client.
func (b *HttpClientBuilder) Build() (*http.Client, error) {
	transport := &http.Transport{
		TLSHandshakeTimeout:   b.tlsHandshakeTimeout,
		ResponseHeaderTimeout: b.responseHeaderTimeout,
	}

	if !b.allowPrivate {
		transport.DialContext = (&net.Dialer{
			Control: protectedDialerControl,
		}).DialContext
	}

	if b.caCertPath != "" {
		caCert, err := os.ReadFile(b.caCertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate bundle: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate bundle")
		}

		transport.TLSClientConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    caCertPool,
		}
	}

	var clientTransport http.RoundTripper = &ValidatingTransport{
		Transport: transport,
		AllowHTTP: b.allowHTTP,
	}

	if b.apiKey != "" {
		clientTransport = &apiKeyTransport{
			transport: clientTransport,
			apiKey:    b.apiKey,
		}
	}

	clientTransport = &requestIDTransport{transport: clientTransport}

	return &http.Client{
		Transport: clientTransport,
		Timeout:   b.clientTimeout,
	}, nil
}

package networking

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLocalTestClient builds a client that can reach an httptest server,
// which listens on plain HTTP on a loopback address.
func newLocalTestClient(t *testing.T, builder *HttpClientBuilder) *http.Client {
	t.Helper()
	client, err := builder.WithAllowInsecure(true).WithPrivateIPs(true).Build()
	require.NoError(t, err)
	return client
}

func TestHttpClientBuilder_APIKeyHeader(t *testing.T) {
	t.Parallel()
	var gotAPIKey, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-API-KEY")
		gotRequestID = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newLocalTestClient(t, NewHttpClientBuilder().WithAPIKey("api_0123456789"))

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "api_0123456789", gotAPIKey)
	require.NotEmpty(t, gotRequestID, "every request should carry a request id")
	_, err = uuid.Parse(gotRequestID)
	assert.NoError(t, err, "request id should be a UUID")
}

func TestHttpClientBuilder_RequestIDVaries(t *testing.T) {
	t.Parallel()
	var requestIDs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestIDs = append(requestIDs, r.Header.Get("X-Request-Id"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newLocalTestClient(t, NewHttpClientBuilder())

	for i := 0; i < 2; i++ {
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	require.Len(t, requestIDs, 2)
	assert.NotEqual(t, requestIDs[0], requestIDs[1])
}

func TestHttpClientBuilder_RejectsInsecureByDefault(t *testing.T) {
	t.Parallel()
	client, err := NewHttpClientBuilder().WithPrivateIPs(true).Build()
	require.NoError(t, err)

	_, err = client.Get("http://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not HTTPS scheme")
}

func TestHttpClientBuilder_RejectsPrivateIPsByDefault(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewHttpClientBuilder().WithAllowInsecure(true).Build()
	require.NoError(t, err)

	// httptest listens on a loopback address, so the dialer must refuse it.
	_, err = client.Get(server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private IP")
}

func TestValidatingTransport_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	transport := &ValidatingTransport{Transport: http.DefaultTransport}

	req, err := http.NewRequest(http.MethodGet, "ftp://example.com/file", nil)
	require.NoError(t, err)

	_, err = transport.RoundTrip(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestHttpClientBuilder_MissingCABundle(t *testing.T) {
	t.Parallel()
	_, err := NewHttpClientBuilder().WithCABundle("/nonexistent/ca.pem").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read CA certificate bundle")
}

// Package openapi converts OpenAPI v3 documents into AppForge function
// definitions: it loads and sniffs documents, merges and buckets operation
// parameters, normalizes the resulting schema fragments, and renders stored
// definitions in the formats tool consumers expect.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/tidwall/gjson"

	forgeerrors "github.com/appforge-io/forgectl/pkg/errors"
	"github.com/appforge-io/forgectl/pkg/logger"
	"github.com/appforge-io/forgectl/pkg/networking"
)

const (
	// documentFetchAttempts caps URL fetch attempts, the first try included.
	documentFetchAttempts = 4

	// documentFetchInitialDelay seeds the exponential backoff between
	// fetch attempts.
	documentFetchInitialDelay = 500 * time.Millisecond
)

// LoadOptions configure document loading.
type LoadOptions struct {
	// AllowExternalRefs permits $ref targets outside the document itself.
	// Off by default: an uploaded document should be self-contained.
	AllowExternalRefs bool

	// AllowInsecure permits plain-HTTP URLs when fetching a document.
	AllowInsecure bool

	// AllowPrivate permits fetching from private network addresses.
	AllowPrivate bool
}

// LoadDocument parses an OpenAPI v3 JSON document from raw bytes.
func LoadDocument(ctx context.Context, data []byte, opts LoadOptions) (*openapi3.T, error) {
	if err := sniffDocument(data); err != nil {
		return nil, err
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: opts.AllowExternalRefs,
	}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, forgeerrors.NewValidationError(fmt.Sprintf("failed to parse OpenAPI document: %v", err), err)
	}
	return doc, nil
}

// LoadFile reads and parses an OpenAPI document from disk.
func LoadFile(ctx context.Context, path string, opts LoadOptions) (*openapi3.T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI document: %w", err)
	}
	return LoadDocument(ctx, data, opts)
}

// FetchDocument downloads and parses an OpenAPI document. Transient fetch
// failures are retried with exponential backoff; client errors and malformed
// documents are not.
func FetchDocument(ctx context.Context, documentURL string, opts LoadOptions) (*openapi3.T, error) {
	httpClient, err := networking.NewHttpClientBuilder().
		WithAllowInsecure(opts.AllowInsecure).
		WithPrivateIPs(opts.AllowPrivate).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = documentFetchInitialDelay
	expBackoff.MaxInterval = 10 * time.Second

	operation := func() ([]byte, error) {
		data, _, err := networking.FetchBytes(ctx, httpClient, documentURL)
		if err != nil {
			if isPermanentFetchError(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return data, nil
	}

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(documentFetchAttempts),
		backoff.WithNotify(func(err error, delay time.Duration) {
			logger.Debugf("Retrying OpenAPI document fetch after %v: %v", delay, err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OpenAPI document: %w", err)
	}

	return LoadDocument(ctx, data, opts)
}

// isPermanentFetchError reports whether a fetch failure cannot be cured by
// retrying, e.g. a 404 for a mistyped URL. Timeouts and throttling stay
// retryable.
func isPermanentFetchError(err error) bool {
	var httpErr *networking.HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	switch httpErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500
}

// sniffDocument rejects obviously unusable input before the full parser
// runs, so uploads of YAML, Swagger 2.0, or arbitrary JSON all surface one
// stable error.
func sniffDocument(data []byte) error {
	if !gjson.ValidBytes(data) {
		return forgeerrors.NewValidationError("invalid OpenAPI JSON format", nil)
	}
	if gjson.GetBytes(data, "swagger").Exists() {
		return forgeerrors.NewValidationError("Swagger 2.0 documents are not supported, supply an OpenAPI 3.x document", nil)
	}
	version := gjson.GetBytes(data, "openapi")
	if !version.Exists() {
		return forgeerrors.NewValidationError("invalid OpenAPI JSON format: missing openapi version field", nil)
	}
	if !strings.HasPrefix(version.String(), "3.") {
		return forgeerrors.NewValidationError(fmt.Sprintf("unsupported OpenAPI version %q, only 3.x documents are supported", version.String()), nil)
	}
	return nil
}

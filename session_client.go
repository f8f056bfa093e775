package authsync

import (
	"context"
	"io"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

const defaultAuthScheme = "Bearer"

// SessionClientConfig holds the endpoints for the session exchange calls.
type SessionClientConfig struct {
	// EstablishURL accepts a bearer credential and writes the session cookie.
	EstablishURL string
	// ClearURL removes the session cookie.
	ClearURL string
	// AuthScheme prefixes the Authorization header. Defaults to "Bearer".
	AuthScheme string

	HTTPClient *http.Client
	Logger     Logger
}

// Validate will run validation rules
func (c SessionClientConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(
			&c.EstablishURL,
			validation.Required,
			is.URL,
		),
		validation.Field(
			&c.ClearURL,
			validation.Required,
			is.URL,
		),
	)
}

// HTTPSessionClient implements SessionExchanger against the two HTTP
// endpoints. Both calls are idempotent on the server side, so retrying a
// response that never arrived is always safe for callers.
type HTTPSessionClient struct {
	config     SessionClientConfig
	httpClient *http.Client
	logger     Logger
}

var _ SessionExchanger = (*HTTPSessionClient)(nil)

// NewHTTPSessionClient validates the config and returns a ready client.
func NewHTTPSessionClient(cfg SessionClientConfig) (*HTTPSessionClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid session client config").
			WithCode(goerrors.CodeBadRequest)
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = defaultAuthScheme
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = defLogger{}
	}

	return &HTTPSessionClient{
		config:     cfg,
		httpClient: client,
		logger:     logger,
	}, nil
}

// EstablishSession submits the bearer credential and reports the status
// code the endpoint answered with.
func (c *HTTPSessionClient) EstablishSession(ctx context.Context, token string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.EstablishURL, nil)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to build establish-session request")
	}
	req.Header.Set("Authorization", c.config.AuthScheme+" "+token)

	return c.do(req)
}

// ClearSession asks the endpoint to drop the session cookie. Clearing an
// already-cleared session succeeds trivially.
func (c *HTTPSessionClient) ClearSession(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.ClearURL, nil)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to build clear-session request")
	}

	return c.do(req)
}

func (c *HTTPSessionClient) do(req *http.Request) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryOperation, "session exchange request failed").
			WithMetadata(map[string]any{
				"url": req.URL.String(),
			})
	}
	defer resp.Body.Close()

	// No payload beyond the status code matters to the caller.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		c.logger.Debug("session exchange body drain failed", "error", err)
	}

	return resp.StatusCode, nil
}

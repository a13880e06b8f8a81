// Package registry is the HTTP client for the package registry API.
//
// Every operation is a single authenticated round trip against
// {host}/api/v1. Responses are interpreted uniformly by handle:
//
//   - transport failure           -> KindTransport
//   - status 0 or 200             -> success, body checked further
//   - status 403                  -> KindUnauthorized
//   - any other status            -> KindNotOK
//   - success body not UTF-8      -> KindNonUTF8Body
//   - success body {"errors":...} -> KindAPIErrors
//
// The registry reports application failures inside 200 responses, so a
// body that decodes as an error list wins over the status code.
//
// A Client is used sequentially; it must not be shared between goroutines
// issuing concurrent requests.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/mmr-tortoise/cratectl/internal/logging"
)

// HTTPDoer is the transport used by the client. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs registry operations for one host and token.
type Client struct {
	host      string
	token     string
	http      HTTPDoer
	logger    *log.Logger
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient returns a client for host authenticating with token. A
// trailing slash on host is ignored.
func NewClient(host, token string, opts ...Option) *Client {
	c := &Client{
		host:   strings.TrimRight(host, "/"),
		token:  token,
		http:   &http.Client{},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the registry host the client talks to.
func (c *Client) Host() string {
	return c.host
}

// okResponse is the body of successful owner and yank operations.
type okResponse struct {
	OK bool `json:"ok"`
}

// apiError is one entry of the registry's {"errors": [...]} envelope.
// Detail is a pointer so that an entry without one can be told apart.
type apiError struct {
	Detail *string `json:"detail"`
}

// ownersRequest is the body of owner operations.
type ownersRequest struct {
	Users []string `json:"users"`
}

// AddOwners invites users as owners of crate.
func (c *Client) AddOwners(ctx context.Context, crate string, users []string) error {
	body, err := json.Marshal(ownersRequest{Users: users})
	if err != nil {
		return err
	}
	resp, err := c.put(ctx, ownersPath(crate), body)
	if err != nil {
		return err
	}
	return expectOK(resp)
}

// RemoveOwners removes users from the owners of crate.
func (c *Client) RemoveOwners(ctx context.Context, crate string, users []string) error {
	body, err := json.Marshal(ownersRequest{Users: users})
	if err != nil {
		return err
	}
	resp, err := c.delete(ctx, ownersPath(crate), body)
	if err != nil {
		return err
	}
	return expectOK(resp)
}

// Yank marks a published version as yanked.
func (c *Client) Yank(ctx context.Context, crate, version string) error {
	resp, err := c.delete(ctx, versionPath(crate, version, "yank"), nil)
	if err != nil {
		return err
	}
	return expectOK(resp)
}

// Unyank reverts a yank.
func (c *Client) Unyank(ctx context.Context, crate, version string) error {
	resp, err := c.put(ctx, versionPath(crate, version, "unyank"), []byte{})
	if err != nil {
		return err
	}
	return expectOK(resp)
}

func ownersPath(crate string) string {
	return fmt.Sprintf("/crates/%s/owners", url.PathEscape(crate))
}

func versionPath(crate, version, action string) string {
	return fmt.Sprintf("/crates/%s/%s/%s", url.PathEscape(crate), url.PathEscape(version), action)
}

// ErrNotOKBody is returned when a successful response does not carry
// {"ok": true}.
var ErrNotOKBody = errors.New(`registry response did not contain "ok": true`)

// expectOK checks the {"ok": true} acknowledgement.
func expectOK(body string) error {
	var r okResponse
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return fmt.Errorf("%w: %v", ErrNotOKBody, err)
	}
	if !r.OK {
		return ErrNotOKBody
	}
	return nil
}

// put issues a JSON PUT against {host}/api/v1{path}.
func (c *Client) put(ctx context.Context, path string, body []byte) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPut, path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.ContentLength = int64(len(body))
	return c.do(req)
}

// delete issues a DELETE against {host}/api/v1{path}, with an optional
// JSON body.
func (c *Client) delete(ctx context.Context, path string, body []byte) (string, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := c.newRequest(ctx, http.MethodDelete, path, r)
	if err != nil {
		return "", err
	}
	if body != nil {
		req.ContentLength = int64(len(body))
	}
	return c.do(req)
}

// newRequest builds a JSON API request with the standard headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.host+"/api/v1"+path, body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// setHeaders adds the headers every registry request carries.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// do sends req and interprets the response.
func (c *Client) do(req *http.Request) (string, error) {
	c.logger.Debug("registry request", "method", req.Method, "url", req.URL.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return c.logged(handle(nil, nil, err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(resp.Body)
	c.logger.Debug("registry response", "status", resp.StatusCode, "bytes", len(body))
	if readErr != nil {
		return c.logged(handle(nil, nil, readErr))
	}
	return c.logged(handle(resp, body, nil))
}

// logged records the kind of a failed operation at debug level.
func (c *Client) logged(body string, err error) (string, error) {
	var regErr *Error
	if errors.As(err, &regErr) {
		c.logger.Debug("registry error", "kind", regErr.Kind.String())
	}
	return body, err
}

// handle interprets a registry response. transportErr is set when the
// round trip failed; resp and body are ignored then.
func handle(resp *http.Response, body []byte, transportErr error) (string, error) {
	if transportErr != nil {
		return "", &Error{Kind: KindTransport, Err: transportErr}
	}

	switch resp.StatusCode {
	case 0, http.StatusOK:
		// 0 is returned by some upload endpoints.
	case http.StatusForbidden:
		return "", &Error{Kind: KindUnauthorized}
	default:
		return "", &Error{Kind: KindNotOK, Status: resp.StatusCode, Body: string(body)}
	}

	if !utf8.Valid(body) {
		return "", &Error{Kind: KindNonUTF8Body}
	}

	if details, ok := decodeAPIErrors(body); ok {
		return "", &Error{Kind: KindAPIErrors, Details: details}
	}
	return string(body), nil
}

// decodeAPIErrors decodes the {"errors":[{"detail":...}]} envelope. The
// envelope only counts when the "errors" key is present, is a list, and
// every entry carries a string detail.
func decodeAPIErrors(body []byte) ([]string, bool) {
	var envelope struct {
		Errors *[]apiError `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Errors == nil {
		return nil, false
	}
	details := make([]string, 0, len(*envelope.Errors))
	for _, e := range *envelope.Errors {
		// Every entry needs a detail for the body to be an error list.
		if e.Detail == nil {
			return nil, false
		}
		details = append(details, *e.Detail)
	}
	return details, true
}

// Package sharepoint is a small client for the SharePoint REST API and the Azure AD
// token endpoint used to sign users in. Every call takes the caller's access token;
// the client itself holds no user state.
package sharepoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docviewer/internal/config"
)

const (
	acceptJSON        = "application/json;odata=nometadata"
	defaultAuthority  = "https://login.microsoftonline.com"
	maxErrorBodyBytes = 64 << 10
)

var (
	ErrNotFound     = errors.New("sharepoint: not found")
	ErrUnauthorized = errors.New("sharepoint: unauthorized")
)

// APIError carries a non-success response from SharePoint or Azure AD.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("sharepoint: status %d: %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("sharepoint: status %d: %s", e.Status, e.Message)
}

// Unwrap lets callers match ErrNotFound and ErrUnauthorized with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}

// User is the payload of /_api/web/currentuser.
type User struct {
	ID        int    `json:"Id"`
	Title     string `json:"Title"`
	Email     string `json:"Email"`
	LoginName string `json:"LoginName"`
}

// File is the subset of SP.File properties the viewer uses.
type File struct {
	Name              string      `json:"Name"`
	ServerRelativeURL string      `json:"ServerRelativeUrl"`
	Length            json.Number `json:"Length"`
	TimeCreated       time.Time   `json:"TimeCreated"`
	TimeLastModified  time.Time   `json:"TimeLastModified"`
	UniqueID          string      `json:"UniqueId"`
}

// Size returns Length as bytes; SharePoint serializes it as a string.
func (f File) Size() int64 {
	n, _ := f.Length.Int64()
	return n
}

// Token is an Azure AD access token.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Client talks to one SharePoint site.
type Client struct {
	siteURL      string
	sitePath     string
	tenantID     string
	clientID     string
	clientSecret string
	authority    string
	http         *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAuthority points token requests at another Azure AD authority host.
func WithAuthority(authority string) Option {
	return func(c *Client) { c.authority = strings.TrimRight(authority, "/") }
}

// New builds a client for cfg.SiteURL.
func New(cfg config.SharePointConfig, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid sharepoint site url %q", cfg.SiteURL)
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		siteURL:      strings.TrimRight(cfg.SiteURL, "/"),
		sitePath:     strings.TrimRight(u.Path, "/"),
		tenantID:     cfg.TenantID,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		authority:    defaultAuthority,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SitePath is the server-relative path of the site, e.g. "/sites/docs".
func (c *Client) SitePath() string {
	return c.sitePath
}

// SiteURL is the absolute site URL.
func (c *Client) SiteURL() string {
	return c.siteURL
}

// Origin is the scheme and host of the site, used as the token audience.
func (c *Client) Origin() string {
	return strings.TrimSuffix(c.siteURL, c.sitePath)
}

// Login exchanges a username and password for an access token (resource owner password grant).
func (c *Client) Login(ctx context.Context, username, password string) (Token, error) {
	if c.tenantID == "" || c.clientID == "" {
		return Token{}, errors.New("sharepoint: tenant id and client id are required for password login")
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", c.clientID)
	if c.clientSecret != "" {
		form.Set("client_secret", c.clientSecret)
	}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("scope", c.Origin()+"/.default")

	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.authority, url.PathEscape(c.tenantID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("sharepoint: token request: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		AccessToken      string `json:"access_token"`
		ExpiresIn        int    `json:"expires_in"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodyBytes)).Decode(&body); err != nil {
		return Token{}, &APIError{Status: resp.StatusCode, Message: "unreadable token response"}
	}
	if resp.StatusCode != http.StatusOK || body.AccessToken == "" {
		status := resp.StatusCode
		if status == http.StatusBadRequest && body.Error == "invalid_grant" {
			status = http.StatusUnauthorized
		}
		return Token{}, &APIError{Status: status, Code: body.Error, Message: firstLine(body.ErrorDescription)}
	}
	return Token{
		AccessToken: body.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}, nil
}

// CurrentUser returns the account the token belongs to. It doubles as a token check.
func (c *Client) CurrentUser(ctx context.Context, token string) (User, error) {
	var u User
	err := c.getJSON(ctx, token, c.siteURL+"/_api/web/currentuser", &u)
	return u, err
}

// ListFiles returns the files directly inside a server-relative folder.
func (c *Client) ListFiles(ctx context.Context, token, folder string) ([]File, error) {
	var body struct {
		Value []File `json:"value"`
	}
	endpoint := c.siteURL + "/_api/web/GetFolderByServerRelativeUrl(@u)/Files?@u=" + odataLiteral(folder)
	if err := c.getJSON(ctx, token, endpoint, &body); err != nil {
		return nil, err
	}
	return body.Value, nil
}

// Stat returns the properties of a file.
func (c *Client) Stat(ctx context.Context, token, path string) (File, error) {
	var f File
	err := c.getJSON(ctx, token, c.fileEndpoint(path), &f)
	return f, err
}

// Download streams a file's content. Size and modification time come from the response headers.
func (c *Client) Download(ctx context.Context, token, path string) (io.ReadCloser, File, error) {
	req, err := c.newRequest(ctx, token, http.MethodGet, c.siteURL+"/_api/web/GetFileByServerRelativeUrl(@u)/$value?@u="+odataLiteral(path), nil)
	if err != nil {
		return nil, File{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, File{}, fmt.Errorf("sharepoint: download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, File{}, readError(resp)
	}

	f := File{
		Name:              path[strings.LastIndex(path, "/")+1:],
		ServerRelativeURL: path,
		Length:            "0",
	}
	if resp.ContentLength >= 0 {
		f.Length = json.Number(strconv.FormatInt(resp.ContentLength, 10))
	}
	if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		f.TimeLastModified = lm.UTC()
	}
	return resp.Body, f, nil
}

// Upload creates or overwrites name inside folder.
func (c *Client) Upload(ctx context.Context, token, folder, name string, r io.Reader, size int64) (File, error) {
	endpoint := c.siteURL + "/_api/web/GetFolderByServerRelativeUrl(@u)/Files/add(url=@n,overwrite=true)?@u=" +
		odataLiteral(folder) + "&@n=" + odataLiteral(name)
	req, err := c.newRequest(ctx, token, http.MethodPost, endpoint, r)
	if err != nil {
		return File{}, err
	}
	if size >= 0 {
		req.ContentLength = size
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var f File
	if err := c.doJSON(req, &f); err != nil {
		return File{}, err
	}
	return f, nil
}

// Delete removes a file. Missing files yield ErrNotFound.
func (c *Client) Delete(ctx context.Context, token, path string) error {
	req, err := c.newRequest(ctx, token, http.MethodPost, c.fileEndpoint(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-HTTP-Method", "DELETE")
	req.Header.Set("IF-MATCH", "*")
	return c.doJSON(req, nil)
}

func (c *Client) fileEndpoint(path string) string {
	return c.siteURL + "/_api/web/GetFileByServerRelativeUrl(@u)?@u=" + odataLiteral(path)
}

func (c *Client) newRequest(ctx context.Context, token, method, endpoint string, body io.Reader) (*http.Request, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", acceptJSON)
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, token, endpoint string, out any) error {
	req, err := c.newRequest(ctx, token, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sharepoint: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("sharepoint: decode response: %w", err)
	}
	return nil
}

// readError turns an odata error body into an APIError.
func readError(resp *http.Response) error {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message any    `json:"message"`
		} `json:"odata.error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	if json.Unmarshal(raw, &body) == nil && body.Error.Code != "" {
		apiErr.Code = body.Error.Code
		switch m := body.Error.Message.(type) {
		case string:
			apiErr.Message = m
		case map[string]any:
			if v, ok := m["value"].(string); ok {
				apiErr.Message = v
			}
		}
	}
	return apiErr
}

// odataLiteral quotes s as an OData string literal for an @alias query parameter.
func odataLiteral(s string) string {
	q := url.QueryEscape("'" + strings.ReplaceAll(s, "'", "''") + "'")
	return strings.ReplaceAll(q, "+", "%20")
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}

// Package github is the remote store client: it treats a GitHub
// repository as a file-path-addressable data host with optimistic
// concurrency via content SHAs. Read failures surface as sentinels
// (nil / false), write failures as descriptive errors; raw transport
// errors never escape this package.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	coerrors "github.com/rooststack/coopsync/internal/errors"
	"github.com/rooststack/coopsync/internal/models"
	"github.com/tidwall/gjson"
)

const baseURL = "https://api.github.com"

const (
	// maxRedirects is the maximum number of HTTP redirects to follow
	// before giving up, matching the default net/http limit.
	maxRedirects = 10

	// httpClientTimeout is the timeout for the default HTTP client used
	// when no custom client is provided. The coordinator adds no retry
	// or timeout policy of its own, so this is the only bound on a
	// remote operation.
	httpClientTimeout = 30 * time.Second

	// maxResponseBytes caps response body reads so a misbehaving host
	// cannot consume unbounded memory.
	maxResponseBytes = 4 * 1024 * 1024
)

// readmeContent is the bootstrap marker written once per repository.
const readmeContent = "# Coop Sync Data\n\nThis directory contains the JSON files with the application's records.\n"

// FileContent is a file read from the repository together with its
// content SHA, the token required for a subsequent update.
type FileContent struct {
	Content string
	SHA     string
}

// Client talks to the GitHub contents API for a single repository.
// Credentials are set by Initialize and cleared by Logout; all methods
// fail closed when no credentials are held.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu      sync.Mutex
	token   string
	owner   string
	repo    string
	branch  string
	dataDir string
	ready   bool
}

// sameHostRedirectPolicy follows redirects only when the target host
// matches the original request host, so the Authorization header never
// leaks to a third-party domain.
func sameHostRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}

	if len(via) > 0 && req.URL.Host != via[0].URL.Host {
		return fmt.Errorf("redirect to different host blocked: %s -> %s", via[0].URL.Host, req.URL.Host)
	}

	return nil
}

// NewClient creates a client writing to the given branch and data
// directory. If httpClient is nil, a client with a 30-second timeout
// and same-host redirect policy is created.
func NewClient(httpClient *http.Client, branch, dataDir string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:       httpClientTimeout,
			CheckRedirect: sameHostRedirectPolicy,
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		branch:     branch,
		dataDir:    strings.Trim(dataDir, "/"),
	}
}

// sanitizeBody truncates and sanitizes a response body for inclusion in
// error messages, replacing control characters to prevent log injection.
func sanitizeBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return '?'
		}

		return r
	}, string(body))
}

// Initialize validates the credentials with a lightweight authenticated
// call and, on success, holds them for the rest of the session. Invalid
// credentials return false without an error.
func (c *Client) Initialize(ctx context.Context, token, owner, repo string) bool {
	if token == "" || owner == "" || repo == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return false
	}

	c.setHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode != http.StatusOK {
		return false
	}

	c.mu.Lock()
	c.token = token
	c.owner = owner
	c.repo = repo
	c.ready = true
	c.mu.Unlock()

	return true
}

// Ready reports whether the client holds validated credentials.
func (c *Client) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ready
}

// Logout clears the session credentials. Subsequent reads return
// absent sentinels and writes return ErrNotAuthenticated.
func (c *Client) Logout() {
	c.mu.Lock()
	c.token = ""
	c.owner = ""
	c.repo = ""
	c.ready = false
	c.mu.Unlock()
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
}

// session returns the current credentials, or ok=false when logged out.
func (c *Client) session() (token, owner, repo string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.token, c.owner, c.repo, c.ready
}

// contentURL builds the contents-API URL for a repository path.
func (c *Client) contentURL(owner, repo, path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, path)
}

// EntityPath returns the repository path of an entity's JSON file.
func (c *Client) EntityPath(entity string) string {
	return c.dataDir + "/" + entity + ".json"
}

// readmePath returns the repository path of the bootstrap marker.
func (c *Client) readmePath() string {
	return c.dataDir + "/README.md"
}

// FileExists reports whether a file exists at path. Transport failures
// and a logged-out client both report false.
func (c *Client) FileExists(ctx context.Context, path string) bool {
	fc, err := c.ReadFile(ctx, path)

	return err == nil && fc != nil
}

// ReadFile fetches a file and its content SHA. A missing file returns
// (nil, nil): absence is a valid state, not an error. A logged-out
// client also returns (nil, nil), failing closed.
func (c *Client) ReadFile(ctx context.Context, path string) (*FileContent, error) {
	token, owner, repo, ok := c.session()
	if !ok {
		return nil, nil
	}

	url := c.contentURL(owner, repo, path) + "?ref=" + c.branch

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %w", coerrors.ErrRemoteRequest, path, err)
	}

	c.setHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", coerrors.ErrRemoteRequest, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s body: %w", coerrors.ErrRemoteRequest, path, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: reading %s: status %d: %s",
			coerrors.ErrRemoteResponse, path, resp.StatusCode, sanitizeBody(body))
	}

	encoded := gjson.GetBytes(body, "content").String()
	sha := gjson.GetBytes(body, "sha").String()

	// The API wraps base64 payloads in newlines.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(encoded, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s content: %w", coerrors.ErrRemoteResponse, path, err)
	}

	return &FileContent{Content: string(decoded), SHA: sha}, nil
}

// WriteFile creates or updates a file. When sha is empty and the file
// already exists, the current SHA is fetched immediately before the
// write so the host does not reject a blind overwrite. A SHA conflict
// surfaces as an error; there is no retry or merge at this layer.
func (c *Client) WriteFile(ctx context.Context, path, content, message, sha string) error {
	token, owner, repo, ok := c.session()
	if !ok {
		return coerrors.ErrNotAuthenticated
	}

	if sha == "" {
		existing, err := c.ReadFile(ctx, path)
		if err != nil {
			return fmt.Errorf("fetching current version of %s: %w", path, err)
		}

		if existing != nil {
			sha = existing.SHA
		}
	}

	payload := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
		"branch":  c.branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializing write for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentURL(owner, repo, path), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: building write for %s: %w", coerrors.ErrRemoteRequest, path, err)
	}

	c.setHeaders(req, token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: writing %s: %w", coerrors.ErrRemoteRequest, path, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: writing %s: version conflict (status %d): %s",
			coerrors.ErrRemoteResponse, path, resp.StatusCode, sanitizeBody(respBody))
	default:
		return fmt.Errorf("%w: writing %s: status %d: %s",
			coerrors.ErrRemoteResponse, path, resp.StatusCode, sanitizeBody(respBody))
	}
}

// GetEntityData fetches and parses an entity's collection. A missing
// file means the entity was never created remotely and returns an empty
// collection with an empty SHA and no error.
func (c *Client) GetEntityData(ctx context.Context, entity string) (models.Collection, string, error) {
	fc, err := c.ReadFile(ctx, c.EntityPath(entity))
	if err != nil {
		return nil, "", err
	}

	if fc == nil {
		return models.Collection{}, "", nil
	}

	var records models.Collection
	if err := json.Unmarshal([]byte(fc.Content), &records); err != nil {
		return nil, "", fmt.Errorf("%w: parsing %s data: %w", coerrors.ErrRemoteResponse, entity, err)
	}

	if records == nil {
		records = models.Collection{}
	}

	return records, fc.SHA, nil
}

// SaveEntityData serializes a collection to pretty JSON and writes it
// through WriteFile, which re-fetches the current SHA immediately
// before the write rather than trusting any cached version.
func (c *Client) SaveEntityData(ctx context.Context, entity string, records models.Collection) error {
	if records == nil {
		records = models.Collection{}
	}

	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing %s data: %w", entity, err)
	}

	message := fmt.Sprintf("Update %s data", entity)
	if !c.FileExists(ctx, c.EntityPath(entity)) {
		message = fmt.Sprintf("Create %s data", entity)
	}

	return c.WriteFile(ctx, c.EntityPath(entity), string(content), message, "")
}

// Bootstrap idempotently ensures the data directory marker and one
// empty JSON file per entity exist in the repository. Called once after
// the first successful connect.
func (c *Client) Bootstrap(ctx context.Context) error {
	if !c.Ready() {
		return coerrors.ErrNotAuthenticated
	}

	if !c.FileExists(ctx, c.readmePath()) {
		err := c.WriteFile(ctx, c.readmePath(), readmeContent, "Initialize data directory", "")
		if err != nil {
			return fmt.Errorf("creating data directory marker: %w", err)
		}
	}

	for _, entity := range models.Entities {
		path := c.EntityPath(entity)
		if c.FileExists(ctx, path) {
			continue
		}

		message := fmt.Sprintf("Create %s data", entity)
		if err := c.WriteFile(ctx, path, "[]", message, ""); err != nil {
			return fmt.Errorf("creating %s file: %w", entity, err)
		}
	}

	return nil
}

package controlplane

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ruminaider/confcascade/internal/config"
	"github.com/ruminaider/confcascade/internal/org"
	"github.com/ruminaider/confcascade/internal/profiles"
	"golang.org/x/oauth2"
)

const defaultTimeout = 30 * time.Second

var _ org.Directory = (*Client)(nil)

// Client lists organizations and assistants from the control plane. It
// implements org.Directory.
type Client struct {
	baseURL string
	session *Session
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used before the session's bearer
// token is applied.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the control plane at baseURL. Requests carry
// the session's access token; a nil session makes every listing fail
// with ErrUnauthenticated.
func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if session != nil && session.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.http)
		authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: session.AccessToken,
			TokenType:   "Bearer",
		}))
		authed.Timeout = c.http.Timeout
		c.http = authed
	}
	return c
}

type organizationsResponse struct {
	Organizations []org.Description `json:"organizations"`
}

type assistantResponse struct {
	ConfigResult config.LoadResult `json:"configResult"`
	OwnerSlug    string            `json:"ownerSlug"`
	PackageSlug  string            `json:"packageSlug"`
	IconURL      string            `json:"iconUrl"`
	RawYAML      string            `json:"rawYaml"`
}

// ListOrganizations lists the organizations the session belongs to.
func (c *Client) ListOrganizations(ctx context.Context) ([]org.Description, error) {
	var resp organizationsResponse
	if err := c.get(ctx, "/ide/list-organizations", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	return resp.Organizations, nil
}

// ListAssistants lists assistants visible under orgScopeID ("" for
// assistants without an organization scope).
func (c *Client) ListAssistants(ctx context.Context, orgScopeID string) ([]profiles.PlatformBundle, error) {
	q := url.Values{}
	if orgScopeID != "" {
		q.Set("organizationId", orgScopeID)
	}
	var resp []assistantResponse
	if err := c.get(ctx, "/ide/list-assistants", q, &resp); err != nil {
		return nil, fmt.Errorf("listing assistants: %w", err)
	}

	bundles := make([]profiles.PlatformBundle, 0, len(resp))
	for _, a := range resp {
		if a.ConfigResult.Errors == nil {
			a.ConfigResult.Errors = []config.ValidationError{}
		}
		bundles = append(bundles, profiles.PlatformBundle{
			Result:      a.ConfigResult,
			OwnerSlug:   a.OwnerSlug,
			PackageSlug: a.PackageSlug,
			IconURL:     a.IconURL,
			RawYAML:     a.RawYAML,
		})
	}
	return bundles, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.session == nil || c.session.AccessToken == "" {
		return ErrUnauthenticated
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Package api is a typed HTTP client for the gke-analyzer REST surface.
// It mirrors the server's request and response shapes, injects the
// bearer token once a session is established, and decodes the server's
// error envelope into *APIError values.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/galgranov/gke-analyzer/internal/domain/models"
)

// APIError is the decoded form of the server's error envelope.
type APIError struct {
	StatusCode   int      `json:"statusCode"`
	Message      string   `json:"message"`
	MissingRoles []string `json:"missingRoles,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Session is the payload returned by login and register.
type Session struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

// Client talks to a running gke-analyzer server. The zero value is not
// usable; construct with New. Client is safe for concurrent use once
// configured, but SetToken is not synchronized with in-flight requests.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token up front, e.g. from a saved session.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a Client for the server at baseURL (scheme://host[:port],
// no trailing slash required).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token, empty if unauthenticated.
func (c *Client) Token() string { return c.token }

// do issues a request and decodes the response body into out (when out
// is non-nil). Non-2xx responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}

// Login authenticates with a username or email and stores the returned
// token on the client for subsequent calls.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (*Session, error) {
	req := map[string]string{
		"usernameOrEmail": usernameOrEmail,
		"password":        password,
	}
	var s Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &s); err != nil {
		return nil, err
	}
	c.token = s.AccessToken
	return &s, nil
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, in, &s); err != nil {
		return nil, err
	}
	c.token = s.AccessToken
	return &s, nil
}

// Profile returns the authenticated user's record.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// PodFilter narrows ListPods to a single exact-match field. At most one
// field should be set; the server applies them in the order namespace,
// cluster, node, status.
type PodFilter struct {
	Namespace string
	Cluster   string
	Node      string
	Status    string
}

func (f PodFilter) query() url.Values {
	q := url.Values{}
	if f.Namespace != "" {
		q.Set("namespace", f.Namespace)
	}
	if f.Cluster != "" {
		q.Set("cluster", f.Cluster)
	}
	if f.Node != "" {
		q.Set("node", f.Node)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	return q
}

// CreatePod stores a new pod record.
func (c *Client) CreatePod(ctx context.Context, pod models.Pod) (*models.Pod, error) {
	var out models.Pod
	if err := c.do(ctx, http.MethodPost, "/pods", nil, pod, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPods returns pods, optionally narrowed by a filter.
func (c *Client) ListPods(ctx context.Context, filter PodFilter) ([]models.Pod, error) {
	var out []models.Pod
	if err := c.do(ctx, http.MethodGet, "/pods", filter.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PublicPods returns the unauthenticated sample list.
func (c *Client) PublicPods(ctx context.Context) ([]models.Pod, error) {
	var out []models.Pod
	if err := c.do(ctx, http.MethodGet, "/pods/public", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPod fetches a single pod by id.
func (c *Client) GetPod(ctx context.Context, id string) (*models.Pod, error) {
	var out models.Pod
	if err := c.do(ctx, http.MethodGet, "/pods/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PodUpdate carries the fields to change on a pod. Nil fields are left
// untouched.
type PodUpdate struct {
	Name              *string              `json:"name,omitempty"`
	Namespace         *string              `json:"namespace,omitempty"`
	Status            *string              `json:"status,omitempty"`
	ClusterName       *string              `json:"clusterName,omitempty"`
	NodeName          *string              `json:"nodeName,omitempty"`
	Labels            map[string]string    `json:"labels,omitempty"`
	Annotations       map[string]string    `json:"annotations,omitempty"`
	CreationTimestamp *time.Time           `json:"creationTimestamp,omitempty"`
	ContainerImages   []string             `json:"containerImages,omitempty"`
	Resources         *models.PodResources `json:"resources,omitempty"`
	RestartCount      *int                 `json:"restartCount,omitempty"`
	PodIP             *string              `json:"podIP,omitempty"`
	HostIP            *string              `json:"hostIP,omitempty"`
}

// UpdatePod patches a pod and returns the updated record.
func (c *Client) UpdatePod(ctx context.Context, id string, in PodUpdate) (*models.Pod, error) {
	var out models.Pod
	if err := c.do(ctx, http.MethodPatch, "/pods/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePod removes a pod and returns the removed record.
func (c *Client) DeletePod(ctx context.Context, id string) (*models.Pod, error) {
	var out models.Pod
	if err := c.do(ctx, http.MethodDelete, "/pods/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserInput is the payload for CreateUser (admin only).
type UserInput struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	IsActive  *bool    `json:"isActive,omitempty"`
}

// CreateUser creates a user record.
func (c *Client) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/users", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns all users (admin only).
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser fetches a single user by id.
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserUpdate carries the fields to change on a user.
type UserUpdate struct {
	Username  *string  `json:"username,omitempty"`
	Email     *string  `json:"email,omitempty"`
	Password  *string  `json:"password,omitempty"`
	FirstName *string  `json:"firstName,omitempty"`
	LastName  *string  `json:"lastName,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	IsActive  *bool    `json:"isActive,omitempty"`
}

// UpdateUser patches a user and returns the updated record.
func (c *Client) UpdateUser(ctx context.Context, id string, in UserUpdate) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes a user and returns the removed record (admin only).
func (c *Client) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ready reports whether the server and its database are reachable.
func (c *Client) Ready(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health/ready", nil, nil, nil)
}

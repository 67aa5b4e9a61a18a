// Package hubspot provides bearer-token REST API access to the HubSpot CRM.
package hubspot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.hubapi.com"

// HubSpot object type names used in URL paths.
const (
	ObjectContacts  = "contacts"
	ObjectCompanies = "companies"
	ObjectDeals     = "deals"
	ObjectMeetings  = "meetings"
)

// Client defines the HubSpot CRM operations used by the sync.
type Client interface {
	// GetObject fetches a single object by id, or by an alternate unique
	// property when q.IDProperty is set. Returns ErrNotFound on 404.
	GetObject(ctx context.Context, objectType, id string, q GetQuery) (*Object, error)
	CreateObject(ctx context.Context, objectType string, props Properties) (*Object, error)
	// UpdateObject merges props into the stored object; unspecified
	// properties are left untouched.
	UpdateObject(ctx context.Context, objectType, id string, props Properties) (*Object, error)
	CreateAssociations(ctx context.Context, fromType, toType string, inputs []AssociationInput) error
	ListOwners(ctx context.Context) ([]Owner, error)
}

// GetQuery selects how an object is looked up and what is returned with it.
type GetQuery struct {
	IDProperty   string
	Properties   []string
	Associations []string
}

// Option configures the HubSpot client.
type Option func(*restClient)

// WithBaseURL overrides the default API base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *restClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *restClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *restClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit sets a per-second rate limit for API calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) Option {
	return func(c *restClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type restClient struct {
	token   string
	baseURL string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	rc      *resty.Client
}

// NewClient creates a HubSpot client authenticating with a private app token.
func NewClient(token string, opts ...Option) Client {
	c := &restClient{
		token:   token,
		baseURL: defaultBaseURL,
		timeout: 30 * time.Second,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.rc = resty.NewWithClient(c.http).
		SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetAuthToken(c.token).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *restClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *restClient) request(ctx context.Context) (*resty.Request, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "hubspot: rate limit")
	}
	return c.rc.R().SetContext(ctx).SetError(&APIError{}), nil
}

func (c *restClient) GetObject(ctx context.Context, objectType, id string, q GetQuery) (*Object, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	if q.IDProperty != "" {
		req.SetQueryParam("idProperty", q.IDProperty)
	}
	if len(q.Properties) > 0 {
		req.SetQueryParam("properties", strings.Join(q.Properties, ","))
	}
	if len(q.Associations) > 0 {
		req.SetQueryParam("associations", strings.Join(q.Associations, ","))
	}

	var obj Object
	resp, err := req.
		SetPathParams(map[string]string{"type": objectType, "id": id}).
		SetResult(&obj).
		Get("/crm/v3/objects/{type}/{id}")
	if err != nil {
		return nil, eris.Wrapf(err, "hubspot: get %s %s", objectType, id)
	}
	if err := checkResponse(resp, fmt.Sprintf("hubspot: get %s %s", objectType, id)); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (c *restClient) CreateObject(ctx context.Context, objectType string, props Properties) (*Object, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var obj Object
	resp, err := req.
		SetPathParam("type", objectType).
		SetBody(objectInput{Properties: props}).
		SetResult(&obj).
		Post("/crm/v3/objects/{type}")
	if err != nil {
		return nil, eris.Wrapf(err, "hubspot: create %s", objectType)
	}
	if err := checkResponse(resp, "hubspot: create "+objectType); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (c *restClient) UpdateObject(ctx context.Context, objectType, id string, props Properties) (*Object, error) {
	if len(props) == 0 {
		return nil, eris.New("hubspot: no properties to update")
	}
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var obj Object
	resp, err := req.
		SetPathParams(map[string]string{"type": objectType, "id": id}).
		SetBody(objectInput{Properties: props}).
		SetResult(&obj).
		Patch("/crm/v3/objects/{type}/{id}")
	if err != nil {
		return nil, eris.Wrapf(err, "hubspot: update %s %s", objectType, id)
	}
	if err := checkResponse(resp, fmt.Sprintf("hubspot: update %s %s", objectType, id)); err != nil {
		return nil, err
	}
	return &obj, nil
}

// checkResponse converts a non-2xx response into ErrNotFound or *APIError.
func checkResponse(resp *resty.Response, op string) error {
	if !resp.IsError() {
		return nil
	}
	apiErr, _ := resp.Error().(*APIError)
	if apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.StatusCode = resp.StatusCode()
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(resp.String())
	}
	if resp.StatusCode() == http.StatusNotFound {
		return eris.Wrapf(ErrNotFound, "%s: %s", op, apiErr.Message)
	}
	return eris.Wrap(apiErr, op)
}

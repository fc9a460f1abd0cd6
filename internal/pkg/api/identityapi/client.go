// Package identityapi implements the client for the Marketing Cloud ID service.
//
// The service is a single HTTPS GET endpoint. Query parameters are sent
// pre-encoded and the parameter order is canonical: the base parameters
// d_ver, dcs_region, d_orgid, d_rtbd in this order, then call-specific
// parameters in insertion order. The composite d_cid_ic value uses the
// literal "%01" separator required by the service, it must not be
// percent-decoded or re-encoded.
package identityapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/mcvid/mcvid/internal/pkg/log"
	"github.com/mcvid/mcvid/internal/pkg/utils/errors"
)

const (
	DefaultHost = "dpm.demdex.net"

	scheme             = "https"
	path               = "id"
	version            = 2
	format             = "json"
	organizationSuffix = "@AdobeOrg"

	versionField      = "d_ver"
	regionField       = "dcs_region"
	organizationField = "d_orgid"
	formatField       = "d_rtbd"
	visitorIDField    = "d_mid"
	customerIDField   = "d_cid_ic"

	customerIDSeparator = "%01"
	expectedContentType = "application/json"

	requestTimeout        = 30 * time.Second
	dialTimeout           = 30 * time.Second
	tlsHandshakeTimeout   = 10 * time.Second
	responseHeaderTimeout = 20 * time.Second
	keepAlive             = 20 * time.Second
	maxIdleConns          = 4
)

// Client calls the Marketing Cloud ID service.
// Retries are owned by the caller, the client performs each request exactly once.
type Client struct {
	resty          *resty.Client
	logger         log.Logger
	host           string
	organizationID string
	region         int
}

type Option func(*Client)

// WithHost overrides the service host, for tests.
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = host
	}
}

func NewClient(logger log.Logger, organizationID string, region int, opts ...Option) *Client {
	c := &Client{
		resty:          newRestyClient(),
		logger:         logger,
		host:           DefaultHost,
		organizationID: organizationID,
		region:         region,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RestyClient returns the underlying HTTP client, for tests.
func (c *Client) RestyClient() *resty.Client {
	return c.resty
}

// FetchVisitorID requests a new visitor ID from the service.
func (c *Client) FetchVisitorID(ctx context.Context) (string, error) {
	return c.sendRequest(ctx, c.createURL(orderedmap.New()))
}

// SyncIdentity links the visitor ID with the customer ID, for example a device advertising ID.
// The integration code identifies the customer ID namespace, see the service documentation.
func (c *Client) SyncIdentity(ctx context.Context, visitorID, integrationCode, customerID string, authState AuthState) error {
	if err := validateIdentifier("visitor ID", visitorID); err != nil {
		return err
	}
	if err := validateIdentifier("integration code", integrationCode); err != nil {
		return err
	}
	if err := validateIdentifier("customer ID", customerID); err != nil {
		return err
	}

	params := orderedmap.New()
	params.Set(visitorIDField, visitorID)
	params.Set(customerIDField, strings.Join(
		[]string{integrationCode, customerID, strconv.Itoa(authState.Code())},
		customerIDSeparator,
	))

	_, err := c.sendRequest(ctx, c.createURL(params))
	return err
}

// createURL builds the request URL from the base parameters merged with the
// call-specific encoded parameters. Call parameters override base parameters
// of the same name but keep the canonical position, so the query string is
// deterministic for a given parameter set.
func (c *Client) createURL(encodedQueryParams *orderedmap.OrderedMap) string {
	params := orderedmap.New()
	params.Set(versionField, strconv.Itoa(version))
	params.Set(regionField, strconv.Itoa(c.region))
	params.Set(organizationField, c.organizationID+organizationSuffix)
	params.Set(formatField, format)
	for _, key := range encodedQueryParams.Keys() {
		value, _ := encodedQueryParams.Get(key)
		params.Set(key, value)
	}

	var query strings.Builder
	for i, key := range params.Keys() {
		if i > 0 {
			query.WriteByte('&')
		}
		value, _ := params.Get(key)
		query.WriteString(key)
		query.WriteByte('=')
		query.WriteString(value.(string))
	}

	return fmt.Sprintf("%s://%s/%s?%s", scheme, c.host, path, query.String())
}

// sendRequest performs the GET request and parses the body only if the status code is 200.
func (c *Client) sendRequest(ctx context.Context, url string) (string, error) {
	c.logger.Debugf("GET %s", url)

	response, err := c.resty.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", errors.PrefixError(err, "request failed")
	}

	if code := response.StatusCode(); code != http.StatusOK {
		return "", errors.Errorf("unexpected response: %d - %s", code, response.Status())
	}

	if contentType := response.Header().Get("Content-Type"); !strings.HasPrefix(contentType, expectedContentType) {
		return "", errors.Errorf(`unexpected content type: "%s"`, contentType)
	}

	return parseResponse(response.Body())
}

// validateIdentifier rejects values the service cannot accept, before any network call.
func validateIdentifier(name, value string) error {
	if value == "" {
		return &BadInputError{Message: fmt.Sprintf("%s is empty", name)}
	}
	for _, r := range value {
		if r < 0x21 || r > 0x7E || strings.ContainsRune(`&=?#%`, r) {
			return &BadInputError{Message: fmt.Sprintf(`%s "%s" contains an illegal character`, name, value)}
		}
	}
	return nil
}

func newRestyClient() *resty.Client {
	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: keepAlive,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConns,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
	}

	r := resty.New()
	r.SetTimeout(requestTimeout)
	r.SetTransport(transport)
	return r
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/imroc/req/v3"
	"github.com/zenosslk/wazuh-api/internal/cluster"
	"github.com/zenosslk/wazuh-api/internal/version"
)

const (
	epNode  = "/cluster/node"
	epFiles = "/manager/files"

	maxRedirects   = 10
	defaultTimeout = 30 * time.Second
)

var userAgent = fmt.Sprintf("%s/%s", version.AppName, version.Version)

// ClientOptions configure the peer client. Credentials come from the
// cluster configuration; there are no retries.
type ClientOptions struct {
	User      string
	Password  string
	VerifyTLS bool
	Timeout   time.Duration
}

// Client issues authenticated requests against cluster peers and
// classifies every failure into a TransportError.
type Client struct {
	http *req.Client
}

func NewClient(opts *ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	c := req.C().
		SetUserAgent(userAgent).
		SetCommonBasicAuth(opts.User, opts.Password).
		SetTimeout(timeout).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal).
		SetRedirectPolicy(func(r *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}
			return nil
		})

	if !opts.VerifyTLS {
		c.EnableInsecureSkipVerify()
	}

	return &Client{http: c}
}

// NodeInfo probes a peer's identity via /cluster/node.
func (c *Client) NodeInfo(ctx context.Context, peer string) (*NodeIdentity, error) {
	var envelope dataEnvelope[NodeIdentity]
	if err := c.getJSON(ctx, peer+epNode, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// Files fetches a peer's full file inventory via /manager/files.
func (c *Client) Files(ctx context.Context, peer string) (cluster.Inventory, error) {
	var envelope dataEnvelope[cluster.Inventory]
	if err := c.getJSON(ctx, peer+epFiles, &envelope); err != nil {
		return nil, err
	}
	for name, record := range envelope.Data {
		// a JSON null entry decodes to a nil record
		if record == nil {
			return nil, newTransportError(CodeDecodeFailed, peer+epFiles,
				fmt.Errorf("null inventory entry %q", name))
		}
		record.Name = name
	}
	return envelope.Data, nil
}

// Download fetches one file's raw content via /manager/files?download=<name>.
func (c *Client) Download(ctx context.Context, peer, name string) ([]byte, error) {
	u := peer + epFiles + "?download=" + url.QueryEscape(name)

	res, err := c.http.R().SetContext(ctx).Get(u)
	if err != nil {
		return nil, classifyRequestError(u, err)
	}
	if res.StatusCode == http.StatusUnauthorized {
		return nil, newTransportError(CodeUnauthorized, u, errors.New(res.String()))
	}

	return []byte(res.String()), nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	res, err := c.http.R().SetContext(ctx).Get(u)
	if err != nil {
		return classifyRequestError(u, err)
	}
	if res.StatusCode == http.StatusUnauthorized {
		return newTransportError(CodeUnauthorized, u, errors.New(res.String()))
	}

	if err := jsonUnmarshal([]byte(res.String()), out); err != nil {
		return newTransportError(CodeDecodeFailed, u, err)
	}
	return nil
}

// AsTransportError coerces any error from the client into its
// TransportError form.
func AsTransportError(err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	return &TransportError{Code: CodeUnknown, Message: err.Error()}
}

// First match wins: redirects, then timeout, then transport, then unknown.
func classifyRequestError(u string, err error) *TransportError {
	switch {
	case errors.Is(err, ErrTooManyRedirects):
		return newTransportError(CodeTooManyRedirects, u, err)
	case isTimeout(err):
		return newTransportError(CodeTimeout, u, err)
	case isTransport(err):
		return newTransportError(CodeRequestFailed, u, err)
	default:
		return newTransportError(CodeUnknown, u, err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isTransport(err error) bool {
	var ue *url.Error
	var oe *net.OpError
	return errors.As(err, &ue) || errors.As(err, &oe)
}

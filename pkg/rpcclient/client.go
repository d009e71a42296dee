/*
Package rpcclient implements a JSON-RPC client for NEAR nodes.

Client is thread-safe and stateless between calls, a single instance can be
shared by any number of concurrent submissions. Every method takes a context
that limits the call along with the RequestTimeout option.

Errors returned by Client methods are *neterr.Error values. Transport
failures and JSON-RPC errors returned by the node are neterr.KindNetwork (the
latter wrap *nearrpc.Error, use errors.As to get it), malformed results are
neterr.KindResponseDecode. Methods never retry.
*/
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/neterr"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout = 4 * time.Second
	// broadcast_tx_commit waits for the final outcome, nodes give up on it
	// with TIMEOUT_ERROR after about 10 seconds.
	defaultRequestTimeout = 20 * time.Second
)

// Client represents the middleman for executing JSON RPC calls
// to remote NEAR RPC nodes. Client is thread-safe and can be used from
// multiple goroutines.
type Client struct {
	cli      *http.Client
	endpoint *url.URL
	opts     Options
	log      *zap.Logger
	requestF func(context.Context, *nearrpc.Request) (*nearrpc.Response, error)

	latestReqID *atomic.Uint64
	// getNextRequestID returns an ID to be used for the subsequent request creation.
	// It is defined on Client, so that our testing code can override this method
	// for the sake of more predictable request IDs generation behavior.
	getNextRequestID func() uint64
}

// Options defines options for the RPC client.
// All values are optional. If any duration is not specified,
// a default of 4 seconds (dial) and 20 seconds (request) will be used.
type Options struct {
	DialTimeout    time.Duration
	RequestTimeout time.Duration
	// Limit total number of connections per host. No limit by default.
	MaxConnsPerHost int
	// Logger is used for request tracing at debug level, nop logger is
	// used if not set.
	Logger *zap.Logger
}

// New returns a new Client ready to use.
func New(endpoint string, opts Options) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, neterr.New(neterr.KindConfig, neterr.StepNone, fmt.Errorf("bad RPC endpoint: %w", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, neterr.Newf(neterr.KindConfig, neterr.StepNone, "bad RPC endpoint %q: unsupported scheme", endpoint)
	}

	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: opts.DialTimeout,
			}).DialContext,
			MaxConnsPerHost: opts.MaxConnsPerHost,
		},
		Timeout: opts.RequestTimeout,
	}

	cl := &Client{
		cli:         httpClient,
		endpoint:    u,
		opts:        opts,
		log:         opts.Logger,
		latestReqID: atomic.NewUint64(0),
	}
	cl.getNextRequestID = cl.getRequestID
	cl.requestF = cl.makeHTTPRequest
	return cl, nil
}

func (c *Client) getRequestID() uint64 {
	return c.latestReqID.Inc()
}

// Endpoint returns the client endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Close closes unused underlying networks connections.
func (c *Client) Close() {
	c.cli.CloseIdleConnections()
}

func (c *Client) performRequest(ctx context.Context, method string, p any, v any) error {
	if p == nil {
		p = []any{}
	}
	var r = nearrpc.Request{
		JSONRPC: nearrpc.JSONRPCVersion,
		Method:  method,
		Params:  p,
		ID:      c.getNextRequestID(),
	}

	start := time.Now()
	raw, err := c.requestF(ctx, &r)
	err = classify(method, raw, err)
	if err == nil {
		if err = json.Unmarshal(raw.Result, v); err != nil {
			err = neterr.New(neterr.KindResponseDecode, neterr.StepNone, fmt.Errorf("%s: %w", method, err))
		}
	}
	elapsed := time.Since(start)
	addReqTimeMetric(method, elapsed, err)
	c.log.Debug("RPC request",
		zap.String("method", method),
		zap.Uint64("id", r.ID),
		zap.Duration("time", elapsed),
		zap.Error(err))
	return err
}

// classify turns the result of a request into a kind-tagged error.
func classify(method string, raw *nearrpc.Response, err error) error {
	switch {
	case raw != nil && raw.Error != nil:
		return neterr.New(neterr.KindNetwork, neterr.StepNone, raw.Error)
	case err != nil:
		return neterr.New(neterr.KindNetwork, neterr.StepNone, fmt.Errorf("%s: %w", method, err))
	case raw == nil || len(raw.Result) == 0:
		return neterr.New(neterr.KindResponseDecode, neterr.StepNone, fmt.Errorf("%s: %w", method, errNoResult))
	}
	return nil
}

var errNoResult = errors.New("no result returned")

func (c *Client) makeHTTPRequest(ctx context.Context, r *nearrpc.Request) (*nearrpc.Response, error) {
	var (
		buf = new(bytes.Buffer)
		raw = new(nearrpc.Response)
	)

	if err := json.NewEncoder(buf).Encode(r); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The node might send us a proper JSON anyway, so look there first and if
	// it parses, it has more relevant data than HTTP error code.
	err = json.NewDecoder(resp.Body).Decode(raw)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			err = fmt.Errorf("HTTP %d/%s", resp.StatusCode, http.StatusText(resp.StatusCode))
		} else {
			err = fmt.Errorf("JSON decoding: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

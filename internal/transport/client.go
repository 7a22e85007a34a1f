package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
)

const (
	defaultTimeout   = 15 * time.Second
	testProbeTimeout = 10 * time.Second
)

// Client is the single keep-alive HTTP client used for every RDBG
// command of a session. It is safe for concurrent use.
type Client struct {
	cfg       Config
	http      *http.Client
	charset   rdbgxml.RequestCharset
	log       *protocolLog
	sessionID string
}

// NewClient builds a Client against one server. startedAt seeds the
// protocol log directory name and must be supplied by the caller
// (package transport never calls time.Now itself).
func NewClient(cfg Config, charset rdbgxml.RequestCharset, logProtocol bool, startedAt string) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		charset: charset,
		log:     newProtocolLog(logProtocol, startedAt),
	}
}

// ProtocolLogDir returns the directory protocol dumps are written to,
// or "" when protocol logging is disabled.
func (c *Client) ProtocolLogDir() string {
	return c.log.Dir()
}

// SetSessionID records the dbgui query parameter value sent on every
// subsequent request that needs it (everything after attachDebugUI).
func (c *Client) SetSessionID(id string) {
	c.sessionID = id
}

// Do posts an already-built XML request body to the given action/cmd
// pair and returns the raw response bytes.
func (c *Client) Do(ctx context.Context, action Action, cmd string, body []byte, withSession bool) ([]byte, error) {
	timeout := defaultTimeout
	if action == ActionRdbgTest {
		timeout = testProbeTimeout
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	encoded, err := rdbgxml.Encode(string(body), c.charset)
	if err != nil {
		return nil, errors.Wrap(err, "rdbg: encode request body")
	}

	u := c.cfg.baseURL(action)
	q := url.Values{}
	q.Set("cmd", cmd)
	if withSession && c.sessionID != "" {
		q.Set("dbgui", c.sessionID)
	}
	fullURL := fmt.Sprintf("%s?%s", u, q.Encode())

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, fullURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, errors.Wrap(err, "rdbg: build request")
	}
	req.ContentLength = int64(len(encoded))
	req.Header.Set("Content-Type", "text/xml; charset="+c.charset.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(c.cfg, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "rdbg: read response body")
	}

	isPing := cmd == "pingDebugUIParams" || cmd == "pingDBGTGT"
	c.log.record(cmd, isPing, body, respBody, nil)

	if resp.StatusCode != http.StatusOK {
		return respBody, &StatusError{Code: resp.StatusCode, Body: respBody}
	}

	return respBody, nil
}

// StatusError is returned when the server replies with a non-200
// status. The body is preserved since "only while stopped" and other
// domain errors are carried as 400 bodies callers must inspect.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rdbg: server returned status %d", e.Code)
}

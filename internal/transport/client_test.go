package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := Config{Host: u.Hostname(), Port: port}
	c := NewClient(cfg, rdbgxml.CharsetUTF8, false, "20260101_000000")
	return c, srv.Close
}

func TestClientDoRoutesActionAndCmd(t *testing.T) {
	var gotPath, gotCmd, gotDbgui string
	c, close := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCmd = r.URL.Query().Get("cmd")
		gotDbgui = r.URL.Query().Get("dbgui")
		w.Write([]byte(`<response/>`))
	})
	defer close()

	c.SetSessionID("sess-1")
	body, err := c.Do(context.Background(), ActionRdbg, "attachDebugUI", []byte(`<request/>`), true)
	require.NoError(t, err)
	assert.Equal(t, "/e1crdbg/rdbg", gotPath)
	assert.Equal(t, "attachDebugUI", gotCmd)
	assert.Equal(t, "sess-1", gotDbgui)
	assert.Equal(t, []byte(`<response/>`), body)
}

func TestClientDoOmitsSessionWhenNotRequested(t *testing.T) {
	var gotDbgui, sawDbgui string
	c, close := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, has := r.URL.Query()["dbgui"]
		if has {
			sawDbgui = "present"
		}
		gotDbgui = r.URL.Query().Get("dbgui")
		w.Write([]byte(`<response/>`))
	})
	defer close()

	c.SetSessionID("sess-1")
	_, err := c.Do(context.Background(), ActionRdbgTest, "test", []byte(`<request/>`), false)
	require.NoError(t, err)
	assert.Empty(t, gotDbgui)
	assert.Empty(t, sawDbgui)
}

func TestClientDoReturnsStatusErrorWithBody(t *testing.T) {
	c, close := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`<error>only while stopped</error>`))
	})
	defer close()

	body, err := c.Do(context.Background(), ActionRdbg, "evalExpr", []byte(`<request/>`), true)
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
	assert.Contains(t, string(body), "only while stopped")
}

func TestClassifyConnectionRefused(t *testing.T) {
	cfg := Config{Host: "127.0.0.1", Port: 1}
	c := NewClient(cfg, rdbgxml.CharsetUTF8, false, "20260101_000000")
	_, err := c.Do(context.Background(), ActionRdbgTest, "test", []byte(`<request/>`), false)
	require.Error(t, err)
	var tErr *Error
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, ErrKindRefused, tErr.Kind)
}

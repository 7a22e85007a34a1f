// Package common holds the small Conn abstraction shared by the RDBG DAP
// server and its transport so neither side depends on stdio concretely.
package common

import (
	"context"
	"io"

	"github.com/google/go-dap"
)

// Conn is a DAP message transport: one message in, one message out,
// closeable. Stdio, a socket, or an in-memory pipe in tests all satisfy it.
type Conn interface {
	SendMsg(m dap.Message) error
	RecvMsg(ctx context.Context) (dap.Message, error)
	io.Closer
}

package transport

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// protocolLog writes best-effort request/response dumps under
// <tmp>/PlatformTools-rdbg-protocol/<ts>/. Failures are logged, never
// surfaced, since logging must never break a debugging session.
type protocolLog struct {
	enabled bool
	dir     string
	seq     atomic.Uint64
}

// newProtocolLog creates the per-session log directory. startedAt is
// passed in rather than computed with time.Now so callers control the
// directory name deterministically.
func newProtocolLog(enabled bool, startedAt string) *protocolLog {
	p := &protocolLog{enabled: enabled}
	if !enabled {
		return p
	}

	p.dir = filepath.Join(os.TempDir(), "PlatformTools-rdbg-protocol", startedAt)
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		logrus.WithError(err).Warn("rdbg: failed to create protocol log directory, disabling protocol logging")
		p.enabled = false
		p.dir = ""
	}
	return p
}

// Dir returns the log directory, or "" when disabled.
func (p *protocolLog) Dir() string {
	return p.dir
}

// record writes one request/response pair. High-frequency ping
// exchanges are collapsed into a single rolling pair of files instead
// of accumulating one pair per call.
func (p *protocolLog) record(cmd string, isPing bool, reqBody, respBody []byte, decoded []byte) {
	if !p.enabled {
		return
	}

	var reqName, respName, decodedName string
	if isPing {
		reqName = "ping_request_last.xml"
		respName = "ping_response_last.xml"
		decodedName = "ping_response_last_decoded.xml"
	} else {
		seq := p.seq.Add(1)
		reqName = fmt.Sprintf("%05d_%s_request.xml", seq, cmd)
		respName = fmt.Sprintf("%05d_%s_response.xml", seq, cmd)
		decodedName = fmt.Sprintf("%05d_%s_response_decoded.xml", seq, cmd)
	}

	p.write(reqName, reqBody)
	p.write(respName, respBody)
	if len(decoded) > 0 {
		p.write(decodedName, decoded)
	}
}

func (p *protocolLog) write(name string, body []byte) {
	if body == nil {
		return
	}
	path := filepath.Join(p.dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("rdbg: failed to write protocol log entry")
	}
}

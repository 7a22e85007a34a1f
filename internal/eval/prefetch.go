package eval

import (
	"context"

	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"
	"github.com/sirupsen/logrus"
)

// prefetcher warms the cache for expandable children in the
// background after EvalLocalVariables/EvalExpr resolves, so expanding
// a variable node in the UI usually finds data already present.
type prefetcher struct {
	engine *Engine
}

func newPrefetcher(engine *Engine) *prefetcher {
	return &prefetcher{engine: engine}
}

func (p *prefetcher) schedule(targetID string, frameIndex int, children []rdbgxml.EvalChild) {
	for _, c := range children {
		if !c.Value.Expandable {
			continue
		}
		name := c.Name
		go func() {
			ctx := context.Background()
			if _, err := p.engine.EvalExpr(ctx, targetID, frameIndex, name, false); err != nil {
				logrus.WithError(err).WithField("expression", name).Debug("rdbg: prefetch failed")
			}
		}()
	}
}

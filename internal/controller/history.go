package controller

import (
	"context"

	"github.com/tphakala/retinascan/internal/api"
	"github.com/tphakala/retinascan/internal/logger"
	"github.com/tphakala/retinascan/internal/render"
)

// RefreshHistory fetches and renders the history in the background. Only the
// most recently started refresh renders; older ones are dropped on arrival.
// Transport failures are logged only. A non-2xx response shows the empty
// placeholder.
func (c *ViewController) RefreshHistory() {
	seq := c.historySeq.Add(1)

	c.mu.Lock()
	if !c.session.Active() {
		c.mu.Unlock()
		return
	}
	c.view.ShowHistoryLoading()
	c.mu.Unlock()

	c.goBackground(func(ctx context.Context) {
		entries, err := c.backend.History(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.historySeq.Load() != seq || !c.session.Active() {
			return
		}

		if err != nil {
			if api.IsTransport(err) {
				c.logger.Warn("history refresh failed", logger.Error(err))
				return
			}
			c.logger.Warn("history request rejected", logger.Error(err))
			c.view.ShowHistory(render.RenderHistory(nil, c.formatter))
			return
		}
		c.view.ShowHistory(render.RenderHistory(entries, c.formatter))
	})
}

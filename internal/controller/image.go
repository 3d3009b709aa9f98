package controller

import (
	"context"
	"time"

	"github.com/tphakala/retinascan/internal/api"
	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/logger"
	"github.com/tphakala/retinascan/internal/notification"
	"github.com/tphakala/retinascan/internal/observability/metrics"
	"github.com/tphakala/retinascan/internal/render"
	"github.com/tphakala/retinascan/internal/upload"
)

// Sentinels for operations refused before any network call.
var (
	ErrNotAuthenticated = errors.Newf("no active session").
				Component("controller").
				Category(errors.CategoryAuth).
				Build()

	ErrNoImage = errors.Newf("no image selected").
			Component("controller").
			Category(errors.CategoryValidation).
			Build()
)

// SelectImage replaces the pending image and hides the displayed prediction.
// The preview is encoded in the background; a preview finishing after a newer
// selection is discarded. A nil image is ignored.
func (c *ViewController) SelectImage(img *upload.PendingImage) {
	if img == nil {
		return
	}

	c.mu.Lock()
	c.pending = img
	c.imageGen++
	gen := c.imageGen
	c.lastResult = nil
	c.view.ShowIdle()
	c.mu.Unlock()

	c.logger.Debug("image selected",
		logger.String("filename", img.Filename()),
		logger.String("content_type", img.ContentType()),
		logger.Int("size", img.Size()))

	c.goBackground(func(ctx context.Context) {
		dataURL, err := img.PreviewDataURL(ctx)
		if err != nil {
			c.logger.Debug("preview aborted", logger.Error(err))
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.imageGen != gen {
			return
		}
		c.view.ShowPreview(img.Filename(), dataURL)
	})
}

// Analyze submits the pending image for prediction and renders the result.
func (c *ViewController) Analyze(ctx context.Context) error {
	release, err := c.begin(ActionAnalyze)
	if err != nil {
		return err
	}
	defer release()

	c.mu.Lock()
	active := c.session.Active()
	img := c.pending
	gen := c.imageGen
	c.mu.Unlock()

	switch {
	case !active:
		c.notify(notification.ToastTypeError, MsgNotLoggedIn)
		c.record(ActionAnalyze, metrics.OutcomeValidation, 0)
		return ErrNotAuthenticated
	case img == nil:
		c.notify(notification.ToastTypeError, MsgNoImage)
		c.record(ActionAnalyze, metrics.OutcomeValidation, 0)
		return ErrNoImage
	}

	c.mu.Lock()
	c.view.ShowLoading()
	c.view.SetAnalyzeEnabled(false)
	c.mu.Unlock()
	if c.metrics != nil {
		c.metrics.ObserveUpload(img.Size())
	}

	start := time.Now()
	prediction, err := c.backend.Predict(ctx, img)
	elapsed := time.Since(start)

	c.mu.Lock()
	stale := c.imageGen != gen
	if stale {
		// a newer selection already reset the result region
		if c.session.Active() && c.pending != nil {
			c.view.SetAnalyzeEnabled(true)
		}
		c.mu.Unlock()

		c.record(ActionAnalyze, metrics.OutcomeStale, elapsed)
		c.logger.Info("discarding prediction for replaced image",
			logger.String("filename", img.Filename()),
			logger.Duration("elapsed", elapsed))
		if err == nil {
			c.RefreshHistory()
		}
		return err
	}

	if err != nil {
		c.view.ShowIdle()
		c.view.SetAnalyzeEnabled(true)
		c.mu.Unlock()

		c.record(ActionAnalyze, outcomeOf(err), elapsed)
		c.logger.Warn("prediction failed",
			logger.String("filename", img.Filename()),
			logger.Error(err))
		c.notify(notification.ToastTypeError, failureMessage(err, MsgPredictFailed, MsgPredictError))
		return err
	}

	c.lastResult = prediction
	c.view.ShowResult(render.RenderResult(prediction, c.formatter))
	c.view.SetAnalyzeEnabled(true)
	c.mu.Unlock()

	c.record(ActionAnalyze, metrics.OutcomeSuccess, elapsed)
	c.logger.Info("prediction rendered",
		logger.String("label", prediction.Label),
		logger.Float64("confidence", prediction.Confidence),
		logger.Int("severity_level", prediction.SeverityLevel),
		logger.Duration("elapsed", elapsed))
	c.RefreshHistory()
	return nil
}

var _ api.Image = (*upload.PendingImage)(nil)

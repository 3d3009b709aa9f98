package controller

import (
	"context"

	"github.com/tphakala/retinascan/internal/api"
	"github.com/tphakala/retinascan/internal/notification"
	"github.com/tphakala/retinascan/internal/render"
)

// Backend is the screening service. *api.Client implements it.
type Backend interface {
	CheckAuth(ctx context.Context) (api.AuthStatus, error)
	Login(ctx context.Context, username, password string) (api.User, error)
	Register(ctx context.Context, username, email, password string) (api.User, error)
	Logout(ctx context.Context) error
	Predict(ctx context.Context, img api.Image) (*api.Prediction, error)
	History(ctx context.Context) ([]api.HistoryEntry, error)
}

// View is the page binding the controller renders into. *view.Page and
// *view.Terminal implement it.
type View interface {
	ShowAuth()
	ShowDashboard(username string)
	ShowPreview(filename, dataURL string)
	HidePreview()
	SetAnalyzeEnabled(enabled bool)
	ShowIdle()
	ShowLoading()
	ShowResult(r render.Result)
	ShowHistoryLoading()
	ShowHistory(h render.History)
	SetToasts(toasts []notification.Toast)
}

package controller

import (
	"context"
	"time"

	"github.com/tphakala/retinascan/internal/logger"
	"github.com/tphakala/retinascan/internal/notification"
)

// Init queries check-auth and shows the matching view. Any failure shows the
// unauthenticated view; it never surfaces an error notification. A login or
// logout that completes while the check is in flight wins over its result.
func (c *ViewController) Init(ctx context.Context) error {
	release, err := c.begin(ActionCheckAuth)
	if err != nil {
		return err
	}
	defer release()

	c.mu.Lock()
	gen := c.authGen
	c.mu.Unlock()

	start := time.Now()
	status, err := c.backend.CheckAuth(ctx)
	c.record(ActionCheckAuth, outcomeOf(err), time.Since(start))
	if err != nil {
		c.logger.Warn("auth check failed, treating as logged out", logger.Error(err))
	}

	if err == nil && status.Authenticated {
		if !c.enterDashboardAt(gen, status.Username) {
			c.logger.Debug("auth check result superseded by session change")
			return nil
		}
		c.RefreshHistory()
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authGen != gen {
		c.logger.Debug("auth check result superseded by session change")
		return nil
	}
	c.session = Session{}
	c.current = Unauthenticated
	c.view.ShowAuth()
	return nil
}

// Login authenticates and, on success, shows the dashboard and refreshes history.
// Both fields are expected to be non-empty.
func (c *ViewController) Login(ctx context.Context, username, password string) error {
	release, err := c.begin(ActionLogin)
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	user, err := c.backend.Login(ctx, username, password)
	c.record(ActionLogin, outcomeOf(err), time.Since(start))
	if err != nil {
		c.logger.Info("login failed", logger.String("username", username), logger.Error(err))
		c.notify(notification.ToastTypeError, failureMessage(err, MsgLoginFailed, MsgLoginError))
		return err
	}

	c.logger.Info("login succeeded", logger.String("username", user.Username))
	c.notify(notification.ToastTypeSuccess, MsgLoginSuccess)
	c.enterDashboard(user.Username)
	c.RefreshHistory()
	return nil
}

// Register creates an account and shows the dashboard. History is not
// refreshed since a new account has none.
func (c *ViewController) Register(ctx context.Context, username, email, password string) error {
	release, err := c.begin(ActionRegister)
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	user, err := c.backend.Register(ctx, username, email, password)
	c.record(ActionRegister, outcomeOf(err), time.Since(start))
	if err != nil {
		c.logger.Info("registration failed", logger.String("username", username), logger.Error(err))
		c.notify(notification.ToastTypeError, failureMessage(err, MsgRegisterFailed, MsgRegisterError))
		return err
	}

	c.logger.Info("registration succeeded", logger.String("username", user.Username))
	c.notify(notification.ToastTypeSuccess, MsgRegisterSuccess)
	c.enterDashboard(user.Username)
	return nil
}

// Logout ends the session. On success the session and pending image are
// cleared; on failure nothing changes and an error toast is shown.
func (c *ViewController) Logout(ctx context.Context) error {
	release, err := c.begin(ActionLogout)
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	err = c.backend.Logout(ctx)
	c.record(ActionLogout, outcomeOf(err), time.Since(start))
	if err != nil {
		c.logger.Warn("logout failed", logger.Error(err))
		c.notify(notification.ToastTypeError, failureMessage(err, MsgLogoutFailed, MsgLogoutError))
		return err
	}

	c.mu.Lock()
	c.authGen++
	c.session = Session{}
	c.pending = nil
	c.imageGen++
	c.lastResult = nil
	c.current = Unauthenticated
	c.view.ShowAuth()
	c.mu.Unlock()

	// drop any history refresh still in flight
	c.historySeq.Add(1)

	c.notify(notification.ToastTypeSuccess, MsgLogoutSuccess)
	return nil
}

func (c *ViewController) enterDashboard(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showDashboardLocked(username)
}

// enterDashboardAt shows the dashboard only if no session change happened
// since gen was read.
func (c *ViewController) enterDashboardAt(gen uint64, username string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authGen != gen {
		return false
	}
	c.showDashboardLocked(username)
	return true
}

func (c *ViewController) showDashboardLocked(username string) {
	c.authGen++
	c.session = Session{Username: username}
	c.current = Authenticated
	c.view.ShowDashboard(username)
}

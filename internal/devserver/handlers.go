package devserver

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/tphakala/retinascan/internal/api"
	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/logger"
	"github.com/tphakala/retinascan/internal/render"
	"github.com/tphakala/retinascan/internal/view"
)

// sqliteDateTime is the CURRENT_TIMESTAMP rendering of created_at.
const sqliteDateTime = "2006-01-02 15:04:05"

const (
	keyUserID   = "user_id"
	keyUsername = "username"
	ctxUserID   = "devserver.user_id"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
}

type authStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type historyItem struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Date       string  `json:"date"`
}

type historyResponse struct {
	History []historyItem `json:"history"`
}

func jsonError(c echo.Context, code int, msg string) error {
	return c.JSON(code, errorResponse{Error: msg})
}

func (s *Server) session(c echo.Context) *sessions.Session {
	// a cookie signed with another key yields a fresh session and an error
	sess, err := s.sessions.Get(c.Request(), sessionName)
	if err != nil {
		s.logger.Debug("discarding unreadable session cookie", logger.Error(err))
	}
	return sess
}

func (s *Server) startSession(c echo.Context, u User) error {
	sess := s.session(c)
	sess.Values[keyUserID] = u.ID
	sess.Values[keyUsername] = u.Username
	return sess.Save(c.Request(), c.Response())
}

// requireSession rejects requests without a logged-in session.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, _ := s.session(c).Values[keyUserID].(string)
		if userID == "" {
			return jsonError(c, http.StatusUnauthorized, "Authentication required")
		}
		c.Set(ctxUserID, userID)
		return next(c)
	}
}

func (s *Server) handleIndex(c echo.Context) error {
	page, err := view.NewPage()
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return page.Render(c.Response())
}

func (s *Server) handleCheckAuth(c echo.Context) error {
	sess := s.session(c)
	userID, _ := sess.Values[keyUserID].(string)
	if userID == "" {
		return c.JSON(http.StatusOK, authStatusResponse{Authenticated: false})
	}
	username, _ := sess.Values[keyUsername].(string)
	return c.JSON(http.StatusOK, authStatusResponse{Authenticated: true, Username: username})
}

func (s *Server) handleRegister(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "All fields are required")
	}

	u, err := s.store.CreateUser(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, ErrUserExists):
		return jsonError(c, http.StatusBadRequest, "Username or email already exists")
	case err != nil:
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if s.metrics != nil {
		if n, err := s.store.UserCount(); err == nil {
			s.metrics.Users.Set(float64(n))
		}
	}

	if err := s.startSession(c, u); err != nil {
		return err
	}
	s.logger.Info("user registered", logger.String("username", u.Username), logger.String("user_id", u.ID))
	return c.JSON(http.StatusCreated, messageResponse{Message: "Registration successful", Username: u.Username})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "All fields are required")
	}

	u, err := s.store.Authenticate(req.Username, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		s.logger.Info("login rejected", logger.String("username", req.Username))
		return jsonError(c, http.StatusUnauthorized, "Invalid credentials")
	case err != nil:
		return err
	}

	if err := s.startSession(c, u); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Login successful", Username: u.Username})
}

func (s *Server) handleLogout(c echo.Context) error {
	sess := s.session(c)
	sess.Values = make(map[any]any)
	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *Server) handlePredict(c echo.Context) error {
	fh, err := c.FormFile(api.ImageField)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "No image provided")
	}
	if strings.TrimSpace(fh.Filename) == "" {
		return jsonError(c, http.StatusBadRequest, "No image selected")
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	probs, err := s.classify(data)
	switch {
	case errors.IsCategory(err, errors.CategoryValidation):
		s.logger.Info("rejecting undecodable upload",
			logger.String("filename", fh.Filename),
			logger.Error(err))
		return jsonError(c, http.StatusBadRequest, "Invalid image file")
	case err != nil:
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	level := argmax(probs)
	label := render.GradeLabel(level)
	scores := make(api.Scores, 0, len(probs))
	for i, p := range probs {
		scores = append(scores, api.Score{Label: render.GradeLabel(i), Confidence: p * 100})
	}

	userID, _ := c.Get(ctxUserID).(string)
	if _, err := s.store.AddPrediction(userID, label, probs[level]); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.Predictions.WithLabelValues(label).Inc()
	}

	return c.JSON(http.StatusOK, api.Prediction{
		Label:         label,
		Confidence:    probs[level] * 100,
		SeverityLevel: level,
		Scores:        scores,
	})
}

// classify returns the grade distribution for an encoded image. Results are
// cached by content digest so repeated uploads skip decoding.
func (s *Server) classify(data []byte) ([]float64, error) {
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])
	if cached, ok := s.classified.Get(key); ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return slices.Clone(cached.([]float64)), nil
	}

	img, err := decodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	probs, err := s.classifier.Classify(img)
	if err != nil {
		return nil, errors.New(err).
			Component("devserver").
			Category(errors.CategoryGeneric).
			Context("operation", "classify").
			Build()
	}
	if s.metrics != nil {
		s.metrics.ClassifyTime.Observe(time.Since(start).Seconds())
	}

	s.classified.SetDefault(key, slices.Clone(probs))
	return probs, nil
}

func (s *Server) handleHistory(c echo.Context) error {
	userID, _ := c.Get(ctxUserID).(string)
	records, err := s.store.History(userID, historyLimit)
	if err != nil {
		return err
	}

	items := make([]historyItem, 0, len(records))
	for _, r := range records {
		items = append(items, historyItem{
			Prediction: r.Label,
			Confidence: r.Confidence * 100,
			Date:       r.CreatedAt.UTC().Format(sqliteDateTime),
		})
	}
	return c.JSON(http.StatusOK, historyResponse{History: items})
}

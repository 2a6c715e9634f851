// Package server adapts the dispatch kernel to HTTP with gin.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minus-twelve/relay"
	"github.com/minus-twelve/relay/controller"
	"github.com/minus-twelve/relay/errs"
	"github.com/minus-twelve/relay/internal/logging"
	"github.com/minus-twelve/relay/request"
	"github.com/minus-twelve/relay/response"
	"github.com/minus-twelve/relay/router"
)

type Server struct {
	engine   *gin.Engine
	sessions *relay.SessionManager
	router   *router.Router
	logger   *slog.Logger
}

type Options struct {
	TrustedProxies []string
	// Limiter is optional; a disabled limiter is not installed.
	Limiter *relay.RateLimiter
	Logger  *slog.Logger
}

func New(sessions *relay.SessionManager, rt *router.Router, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(requestID(), accessLog(logger), recovery(logger))
	if opts.Limiter != nil && opts.Limiter.Enabled() {
		engine.Use(opts.Limiter.Middleware())
	}

	s := &Server{
		engine:   engine,
		sessions: sessions,
		router:   rt,
		logger:   logger,
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.NoRoute(s.dispatch)

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// dispatch handles every request outside the fixed routes: resolve the
// session, parse, run one action, then write status, cookie and body.
func (s *Server) dispatch(c *gin.Context) {
	ctx := c.Request.Context()
	out := response.NewBuilder()

	session, err := s.sessions.GetOrCreate(ctx, c.GetHeader("Cookie"))
	if err != nil {
		s.fail(c, out, errs.InternalError("session store unavailable", err))
		s.write(c, out)
		return
	}

	scope := &controller.Scope{
		Session:  session,
		Response: out,
		Sessions: s.sessions,
	}
	if err := s.run(ctx, c, scope); err != nil {
		s.fail(c, out, err)
	}

	if err := s.sessions.Commit(ctx, scope.Session); err != nil {
		s.logger.Error("session commit failed", "error", err, "requestID", c.GetString(requestIDKey))
	}
	relay.SetCookie(c.Writer, s.sessions.Cookie(scope.Session), s.sessions.SecureCookie())
	s.write(c, out)
}

func (s *Server) run(ctx context.Context, c *gin.Context, scope *controller.Scope) error {
	req, err := request.FromHTTP(c.Request)
	if err != nil {
		return err
	}
	scope.Request = req

	ctrl, err := s.router.Dispatch(ctx, scope)
	c.Set(controllerKey, ctrl.Name())
	c.Set(actionKey, string(ctrl.Action()))
	return err
}

// fail folds err into the response. Server errors are logged with their
// cause and reach the client only as a generic message.
func (s *Server) fail(c *gin.Context, out *response.Builder, err error) {
	status := errs.StatusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"error", err,
			"path", c.Request.URL.Path,
			"requestID", c.GetString(requestIDKey),
		)
	}
	out.Merge(
		response.Status(status),
		response.Message(errs.PublicMessage(err)),
		response.Payload(map[string]interface{}{"code": errs.CodeOf(err)}),
		response.Redirect(""),
	)
}

func (s *Server) write(c *gin.Context, out *response.Builder) {
	if loc := out.Location(); loc != "" {
		c.Header("Location", loc)
	}
	c.JSON(out.StatusCode(), out.Envelope())
}

package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/yurifrl/agencyfin/pkg/executors"
	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/parser"
	"github.com/yurifrl/agencyfin/pkg/store"
	"github.com/yurifrl/agencyfin/pkg/ynab"
)

// Server exposes the state store over a JSON API.
type Server struct {
	logger *log.Logger
	store  *store.Store
	parser *parser.Parser
	engine *gin.Engine
	now    func() time.Time

	// feed builds the YNAB bank feed for a token.
	feed func(token string) executors.Feed
}

func New(st *store.Store, logger *log.Logger) *Server {
	s := &Server{
		logger: logger,
		store:  st,
		parser: parser.New(logger),
		now:    time.Now,
		feed:   func(token string) executors.Feed { return ynab.New(token) },
	}
	s.engine = s.router()
	return s
}

// Handler returns the routed engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.ForwardedByClientIP = false
	_ = r.SetTrustedProxies([]string{})

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(s.withLogging())

	gin.DebugPrintRouteFunc = func(method, path, handler string, _ int) {
		s.logger.Debug("route", "method", method, "path", path, "handler", handler)
	}

	api := r.Group("/api")

	api.GET("/state", s.handleState)
	api.DELETE("/state", s.handleReset)
	api.GET("/metrics", s.handleMetrics)
	api.GET("/advice", s.handleAdvice)

	api.POST("/clients", s.handleAddClient)
	api.PUT("/clients/:id", s.handleUpdateClient)
	api.DELETE("/clients/:id", s.handleDeleteClient)

	api.POST("/projects", s.handleAddProject)
	api.PUT("/projects/:id", s.handleUpdateProject)
	api.DELETE("/projects/:id", s.handleDeleteProject)

	api.POST("/costs", s.handleAddCost)
	api.PUT("/costs/:id", s.handleUpdateCost)
	api.DELETE("/costs/:category/:id", s.handleDeleteCost)

	api.PUT("/settings", s.handleSettings)
	api.GET("/fiscal-years", s.handleFiscalYears)
	api.PUT("/fiscal-year", s.handleChangeFiscalYear)
	api.PUT("/view-mode", s.handleViewMode)

	api.GET("/templates/:type", s.handleTemplate)
	api.GET("/reports/:type", s.handleExportReport)
	api.POST("/reports/:type", s.handleUpload)
	api.DELETE("/reports/:type", s.handleDeleteReport)
	api.GET("/reports/:type/manual", s.handleManualRows)
	api.POST("/reports/:type/manual", s.handleManualReport)

	api.GET("/backup", s.handleBackup)
	api.POST("/backup", s.handleRestore)

	api.GET("/ynab/budgets", s.handleBudgets)
	api.GET("/ynab/budgets/:budget/accounts", s.handleBudgetAccounts)
	api.POST("/ynab/import", s.handleYNABImport)

	return r
}

// --- helpers ---

// dispatch applies an action and answers with the resulting state.
func (s *Server) dispatch(c *gin.Context, status int, action store.Action) {
	state, err := s.store.Dispatch(action)
	if err != nil {
		s.respondError(c, statusFor(err), "failed to "+action.Name(), err)
		return
	}
	s.writeJSON(c, status, state)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrPersist):
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func (s *Server) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		if errors.Is(err, io.EOF) {
			s.respondError(c, http.StatusBadRequest, "request body must not be empty", nil)
			return false
		}
		s.respondError(c, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}

func (s *Server) paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "invalid id", err)
		return 0, false
	}
	return id, true
}

func (s *Server) paramReportType(c *gin.Context) (models.ReportType, bool) {
	t, err := models.ParseReportType(c.Param("type"))
	if err != nil {
		s.respondError(c, http.StatusNotFound, "unknown report type", err)
		return "", false
	}
	return t, true
}

// writeJSON wraps v in the success envelope.
func (s *Server) writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, gin.H{
		"status": "success",
		"data":   v,
	})
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(c *gin.Context, status int, message string, err error) {
	body := gin.H{
		"status": "error",
		"error":  message,
	}
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", c.Request.Method, "path", c.Request.URL.Path, "request_id", requestid.Get(c))
		if status < http.StatusInternalServerError {
			body["detail"] = err.Error()
		}
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", c.Request.Method, "path", c.Request.URL.Path, "request_id", requestid.Get(c))
	}
	c.AbortWithStatusJSON(status, body)
}

func (s *Server) withLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"request_id", requestid.Get(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"size", c.Writer.Size(),
			"latency", time.Since(start),
		)
	}
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
}

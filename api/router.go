package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prasetyowira/qrstudio/api/middleware"
	"github.com/prasetyowira/qrstudio/constant"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// Router represents the application router
type Router struct {
	handler *Handler
	router  *chi.Mux
}

// NewRouter creates a new router
func NewRouter(handler *Handler) *Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger())

	return &Router{
		handler: handler,
		router:  r,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() {
	appLogger.Info(constant.MsgSettingUpRoutes, appLogger.LoggerInfo{
		ContextFunction: constant.CtxRouter,
	})

	r.router.Group(func(s chi.Router) {
		s.Use(middleware.Session)

		s.Get(constant.RouteIndex, r.handler.Page)
		s.Get(constant.RouteState, r.handler.GetState)
		s.Put(constant.RouteForm, r.handler.UpdateForm)
		s.Post(constant.RouteGenerate, r.handler.Generate)
		s.Get(constant.RouteDownload, r.handler.Download)
		s.Post(constant.RouteClear, r.handler.Clear)
	})

	r.router.Get(constant.RouteHealthcheck, r.handler.Healthcheck)
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

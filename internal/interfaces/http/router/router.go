// Package router assembles the gin engine: the middleware chain, the probe
// and docs endpoints and the gated /api/v<n> route groups.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under the versioned API prefix
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds registrars to be mounted by Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registrar under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one resource. Every route carries its
// own guard so that no handler is reachable without one.
type DomainGroup struct {
	prefix string
	routes []routeDefinition
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a route group mounted at prefix
func NewDomainGroup(prefix string) *DomainGroup {
	return &DomainGroup{prefix: prefix}
}

func (dg *DomainGroup) handle(method, path string, guard gin.HandlerFunc, h gin.HandlerFunc) *DomainGroup {
	handlers := []gin.HandlerFunc{h}
	if guard != nil {
		handlers = []gin.HandlerFunc{guard, h}
	}
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route behind guard
func (dg *DomainGroup) GET(path string, guard, h gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, guard, h)
}

// POST registers a POST route behind guard
func (dg *DomainGroup) POST(path string, guard, h gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, guard, h)
}

// PUT registers a PUT route behind guard
func (dg *DomainGroup) PUT(path string, guard, h gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, path, guard, h)
}

// DELETE registers a DELETE route behind guard
func (dg *DomainGroup) DELETE(path string, guard, h gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodDelete, path, guard, h)
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

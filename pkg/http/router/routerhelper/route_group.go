package routerhelper

import (
	"net/http"
	"path"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// RouteGroup. registers httprouter handles under a common path prefix
type RouteGroup struct {
	router *httprouter.Router
	prefix string
}

func NewRouteGroup(router *httprouter.Router, prefix string) *RouteGroup {
	return &RouteGroup{
		router: router,
		prefix: cleanPrefix(prefix),
	}
}

func cleanPrefix(prefix string) string {
	if prefix == "" || prefix == "/" {
		return ""
	}
	prefix = path.Clean("/" + prefix)
	return strings.TrimRight(prefix, "/")
}

// Group. nested group, e.g. NewRouteGroup(r, "/api").Group("/v1") serves under /api/v1
func (g *RouteGroup) Group(prefix string) *RouteGroup {
	return &RouteGroup{
		router: g.router,
		prefix: g.prefix + cleanPrefix(prefix),
	}
}

func (g *RouteGroup) Path(p string) string {
	if p == "" || p == "/" {
		if g.prefix == "" {
			return "/"
		}
		return g.prefix
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return g.prefix + p
}

func (g *RouteGroup) Handle(method, p string, handle httprouter.Handle) {
	g.router.Handle(method, g.Path(p), handle)
}

func (g *RouteGroup) Handler(method, p string, handler http.Handler) {
	g.router.Handler(method, g.Path(p), handler)
}

func (g *RouteGroup) GET(p string, handle httprouter.Handle) {
	g.Handle(http.MethodGet, p, handle)
}

func (g *RouteGroup) POST(p string, handle httprouter.Handle) {
	g.Handle(http.MethodPost, p, handle)
}

func (g *RouteGroup) PUT(p string, handle httprouter.Handle) {
	g.Handle(http.MethodPut, p, handle)
}

func (g *RouteGroup) DELETE(p string, handle httprouter.Handle) {
	g.Handle(http.MethodDelete, p, handle)
}

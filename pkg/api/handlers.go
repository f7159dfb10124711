package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/hubcap/pkg/depres"
	"github.com/platinummonkey/hubcap/pkg/httputil"
)

// health handles GET /healthz
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]interface{}{
		"status":       "ok",
		"uptime":       time.Since(s.started).String(),
		"extensions":   len(s.host.Extensions()),
		"entry_points": s.host.Registry().Count(),
	})
}

// listExtensions handles GET /extensions
func (s *Server) listExtensions(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, s.host.Extensions())
}

// getExtension handles GET /extensions/{name}
func (s *Server) getExtension(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	ext, ok := s.host.Get(name)
	if !ok {
		httputil.WriteNotFoundError(w, fmt.Sprintf("extension %s is not loaded", name))
		return
	}
	httputil.WriteSuccess(w, ext)
}

// getEnvironment handles GET /extensions/{name}/environment?extras=a,b
func (s *Server) getEnvironment(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var extras []string
	if raw := r.URL.Query().Get("extras"); raw != "" {
		for _, extra := range strings.Split(raw, ",") {
			if extra = strings.TrimSpace(extra); extra != "" {
				extras = append(extras, extra)
			}
		}
	}

	env, err := s.host.Environment(name, extras)
	if err != nil {
		switch err.(type) {
		case *depres.UnknownExtraError, *depres.UnsatisfiableConstraintError:
			httputil.WriteBadRequest(w, err.Error())
		default:
			httputil.WriteNotFoundError(w, err.Error())
		}
		return
	}
	httputil.WriteSuccess(w, env)
}

// getRegistry handles GET /registry
func (s *Server) getRegistry(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, s.host.Registry().Snapshot())
}

// listGroups handles GET /registry/groups
func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, s.host.Registry().Groups())
}

// listGroupEntries handles GET /registry/groups/{group}
func (s *Server) listGroupEntries(w http.ResponseWriter, r *http.Request) {
	group := mux.Vars(r)["group"]

	entries := s.host.Registry().Entries(group)
	if len(entries) == 0 {
		httputil.WriteNotFoundError(w, fmt.Sprintf("no entries registered in group %s", group))
		return
	}
	httputil.WriteSuccess(w, entries)
}

// getHistory handles GET /history?limit=n
func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		httputil.WriteNotFoundError(w, "load catalog is not enabled")
		return
	}

	events, err := s.catalog.History(r.Context(), parseLimit(r))
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, events)
}

// getExtensionHistory handles GET /extensions/{name}/history?limit=n
func (s *Server) getExtensionHistory(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		httputil.WriteNotFoundError(w, "load catalog is not enabled")
		return
	}

	events, err := s.catalog.ExtensionHistory(r.Context(), mux.Vars(r)["name"], parseLimit(r))
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, events)
}

// reload handles POST /reload
func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	if err := s.host.Reload(r.Context()); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"status":       "reloaded",
		"extensions":   len(s.host.Extensions()),
		"entry_points": s.host.Registry().Count(),
	})
}

func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

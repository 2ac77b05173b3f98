package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/averyn/modlaunch/internal/config"
	"github.com/averyn/modlaunch/internal/game"
	"github.com/averyn/modlaunch/internal/launcher"
	"github.com/averyn/modlaunch/internal/profile"
)

// Router provides embeddable HTTP handlers for controlling game launches.
// Endpoints:
//
//	POST {basePath}/launch           body: {"name": "...", "mode": "vanilla|modded"}
//	                                 or   {"installation": {...}, "mode": "..."}
//	POST {basePath}/stop             query: name=... (configured) or root=...
//	GET  {basePath}/status           query: name=... (single) or empty (all)
//	GET  {basePath}/installations    configured installations
//	POST {basePath}/profiles/launch  query: name=...
//	POST {basePath}/profiles/stop    query: name=...
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	launcher *launcher.Launcher
	cfg      *config.Config
	profiles *profile.Runner
	basePath string
}

// NewRouter constructs a Router. cfg may be nil, in which case only inline
// installation bodies are accepted and the profile endpoints return 404s.
func NewRouter(l *launcher.Launcher, cfg *config.Config, basePath string) *Router {
	return &Router{
		launcher: l,
		cfg:      cfg,
		profiles: profile.New(l),
		basePath: sanitizeBase(basePath),
	}
}

// Handler returns an http.Handler powered by gin that can be mounted in any
// server or mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/launch", r.handleLaunch)
	group.POST("/stop", r.handleStop)
	group.GET("/status", r.handleStatus)
	group.GET("/installations", r.handleInstallations)
	group.POST("/profiles/launch", r.handleProfileLaunch)
	group.POST("/profiles/stop", r.handleProfileStop)
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// Call Close or Shutdown on the returned server to stop it.
func NewServer(addr, basePath string, l *launcher.Launcher, cfg *config.Config) (*http.Server, error) {
	r := NewRouter(l, cfg, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type launchRequest struct {
	Name         string             `json:"name"`
	Mode         string             `json:"mode"`
	Installation *game.Installation `json:"installation"`
}

// statusFor maps an outcome category to an HTTP status code.
func statusFor(out launcher.Outcome) int {
	if out.Success {
		return http.StatusOK
	}
	switch out.Category {
	case launcher.NotRunning, launcher.ExecutableNotFound:
		return http.StatusNotFound
	case launcher.PrerequisiteMissing:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (r *Router) handleLaunch(c *gin.Context) {
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	mode, err := launcher.ParseMode(req.Mode)
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	inst, ok := r.resolveInstallation(c, req)
	if !ok {
		return
	}
	out := r.launcher.Launch(inst, mode)
	writeJSON(c, statusFor(out), out)
}

func (r *Router) resolveInstallation(c *gin.Context, req launchRequest) (game.Installation, bool) {
	if req.Name != "" && req.Installation != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "provide either name or installation, not both"})
		return game.Installation{}, false
	}
	if req.Name != "" {
		if !isSafeName(req.Name) {
			writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid name: allowed [A-Za-z0-9._-]"})
			return game.Installation{}, false
		}
		if r.cfg == nil {
			writeJSON(c, http.StatusBadRequest, errorResp{Error: "no configuration loaded; send an inline installation"})
			return game.Installation{}, false
		}
		inst, ok := r.cfg.Installation(req.Name)
		if !ok {
			writeJSON(c, http.StatusNotFound, errorResp{Error: "unknown installation " + req.Name})
			return game.Installation{}, false
		}
		return inst, true
	}
	if req.Installation == nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "name or installation required"})
		return game.Installation{}, false
	}
	inst := *req.Installation
	if !isSafeAbsPath(inst.Root) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid root: must be absolute path without traversal"})
		return game.Installation{}, false
	}
	if err := inst.Validate(); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return game.Installation{}, false
	}
	return inst, true
}

func (r *Router) handleStop(c *gin.Context) {
	inst, ok := r.selectInstallation(c)
	if !ok {
		return
	}
	out := r.launcher.Stop(inst)
	writeJSON(c, statusFor(out), out)
}

// selectInstallation resolves the name or root query parameter. Exactly one
// must be present.
func (r *Router) selectInstallation(c *gin.Context) (game.Installation, bool) {
	name := c.Query("name")
	root := c.Query("root")
	if (name == "") == (root == "") {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "exactly one of name, root query param required"})
		return game.Installation{}, false
	}
	if root != "" {
		if !isSafeAbsPath(root) {
			writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid root: must be absolute path without traversal"})
			return game.Installation{}, false
		}
		return game.Installation{Root: root}, true
	}
	if !isSafeName(name) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid name: allowed [A-Za-z0-9._-]"})
		return game.Installation{}, false
	}
	if r.cfg == nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "no configuration loaded; select by root"})
		return game.Installation{}, false
	}
	inst, ok := r.cfg.Installation(name)
	if !ok {
		writeJSON(c, http.StatusNotFound, errorResp{Error: "unknown installation " + name})
		return game.Installation{}, false
	}
	return inst, true
}

func (r *Router) handleStatus(c *gin.Context) {
	if c.Query("name") == "" && c.Query("root") == "" {
		writeJSON(c, http.StatusOK, r.launcher.Statuses())
		return
	}
	inst, ok := r.selectInstallation(c)
	if !ok {
		return
	}
	st, ok := r.launcher.Status(inst)
	if !ok {
		writeJSON(c, http.StatusNotFound, errorResp{Error: "not running"})
		return
	}
	writeJSON(c, http.StatusOK, st)
}

func (r *Router) handleInstallations(c *gin.Context) {
	if r.cfg == nil {
		writeJSON(c, http.StatusOK, []game.Installation{})
		return
	}
	writeJSON(c, http.StatusOK, r.cfg.Installations)
}

func (r *Router) handleProfileLaunch(c *gin.Context) {
	s, ok := r.resolveProfile(c)
	if !ok {
		return
	}
	out := r.profiles.Launch(s)
	writeJSON(c, statusFor(out), out)
}

func (r *Router) handleProfileStop(c *gin.Context) {
	s, ok := r.resolveProfile(c)
	if !ok {
		return
	}
	out := r.profiles.Stop(s)
	writeJSON(c, statusFor(out), out)
}

func (r *Router) resolveProfile(c *gin.Context) (profile.Spec, bool) {
	name := c.Query("name")
	if !isSafeName(name) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "name query param required"})
		return profile.Spec{}, false
	}
	if r.cfg == nil {
		writeJSON(c, http.StatusNotFound, errorResp{Error: "no configuration loaded"})
		return profile.Spec{}, false
	}
	p, ok := r.cfg.ProfileByName(name)
	if !ok {
		writeJSON(c, http.StatusNotFound, errorResp{Error: "unknown profile " + name})
		return profile.Spec{}, false
	}
	mode := launcher.ModeModded
	if p.Mode != "" {
		m, err := launcher.ParseMode(p.Mode)
		if err != nil {
			writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
			return profile.Spec{}, false
		}
		mode = m
	}
	members := make([]game.Installation, 0, len(p.Members))
	for _, name := range p.Members {
		inst, ok := r.cfg.Installation(name)
		if !ok {
			writeJSON(c, http.StatusInternalServerError, errorResp{Error: "profile member " + name + " not configured"})
			return profile.Spec{}, false
		}
		members = append(members, inst)
	}
	return profile.Spec{Name: p.Name, Mode: mode, Members: members}, true
}

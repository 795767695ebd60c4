package apiserver

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"whackerhero/videogenerator"
)

//go:embed form.html
var formHTML string

var formTemplate = template.Must(template.New("form").Parse(formHTML))

// RenderFunc runs one render. videogenerator.Generate fits once bound to a
// progress writer.
type RenderFunc func(ctx context.Context, cfg videogenerator.Config) (videogenerator.Result, error)

// Server is the graphical front end: a form that collects the same options
// as the command line and starts a render on the machine it runs on.
type Server struct {
	base   videogenerator.Config
	render RenderFunc

	mu   sync.Mutex
	busy bool
}

type renderRequest struct {
	Midi      string  `json:"midi"`
	Output    string  `json:"output"`
	Audio     string  `json:"audio"`
	Image     string  `json:"image"`
	Font      string  `json:"font"`
	Size      string  `json:"size"`
	FPS       int     `json:"fps"`
	Speed     float64 `json:"speed"`
	Opacity   *int    `json:"opacity"`
	Preview   *bool   `json:"preview"`
	NoText    bool    `json:"no_text"`
	Overwrite bool    `json:"overwrite"`
}

type renderResponse struct {
	Output   string  `json:"output"`
	Frames   int     `json:"frames"`
	Duration float64 `json:"duration"`
	Bytes    int64   `json:"bytes"`
	Elapsed  float64 `json:"elapsed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(base videogenerator.Config, render RenderFunc) *Server {
	return &Server{base: base, render: render}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.Form).Methods(http.MethodGet)
	r.HandleFunc("/render", s.Render).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/healthz", Health).Methods(http.MethodGet)
	r.Use(mux.CORSMethodMiddleware(r))
	r.Use(sameOriginOnly)

	return r
}

// sameOriginOnly rejects requests a browser sends on behalf of another
// site. Requests without an Origin header (curl, scripts) pass.
func sameOriginOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			u, err := url.Parse(origin)
			if err != nil || u.Host != r.Host {
				writeJSON(w, http.StatusForbidden, errorResponse{"cross-origin requests are not allowed"})
				return
			}
		}
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Form(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Size    string
		FPS     int
		Speed   float64
		Opacity int
		Audio   string
		Image   string
		Preview bool
	}{
		Size:    fmt.Sprintf("%dx%d", s.base.Width, s.base.Height),
		FPS:     s.base.FPS,
		Speed:   s.base.FallTime,
		Opacity: s.base.Opacity,
		Audio:   s.base.AudioPath,
		Image:   s.base.BackgroundPath,
		Preview: s.base.Preview,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, data); err != nil {
		slog.Error("render form", "error", err)
	}
}

func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	cfg, err := s.config(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	if !req.Overwrite && cfg.FramesDir == "" {
		if _, err := os.Stat(cfg.OutputPath); err == nil {
			writeJSON(w, http.StatusConflict, errorResponse{cfg.OutputPath + " already exists"})
			return
		}
	}

	if !s.acquire() {
		writeJSON(w, http.StatusConflict, errorResponse{"a render is already running"})
		return
	}
	defer s.release()

	slog.Info("render requested", "midi", cfg.MidiPath, "output", cfg.OutputPath, "preview", cfg.Preview)
	res, err := s.render(r.Context(), cfg)
	if err != nil {
		slog.Error("render failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{
		Output:   res.Output,
		Frames:   res.Frames,
		Duration: res.Duration,
		Bytes:    res.Bytes,
		Elapsed:  res.Elapsed.Seconds(),
	})
}

func (s *Server) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Server) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func decodeRequest(r *http.Request) (renderRequest, error) {
	var req renderRequest

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("decode request: %w", err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("parse form: %w", err)
	}
	req.Midi = r.PostForm.Get("midi")
	req.Output = r.PostForm.Get("output")
	req.Audio = r.PostForm.Get("audio")
	req.Image = r.PostForm.Get("image")
	req.Font = r.PostForm.Get("font")
	req.Size = r.PostForm.Get("size")
	if r.PostForm.Get("preview") != "" {
		preview := true
		req.Preview = &preview
	}
	req.NoText = r.PostForm.Get("no_text") != ""
	req.Overwrite = r.PostForm.Get("overwrite") != ""

	var err error
	if v := r.PostForm.Get("fps"); v != "" {
		if req.FPS, err = strconv.Atoi(v); err != nil {
			return req, fmt.Errorf("fps: %w", err)
		}
	}
	if v := r.PostForm.Get("speed"); v != "" {
		if req.Speed, err = strconv.ParseFloat(v, 64); err != nil {
			return req, fmt.Errorf("speed: %w", err)
		}
	}
	if v := r.PostForm.Get("opacity"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("opacity: %w", err)
		}
		req.Opacity = &o
	}
	return req, nil
}

// config layers a request over the server's base configuration.
func (s *Server) config(req renderRequest) (videogenerator.Config, error) {
	cfg := s.base
	cfg.MidiPath = req.Midi
	cfg.OutputPath = req.Output
	if cfg.OutputPath == "" && cfg.MidiPath != "" {
		cfg.OutputPath = videogenerator.DefaultOutputPath(cfg.MidiPath, ".mp4")
	}
	if req.Audio != "" {
		cfg.AudioPath = req.Audio
	}
	if req.Image != "" {
		cfg.BackgroundPath = req.Image
	}
	if req.Font != "" {
		cfg.FontPath = req.Font
	}
	if req.Size != "" {
		w, h, err := videogenerator.ParseSize(req.Size)
		if err != nil {
			return cfg, err
		}
		cfg.Width, cfg.Height = w, h
	}
	if req.FPS != 0 {
		cfg.FPS = req.FPS
	}
	if req.Speed != 0 {
		cfg.FallTime = req.Speed
	}
	if req.Opacity != nil {
		cfg.Opacity = *req.Opacity
	}
	if req.Preview != nil {
		cfg.Preview = *req.Preview
	}
	cfg.ShowText = cfg.ShowText && !req.NoText

	return cfg, cfg.Validate()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context, addr string, s *Server) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("Running server", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

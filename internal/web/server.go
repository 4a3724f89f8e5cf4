package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mccwk.com/arcard/internal/card"
	"mccwk.com/arcard/internal/form"
	"mccwk.com/arcard/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/page.html"))

type pageData struct {
	Snapshot  form.Snapshot
	Preview   template.HTML
	Retrieved template.HTML
	Error     string
}

// Server serves the card form to a local browser. It owns a single form
// session, the same way the page it replaces held one form.
type Server struct {
	session  *form.Session
	renderer *services.Renderer
	logger   *slog.Logger
	router   chi.Router
}

func NewServer(session *form.Session, renderer *services.Renderer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		session:  session,
		renderer: renderer,
		logger:   logger,
		router:   chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(2 * time.Minute))

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	s.router.Get("/", s.handleIndex)
	s.router.With(s.sameOrigin).Post("/form", s.handleForm)
	s.router.Get("/artifact", s.handleArtifact)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving form", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "")
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.applyForm(r); err != nil {
		s.render(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.PostForm.Get("action") {
	case "add-link":
		s.session.State().AddLink()
	case "submit":
		result, err := s.session.Submit(r.Context())
		if errors.Is(err, form.ErrSubmitInFlight) {
			s.render(w, http.StatusConflict, err.Error())
			return
		}
		if err != nil {
			s.render(w, http.StatusInternalServerError, err.Error())
			return
		}
		if rerr := result.Err(); rerr != nil {
			s.logger.Warn("upload failed", "stage", result.Stage, "error", rerr)
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// applyForm copies the posted fields into the form state. Posted links
// beyond the current sequence are ignored; links are only ever added through
// the add-link action.
func (s *Server) applyForm(r *http.Request) error {
	state := s.session.State()
	fields := map[form.Field]string{
		form.FieldTitle:       "title",
		form.FieldOwner:       "owner",
		form.FieldDescription: "description",
	}
	for field, key := range fields {
		if _, ok := r.PostForm[key]; !ok {
			continue
		}
		if err := state.SetField(field, r.PostForm.Get(key)); err != nil {
			return err
		}
	}

	texts := r.PostForm["link_text"]
	hrefs := r.PostForm["link_href"]
	n := len(state.Metadata().Links)
	for i := 0; i < n; i++ {
		if i < len(texts) {
			if err := state.SetLinkField(i, form.LinkText, texts[i]); err != nil {
				return err
			}
		}
		if i < len(hrefs) {
			if err := state.SetLinkField(i, form.LinkHref, hrefs[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	artifact, err := card.BuildArtifact(s.session.State().Metadata())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", card.ContentType)
	_, _ = w.Write([]byte(artifact))
}

func (s *Server) render(w http.ResponseWriter, status int, errText string) {
	snap := s.session.State().Snapshot()

	preview, err := card.BuildArtifact(snap.Metadata)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := pageData{
		Snapshot: snap,
		// The artifact is built by html/template and is already escaped.
		Preview: template.HTML(preview),
		Error:   errText,
	}
	if snap.HasContent {
		data.Retrieved = template.HTML(s.renderer.Sanitize(snap.Retrieved))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", "error", err)
	}
}

// sameOrigin rejects form posts a browser sent on behalf of another site.
// Requests carrying neither Sec-Fetch-Site nor Origin come from non-browser
// clients and pass.
func (s *Server) sameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := crossOriginReason(r); reason != "" {
			s.logger.Warn("rejected cross-origin request",
				"path", r.URL.Path,
				"reason", reason,
				"origin", r.Header.Get("Origin"),
				"request_id", middleware.GetReqID(r.Context()),
			)
			http.Error(w, "cross-origin request rejected", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func crossOriginReason(r *http.Request) string {
	switch site := r.Header.Get("Sec-Fetch-Site"); site {
	case "", "same-origin", "none":
	default:
		return "sec-fetch-site " + site
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return ""
	}
	if origin == "null" {
		return "opaque origin"
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return "malformed origin"
	}
	if !strings.EqualFold(u.Host, r.Host) {
		return "origin host " + u.Host
	}
	return ""
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

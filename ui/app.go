package ui

import (
	"embed"
	"html/template"
	"net/http"

	"promolift/internal/analysis"
	"promolift/internal/api"
	"promolift/internal/errors"
	"promolift/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// App serves the dashboard pages and mounts the JSON API
type App struct {
	router    *chi.Mux
	analyzer  *analysis.Analyzer
	options   Options
	templates *template.Template
	log       *logrus.Entry
}

// Options tunes the HTTP surface
type Options struct {
	// AllowedOrigins enables CORS on /api for these origins
	AllowedOrigins []string
	// Metrics is served at /metrics when set
	Metrics http.Handler
}

type page struct {
	Path    string
	Title   string
	Section report.Section
}

var pages = []page{
	{Path: "/", Title: "Overview", Section: report.SectionOverview},
	{Path: "/exploratory", Title: "Exploratory Analysis", Section: report.SectionExploratory},
	{Path: "/testing", Title: "Statistical Testing", Section: report.SectionTesting},
	{Path: "/conclusion", Title: "Conclusion", Section: report.SectionConclusion},
}

type navItem struct {
	Path   string
	Title  string
	Active bool
}

type pageData struct {
	Title    string
	Nav      []navItem
	Body     template.HTML
	ReportID string
}

// NewApp creates the dashboard over an analyzer
func NewApp(analyzer *analysis.Analyzer, opts Options) (*App, error) {
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	app := &App{
		router:    chi.NewRouter(),
		analyzer:  analyzer,
		options:   opts,
		templates: templates,
		log:       logrus.WithField("component", "UI"),
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the dashboard pages and mounts the gin API
func (a *App) setupRoutes() {
	for _, p := range pages {
		a.router.Get(p.Path, a.handlePage(p))
	}

	if a.options.Metrics != nil {
		a.router.Handle("/metrics", a.options.Metrics)
	}

	a.router.Group(func(r chi.Router) {
		if len(a.options.AllowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: a.options.AllowedOrigins,
				AllowedMethods: []string{"GET", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
		}
		r.Handle("/api/*", api.NewRouter(a.analyzer))
	})
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) handlePage(p page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := a.analyzer.Report(r.Context())
		if err != nil {
			a.log.WithError(err).Error("report unavailable")
			http.Error(w, errors.GetCode(err)+": "+err.Error(), http.StatusInternalServerError)
			return
		}

		data := pageData{
			Title:    p.Title,
			Nav:      navFor(p),
			Body:     template.HTML(report.HTML(report.SectionMarkdown(rep, p.Section))),
			ReportID: rep.ID.String(),
		}
		a.render(w, data)
	}
}

func (a *App) render(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, "layout", data); err != nil {
		a.log.WithError(err).Error("template execution failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func navFor(current page) []navItem {
	items := make([]navItem, len(pages))
	for i, p := range pages {
		items[i] = navItem{Path: p.Path, Title: p.Title, Active: p.Path == current.Path}
	}
	return items
}

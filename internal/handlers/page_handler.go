package handlers

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/medtalks/website/internal/flash"
	"github.com/medtalks/website/internal/models"
	"github.com/medtalks/website/internal/services"
	"github.com/medtalks/website/internal/store"
	"go.uber.org/zap"
)

// CatalogService is the interface that wraps methods for reading the course catalog.
//
// Reads never fail: data access errors yield empty lists or nil.
type CatalogService interface {
	// Method ListByCategory retrieve the courses of a category. An empty status means published.
	ListByCategory(ctx context.Context, category, status string) []models.Course
	// Method ListAll retrieve every course. An empty status means published.
	ListAll(ctx context.Context, status string) []models.Course
	// Method GetByID retrieve a course, nil when it does not exist
	GetByID(ctx context.Context, id string) *models.Course
	// Method View prepare a course for rendering
	View(course models.Course) models.CourseView
	// Method Views prepare a list of courses for rendering
	Views(courses []models.Course) []models.CourseView
	// Method Category return the display info of a known program category
	Category(category string) (models.CategoryInfo, bool)
}

// TeamService is the interface that wraps the team listing
type TeamService interface {
	// Method Members retrieve the active team members, empty on failure
	Members(ctx context.Context) []models.TeamMember
}

// Notices is the interface that wraps one-shot page notices
type Notices interface {
	// Method Add queue a notice for the next rendered page
	Add(w http.ResponseWriter, r *http.Request, category, text string) error
	// Method Pop return the queued notices and clear them
	Pop(w http.ResponseWriter, r *http.Request) []flash.Message
}

// PageConfig holds the values injected into every page
type PageConfig struct {
	Videos           map[string]string
	TurnstileSiteKey string
}

const (
	homePostLimit    = 3
	programPostLimit = 3
	blogPageLimit    = 20
)

const (
	msgContactThanks   = "Thank you for contacting us! We will get back to you soon."
	msgContactFailed   = "An error occurred. Please try again later."
	msgCourseNotFound  = "Course not found."
	msgPostNotFound    = "Blog post not found"
	msgPostUnavailable = "An error occurred while loading the blog post"
)

// product is a marketing page for one of the site's products
type product struct {
	Name     string
	Tagline  string
	VideoKey string
}

var products = map[string]product{
	"dr-meddy": {
		Name:     "Dr. Meddy",
		Tagline:  "An AI speaking partner that rehearses clinical consultations with you.",
		VideoKey: "video_dr_meddy_url",
	},
	"mr-brown": {
		Name:     "Mr. Brown",
		Tagline:  "Role-play patients for OET speaking practice, available around the clock.",
		VideoKey: "video_recording_url",
	},
	"oet-agents": {
		Name:     "OET Agents",
		Tagline:  "Writing and listening coaches that mark your answers against OET criteria.",
		VideoKey: "video_sample1_url",
	},
	"coursebooks": {
		Name:     "Coursebooks",
		Tagline:  "Printed and digital workbooks that follow every MedTalks course.",
		VideoKey: "video_sample2_url",
	},
}

//go:embed templates
var templateFS embed.FS

var pageTemplates = mustParsePages()

//go:embed static
var staticFS embed.FS

// staticFiles serves the embedded scripts under /static/
func staticFiles() http.Handler {
	root, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(root)))
}

func mustParsePages() map[string]*template.Template {
	layout := template.Must(template.ParseFS(templateFS, "templates/layout.html"))

	pages, err := templateFS.ReadDir("templates/pages")
	if err != nil {
		panic(err)
	}

	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		name := strings.TrimSuffix(p.Name(), ".html")
		t := template.Must(layout.Clone())
		out[name] = template.Must(t.ParseFS(templateFS, "templates/pages/"+p.Name()))
	}
	return out
}

// pageData is the root value every template is executed with
type pageData struct {
	Title            string
	Flashes          []flash.Message
	Videos           map[string]string
	TurnstileSiteKey string
	Year             int
	Data             any
}

// PageHandler renders the HTML pages of the site
type PageHandler struct {
	BaseHandler
	catalog     CatalogService
	blogs       BlogService
	team        TeamService
	submissions SubmissionService
	notices     Notices
	cfg         PageConfig
}

// NewPageHandler creates a new page handler
func NewPageHandler(catalog CatalogService, blogs BlogService, team TeamService, submissions SubmissionService, notices Notices, cfg PageConfig, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		BaseHandler: BaseHandler{logger: logger},
		catalog:     catalog,
		blogs:       blogs,
		team:        team,
		submissions: submissions,
		notices:     notices,
		cfg:         cfg,
	}
}

// RegisterRoutes registers all page routes
func (h *PageHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Get("/", h.Home)
	r.Get("/about", h.staticPage("about", "About Us"))
	r.Get("/courses", h.Courses)
	r.Get("/contact", h.staticPage("contact", "Contact"))
	r.With(guards.verify()).Post("/contact", h.SubmitContact)
	r.Get("/team", h.Team)
	r.Get("/programs/{category}", h.Program)
	r.Get("/course/{id}", h.CourseDetail)
	r.Get("/products/{product}", h.Product)
	r.Get("/partnerships", h.staticPage("partnerships", "Partnerships"))
	r.Get("/partnership-application", h.PartnershipApplication)
	r.Get("/blog", h.Blog)
	r.Get("/blog/{slug}", h.BlogPost)
	r.Handle("/static/*", staticFiles())
	r.NotFound(h.NotFound)
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", "", map[string]any{
		"Posts": h.recentPosts(r.Context(), homePostLimit),
	})
}

// Courses handles GET /courses
func (h *PageHandler) Courses(w http.ResponseWriter, r *http.Request) {
	courses := h.catalog.ListAll(r.Context(), "")
	h.render(w, r, http.StatusOK, "courses", "Courses", map[string]any{
		"Courses": h.catalog.Views(courses),
	})
}

// SubmitContact handles POST /contact
func (h *PageHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	submission := &models.ContactSubmission{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Phone:   r.PostFormValue("phone"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	}

	err := h.submissions.SubmitContact(r.Context(), submission)
	var verr *services.ValidationError
	switch {
	case err == nil:
		h.notify(w, r, flash.CategorySuccess, msgContactThanks)
	case errors.As(err, &verr):
		h.notify(w, r, flash.CategoryError, verr.Message)
	default:
		h.notify(w, r, flash.CategoryError, msgContactFailed)
	}
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

// Team handles GET /team
func (h *PageHandler) Team(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "team", "Our Team", map[string]any{
		"Members": h.team.Members(r.Context()),
	})
}

// Program handles GET /programs/{category}
func (h *PageHandler) Program(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	info, ok := h.catalog.Category(category)
	if !ok {
		h.NotFound(w, r)
		return
	}

	courses := h.catalog.ListByCategory(r.Context(), strings.ToLower(category), "")
	h.render(w, r, http.StatusOK, "program", info.Name, map[string]any{
		"Category": info,
		"Courses":  h.catalog.Views(courses),
		"Posts":    h.recentPosts(r.Context(), programPostLimit),
	})
}

// CourseDetail handles GET /course/{id}
func (h *PageHandler) CourseDetail(w http.ResponseWriter, r *http.Request) {
	course := h.catalog.GetByID(r.Context(), chi.URLParam(r, "id"))
	if course == nil {
		h.notify(w, r, flash.CategoryError, msgCourseNotFound)
		http.Redirect(w, r, "/courses", http.StatusFound)
		return
	}

	h.render(w, r, http.StatusOK, "course", course.Title, map[string]any{
		"Course": h.catalog.View(*course),
	})
}

// Product handles GET /products/{product}
func (h *PageHandler) Product(w http.ResponseWriter, r *http.Request) {
	p, ok := products[chi.URLParam(r, "product")]
	if !ok {
		h.NotFound(w, r)
		return
	}

	h.render(w, r, http.StatusOK, "product", p.Name, map[string]any{
		"Product": p,
	})
}

// PartnershipApplication handles GET /partnership-application
func (h *PageHandler) PartnershipApplication(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "partnership_application", "Partnership Application", map[string]any{
		"Schema": services.PartnershipSchema,
	})
}

// Blog handles GET /blog
func (h *PageHandler) Blog(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "blog", "Blog", map[string]any{
		"Posts": h.recentPosts(r.Context(), blogPageLimit),
	})
}

// BlogPost handles GET /blog/{slug}
func (h *PageHandler) BlogPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.blogs.GetPost(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, store.ErrNotFound) {
		h.notify(w, r, flash.CategoryError, msgPostNotFound)
		http.Redirect(w, r, "/blog", http.StatusFound)
		return
	}
	if err != nil {
		h.notify(w, r, flash.CategoryError, msgPostUnavailable)
		http.Redirect(w, r, "/blog", http.StatusFound)
		return
	}

	h.render(w, r, http.StatusOK, "blog_post", post.Title, map[string]any{
		"Post": post,
	})
}

// NotFound renders the not found page, or a JSON error under /api
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		h.respondError(w, http.StatusNotFound, "Not found.")
		return
	}
	h.render(w, r, http.StatusNotFound, "not_found", "Page Not Found", nil)
}

func (h *PageHandler) staticPage(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, http.StatusOK, name, title, nil)
	}
}

// recentPosts returns the newest posts, or none when the blog cannot be read
func (h *PageHandler) recentPosts(ctx context.Context, limit int) []models.BlogPost {
	posts, err := h.blogs.ListPublished(ctx, limit)
	if err != nil {
		return []models.BlogPost{}
	}
	return posts
}

func (h *PageHandler) notify(w http.ResponseWriter, r *http.Request, category, text string) {
	if err := h.notices.Add(w, r, category, text); err != nil {
		h.logger.Error("failed to set flash notice", zap.Error(err))
	}
}

// render executes a page into a buffer so template failures never send a partial page
func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	t, ok := pageTemplates[page]
	if !ok {
		h.logger.Error("unknown page template", zap.String("page", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err := t.ExecuteTemplate(&buf, "layout", pageData{
		Title:            title,
		Flashes:          h.notices.Pop(w, r),
		Videos:           h.cfg.Videos,
		TurnstileSiteKey: h.cfg.TurnstileSiteKey,
		Year:             time.Now().Year(),
		Data:             data,
	})
	if err != nil {
		h.logger.Error("failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

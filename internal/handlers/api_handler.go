package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/medtalks/website/internal/middleware"
	"github.com/medtalks/website/internal/models"
	"github.com/medtalks/website/internal/services"
	"go.uber.org/zap"
)

// SubmissionService is the interface that wraps methods for storing visitor submissions
type SubmissionService interface {
	// Method SubmitContact validate and store a contact form submission.
	//
	// Rejected input is reported with a *services.ValidationError.
	SubmitContact(ctx context.Context, c *models.ContactSubmission) error
	// Method Subscribe add an email to the newsletter.
	//
	// Please reference SubmitContact method for validation errors. An already subscribed email
	// is reported with services.ErrDuplicateSubscriber.
	Subscribe(ctx context.Context, sub *models.NewsletterSubscription) error
	// Method Enroll store a course enrollment request
	Enroll(ctx context.Context, e *models.CourseEnrollment) error
}

// PartnershipService is the interface that wraps the partnership application intake
type PartnershipService interface {
	// Method Submit validate and store a raw application and return its reference number.
	//
	// Rejected input is reported with a *services.ValidationError holding a message per input field.
	Submit(ctx context.Context, raw map[string]any, ipAddress string) (string, error)
}

// BlogService is the interface that wraps methods for reading blog posts
type BlogService interface {
	// Method ListPublished retrieve published posts, newest first. Zero limit means every post.
	ListPublished(ctx context.Context, limit int) ([]models.BlogPost, error)
	// Method GetPost retrieve a post by slug or document ID.
	//
	// A missing post is reported with an error wrapping store.ErrNotFound.
	GetPost(ctx context.Context, slug string) (*models.BlogPost, error)
}

// Guards are the middlewares protecting write endpoints. Nil guards are skipped.
type Guards struct {
	// Verify rejects requests failing bot verification
	Verify func(http.Handler) http.Handler
	// Dedup replays retried submissions
	Dedup func(http.Handler) http.Handler
}

func (g Guards) verify() func(http.Handler) http.Handler {
	if g.Verify == nil {
		return identity
	}
	return g.Verify
}

func (g Guards) dedup() func(http.Handler) http.Handler {
	if g.Dedup == nil {
		return identity
	}
	return g.Dedup
}

const (
	msgInvalidBody       = "Invalid request body."
	msgTryAgain          = "An error occurred. Please try again."
	msgUnexpected        = "An unexpected error occurred. Please try again later."
	msgAlreadySubscribed = "This email is already subscribed"
	msgSubscribed        = "Successfully subscribed to newsletter!"
	msgEnrolled          = "Enrollment successful!"
	msgApplicationSent   = "Your partnership application has been submitted successfully!"
	msgBlogsUnavailable  = "Blog posts are unavailable right now."
)

// partnershipResponse is the body of an accepted partnership application
type partnershipResponse struct {
	Success         bool   `json:"success"`
	ReferenceNumber string `json:"reference_number"`
	Message         string `json:"message"`
}

// partnershipFailure is the body of a rejected partnership application
type partnershipFailure struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// blogsResponse is the body of the blog listing
type blogsResponse struct {
	Success bool              `json:"success"`
	Posts   []models.BlogPost `json:"posts"`
}

// APIHandler handles the JSON API
type APIHandler struct {
	BaseHandler
	submissions  SubmissionService
	partnerships PartnershipService
	blogs        BlogService
}

// NewAPIHandler creates a new JSON API handler
func NewAPIHandler(submissions SubmissionService, partnerships PartnershipService, blogs BlogService, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		BaseHandler:  BaseHandler{logger: logger},
		submissions:  submissions,
		partnerships: partnerships,
		blogs:        blogs,
	}
}

// RegisterRoutes registers all JSON API routes
func (h *APIHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/newsletter/subscribe", h.Subscribe)
		r.With(guards.dedup()).Post("/course/enroll", h.Enroll)
		r.With(guards.dedup(), guards.verify()).Post("/partnership-application", h.SubmitPartnership)
		r.Get("/blogs", h.ListBlogs)
	})
}

// Subscribe handles POST /api/newsletter/subscribe
// @Summary Subscribe to the newsletter
// @Description Add an email address to the newsletter list
// @Tags newsletter
// @Accept json
// @Produce json
// @Param request body models.NewsletterSubscription true "Subscription"
// @Success 200 {object} handlers.messageResponse
// @Failure 400 {object} handlers.messageResponse
// @Failure 500 {object} handlers.messageResponse
// @Router /api/newsletter/subscribe [post]
func (h *APIHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req models.NewsletterSubscription
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	err := h.submissions.Subscribe(r.Context(), &req)
	var verr *services.ValidationError
	switch {
	case err == nil:
		h.respondJSON(w, http.StatusOK, messageResponse{Success: true, Message: msgSubscribed})
	case errors.As(err, &verr):
		h.respondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrDuplicateSubscriber):
		h.respondError(w, http.StatusBadRequest, msgAlreadySubscribed)
	default:
		h.respondError(w, http.StatusInternalServerError, msgTryAgain)
	}
}

// Enroll handles POST /api/course/enroll
// @Summary Enroll in a course
// @Description Store a course enrollment request. Retries may carry an Idempotency-Key header.
// @Tags courses
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Key identifying retries of the same enrollment"
// @Param request body models.CourseEnrollment true "Enrollment"
// @Success 200 {object} handlers.messageResponse
// @Failure 400 {object} handlers.messageResponse
// @Failure 409 {object} handlers.messageResponse
// @Failure 422 {object} handlers.messageResponse
// @Failure 500 {object} handlers.messageResponse
// @Router /api/course/enroll [post]
func (h *APIHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req models.CourseEnrollment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := h.submissions.Enroll(r.Context(), &req); err != nil {
		h.respondError(w, http.StatusInternalServerError, msgTryAgain)
		return
	}

	h.respondJSON(w, http.StatusOK, messageResponse{Success: true, Message: msgEnrolled})
}

// SubmitPartnership handles POST /api/partnership-application
// @Summary Submit a partnership application
// @Description Validate and store a partnership application. The body carries the application fields and the cf-turnstile-response token.
// @Tags partnerships
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Key identifying retries of the same application"
// @Param request body object true "Application fields"
// @Success 200 {object} handlers.partnershipResponse
// @Failure 400 {object} handlers.partnershipFailure
// @Failure 403 {object} handlers.messageResponse
// @Failure 409 {object} handlers.messageResponse
// @Failure 422 {object} handlers.messageResponse
// @Failure 500 {object} handlers.partnershipFailure
// @Router /api/partnership-application [post]
func (h *APIHandler) SubmitPartnership(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || len(raw) == 0 {
		h.respondJSON(w, http.StatusBadRequest, partnershipFailure{Message: msgInvalidBody, Errors: map[string]string{}})
		return
	}

	ref, err := h.partnerships.Submit(r.Context(), raw, middleware.ClientIP(r))
	var verr *services.ValidationError
	switch {
	case err == nil:
		h.respondJSON(w, http.StatusOK, partnershipResponse{Success: true, ReferenceNumber: ref, Message: msgApplicationSent})
	case errors.As(err, &verr):
		h.respondJSON(w, http.StatusBadRequest, partnershipFailure{Message: verr.Message, Errors: verr.Fields})
	default:
		h.respondJSON(w, http.StatusInternalServerError, partnershipFailure{Message: msgUnexpected, Errors: map[string]string{}})
	}
}

// ListBlogs handles GET /api/blogs
// @Summary List blog posts
// @Description Get every published blog post, newest first
// @Tags blog
// @Produce json
// @Success 200 {object} handlers.blogsResponse
// @Failure 500 {object} handlers.messageResponse
// @Router /api/blogs [get]
func (h *APIHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blogs.ListPublished(r.Context(), 0)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, msgBlogsUnavailable)
		return
	}
	if posts == nil {
		posts = []models.BlogPost{}
	}

	h.respondJSON(w, http.StatusOK, blogsResponse{Success: true, Posts: posts})
}

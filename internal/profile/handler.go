package profile

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mentorhub/mentorhub/internal/contact"
	"github.com/mentorhub/mentorhub/internal/httputil"
	"github.com/mentorhub/mentorhub/internal/logging"
	"github.com/mentorhub/mentorhub/internal/session"
)

// Handler exposes the mentor directory. All routes assume the session gate
// already ran.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// RegisterRoutes mounts the mentor directory endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListMentors)
	r.Get("/search", h.SearchMentors)
	r.Get("/{mentorID}", h.GetMentor)
	r.Get("/{mentorID}/photo", h.GetMentorPhoto)
	r.Get("/{mentorID}/contact", h.GetMentorContact)
}

type mentorListResponse struct {
	Mentors []*Mentor `json:"mentors"`
	Count   int       `json:"count"`
}

type mentorContactResponse struct {
	Mentor   mentorContactSummary `json:"mentor"`
	Email    contact.Template     `json:"email"`
	Whatsapp string               `json:"whatsappMessage"`
	Links    contact.Links        `json:"links"`
}

type mentorContactSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
}

// ListMentors godoc
// @Summary List mentors
// @Description Returns every mentor profile, photo bytes excluded
// @Tags mentors
// @Produce json
// @Success 200 {object} mentorListResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Router /api/mentors [get]
func (h *Handler) ListMentors(w http.ResponseWriter, r *http.Request) {
	mentors, err := h.repo.ListMentors(r.Context())
	if err != nil {
		h.logger.Error("failed to list mentors", "error", err)
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, mentorListResponse{Mentors: mentors, Count: len(mentors)}, http.StatusOK)
}

// SearchMentors godoc
// @Summary Search mentors
// @Description Matches the query against names, description, languages, technologies and domains
// @Tags mentors
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} mentorListResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Router /api/mentors/search [get]
func (h *Handler) SearchMentors(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.ListMentors(w, r)
		return
	}

	mentors, err := h.repo.SearchMentors(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to search mentors", "query", query, "error", err)
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, mentorListResponse{Mentors: mentors, Count: len(mentors)}, http.StatusOK)
}

// GetMentor godoc
// @Summary Get one mentor
// @Tags mentors
// @Produce json
// @Param mentorID path string true "Mentor ID"
// @Success 200 {object} Mentor
// @Failure 404 {object} httputil.ErrorResponse
// @Router /api/mentors/{mentorID} [get]
func (h *Handler) GetMentor(w http.ResponseWriter, r *http.Request) {
	mentor, ok := h.mentorFromPath(w, r)
	if !ok {
		return
	}

	httputil.RespondJSON(w, mentor, http.StatusOK)
}

// GetMentorPhoto godoc
// @Summary Get a mentor's profile photo
// @Tags mentors
// @Produce image/jpeg
// @Param mentorID path string true "Mentor ID"
// @Success 200 {string} binary
// @Failure 404 {object} httputil.ErrorResponse
// @Router /api/mentors/{mentorID}/photo [get]
func (h *Handler) GetMentorPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "mentorID"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "mentor not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	photo, err := h.repo.GetMentorPhoto(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "photo not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get mentor photo", "mentor_id", id, "error", err)
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", photo.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(photo.Data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(photo.Data); err != nil {
		h.logger.Warn("failed to write photo response", "mentor_id", id, "error", err)
	}
}

// GetMentorContact godoc
// @Summary Get pre-filled contact links for a mentor
// @Description Builds Gmail and WhatsApp links personalized with the caller's name
// @Tags mentors
// @Produce json
// @Param mentorID path string true "Mentor ID"
// @Success 200 {object} mentorContactResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Router /api/mentors/{mentorID}/contact [get]
func (h *Handler) GetMentorContact(w http.ResponseWriter, r *http.Request) {
	mentor, ok := h.mentorFromPath(w, r)
	if !ok {
		return
	}

	menteeName := "a mentee"
	if p, found := session.PrincipalFromContext(r.Context()); found {
		menteeName = strings.TrimSpace(fmt.Sprintf("%s %s", p.FirstName, p.LastName))
	}

	links, err := contact.BuildLinks(mentor.FirstName, mentor.Email, mentor.PhoneNumber, menteeName)
	if err != nil {
		if errors.Is(err, contact.ErrInvalidPhoneNumber) {
			httputil.RespondErrorWithCode(w, "mentor has no valid phone number", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to build contact links", "mentor_id", mentor.ID, "error", err)
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	mail := contact.EmailTemplate(mentor.FirstName, menteeName)
	httputil.RespondJSON(w, mentorContactResponse{
		Mentor: mentorContactSummary{
			ID:        mentor.ID,
			FirstName: mentor.FirstName,
			LastName:  mentor.LastName,
			Email:     mentor.Email,
		},
		Email:    mail,
		Whatsapp: contact.WhatsAppMessage(mentor.FirstName, menteeName),
		Links:    links,
	}, http.StatusOK)
}

func (h *Handler) mentorFromPath(w http.ResponseWriter, r *http.Request) (*Mentor, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "mentorID"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "mentor not found", httputil.CodeNotFound, http.StatusNotFound)
		return nil, false
	}

	mentor, err := h.repo.GetMentorByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "mentor not found", httputil.CodeNotFound, http.StatusNotFound)
			return nil, false
		}
		h.logger.Error("failed to get mentor", "mentor_id", id, "error", err)
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return nil, false
	}

	return mentor, true
}

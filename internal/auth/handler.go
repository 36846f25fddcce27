package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/mentorhub/mentorhub/internal/httputil"
	"github.com/mentorhub/mentorhub/internal/logging"
	"github.com/mentorhub/mentorhub/internal/profile"
	"github.com/mentorhub/mentorhub/internal/ratelimit"
	"github.com/mentorhub/mentorhub/internal/session"
	"github.com/mentorhub/mentorhub/internal/user"
)

// maxRegisterFormSize bounds the multipart registration form (photo included).
const maxRegisterFormSize = 8 << 20

// Handler exposes the auth lifecycle over HTTP.
type Handler struct {
	service      *Service
	sessions     *session.Store
	limiter      *ratelimit.Limiter
	logger       *logging.Logger
	isProduction bool
}

func NewHandler(service *Service, sessions *session.Store, limiter *ratelimit.Limiter, logger *logging.Logger, isProduction bool) *Handler {
	return &Handler{
		service:      service,
		sessions:     sessions,
		limiter:      limiter,
		logger:       logger,
		isProduction: isProduction,
	}
}

// RegisterRoutes mounts the auth endpoints on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register-mentor", h.RegisterMentor)
	r.Post("/register-mentee", h.RegisterMentee)
	r.Post("/verify-email", h.VerifyEmail)
	r.Post("/resend-verification", h.ResendVerification)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)
}

// userPayload is the account shape every auth response uses.
type userPayload struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	UserType        user.Role `json:"userType"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
}

func newUserPayload(u *user.User, firstName, lastName string) userPayload {
	return userPayload{
		ID:              u.ID.String(),
		Email:           u.Email,
		UserType:        u.Role,
		IsEmailVerified: u.EmailVerified,
		FirstName:       firstName,
		LastName:        lastName,
	}
}

type registerResponse struct {
	Message   string          `json:"message"`
	User      userPayload     `json:"user"`
	Mentor    profile.Profile `json:"mentor,omitempty"`
	Mentee    profile.Profile `json:"mentee,omitempty"`
	EmailSent bool            `json:"emailSent"`
	NextStep  string          `json:"nextStep"`
}

type verifyResponse struct {
	Message      string          `json:"message"`
	User         userPayload     `json:"user"`
	Profile      profile.Profile `json:"profile"`
	AutoLoggedIn bool            `json:"autoLoggedIn"`
}

type loginResponse struct {
	Message string          `json:"message"`
	User    userPayload     `json:"user"`
	Profile profile.Profile `json:"profile"`
}

type notVerifiedResponse struct {
	Error             string `json:"error"`
	Code              string `json:"code"`
	NeedsVerification bool   `json:"needsVerification"`
	Email             string `json:"email"`
}

type sessionInfo struct {
	UserType user.Role `json:"userType"`
}

type meResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          userPayload     `json:"user"`
	Profile       profile.Profile `json:"profile"`
	Session       sessionInfo     `json:"session"`
}

// RegisterMentor godoc
// @Summary Register a new mentor
// @Description Creates an unverified mentor account with profile and photo, sends a verification email and starts a session
// @Tags auth
// @Accept mpfd
// @Produce json
// @Success 201 {object} registerResponse
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 429 {object} httputil.ErrorResponse
// @Router /api/auth/register-mentor [post]
func (h *Handler) RegisterMentor(w http.ResponseWriter, r *http.Request) {
	if h.ipLimited(w, r, "register") {
		return
	}

	if err := r.ParseMultipartForm(maxRegisterFormSize); err != nil {
		httputil.RespondErrorWithCode(w, "invalid multipart form", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	req := RegisterMentorRequest{
		Email:                r.FormValue("email"),
		Password:             r.FormValue("password"),
		FirstName:            r.FormValue("firstName"),
		LastName:             r.FormValue("lastName"),
		PhoneNumber:          r.FormValue("phoneNumber"),
		LinkedinURL:          r.FormValue("linkedinUrl"),
		ProgrammingLanguages: splitFormList(r.FormValue("programmingLanguages")),
		Technologies:         splitFormList(r.FormValue("technologies")),
		Domains:              splitFormList(r.FormValue("domains")),
		GeneralDescription:   r.FormValue("generalDescription"),
	}
	if raw := r.FormValue("yearsOfExperience"); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondValidationErrors(w, []httputil.FieldError{
				{Field: "yearsOfExperience", Message: "must be a number"},
			})
			return
		}
		req.YearsOfExperience = years
	}

	if err := req.Validate(); err != nil {
		respondValidation(w, err)
		return
	}

	photo, err := readPhoto(r)
	if err != nil {
		respondAuthError(w, h.logger, err)
		return
	}

	result, err := h.service.RegisterMentor(r.Context(), RegisterMentorInput{
		Email:                req.Email,
		Password:             req.Password,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		PhoneNumber:          req.PhoneNumber,
		LinkedinURL:          req.LinkedinURL,
		ProgrammingLanguages: req.ProgrammingLanguages,
		Technologies:         req.Technologies,
		Domains:              req.Domains,
		YearsOfExperience:    req.YearsOfExperience,
		GeneralDescription:   req.GeneralDescription,
		Photo:                photo,
	}, session.NewContext(h.sessions, w, r, h.isProduction))
	if err != nil {
		respondAuthError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, registerResponse{
		Message:   "Registration successful. Please check your email to verify your account.",
		User:      newUserPayload(result.User, req.FirstName, req.LastName),
		Mentor:    result.Profile,
		EmailSent: result.EmailSent,
		NextStep:  "verify-email",
	}, http.StatusCreated)
}

// RegisterMentee godoc
// @Summary Register a new mentee
// @Description Creates an unverified mentee account, sends a verification email and starts a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterMenteeRequest true "Mentee registration"
// @Success 201 {object} registerResponse
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 429 {object} httputil.ErrorResponse
// @Router /api/auth/register-mentee [post]
func (h *Handler) RegisterMentee(w http.ResponseWriter, r *http.Request) {
	if h.ipLimited(w, r, "register") {
		return
	}

	var req RegisterMenteeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondValidation(w, err)
		return
	}

	result, err := h.service.RegisterMentee(r.Context(), RegisterMenteeInput{
		Email:              req.Email,
		Password:           req.Password,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		PhoneNumber:        req.PhoneNumber,
		GeneralDescription: req.GeneralDescription,
	}, session.NewContext(h.sessions, w, r, h.isProduction))
	if err != nil {
		respondAuthError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, registerResponse{
		Message:   "Registration successful. Please check your email to verify your account.",
		User:      newUserPayload(result.User, req.FirstName, req.LastName),
		Mentee:    result.Profile,
		EmailSent: result.EmailSent,
		NextStep:  "verify-email",
	}, http.StatusCreated)
}

// VerifyEmail godoc
// @Summary Verify an email address
// @Description Consumes a one-time verification token and logs the user in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyEmailRequest true "Verification token"
// @Success 200 {object} verifyResponse
// @Failure 400 {object} httputil.ErrorResponse
// @Router /api/auth/verify-email [post]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondErrorWithCode(w, "verification token is required", httputil.CodeVerificationTokenRequired, http.StatusBadRequest)
		return
	}

	result, err := h.service.VerifyEmail(r.Context(), req.Token, session.NewContext(h.sessions, w, r, h.isProduction))
	if err != nil {
		respondAuthError(w, h.logger, err)
		return
	}

	firstName, lastName := result.Profile.DisplayName()
	httputil.RespondJSON(w, verifyResponse{
		Message:      "Email verified successfully. You are now logged in.",
		User:         newUserPayload(result.User, firstName, lastName),
		Profile:      result.Profile,
		AutoLoggedIn: true,
	}, http.StatusOK)
}

// ResendVerification godoc
// @Summary Resend the verification email
// @Description Invalidates the pending token and emails a fresh verification link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResendVerificationRequest true "Account email"
// @Success 200 {object} map[string]any
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 429 {object} httputil.ErrorResponse
// @Router /api/auth/resend-verification [post]
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	if h.ipLimited(w, r, "resend") {
		return
	}

	var req ResendVerificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondValidation(w, err)
		return
	}

	if cooling, err := h.limiter.CheckEmailCooldown(r.Context(), req.Email); err != nil {
		h.logger.Warn("email cooldown check failed", "error", err)
	} else if cooling {
		httputil.RespondErrorWithCode(w, "a verification email was sent recently, please wait before retrying", httputil.CodeCooldownActive, http.StatusTooManyRequests)
		return
	}

	emailSent, err := h.service.ResendVerification(r.Context(), req.Email)
	if err != nil {
		respondAuthError(w, h.logger, err)
		return
	}

	if err := h.limiter.SetEmailCooldown(r.Context(), req.Email); err != nil {
		h.logger.Warn("failed to set email cooldown", "error", err)
	}

	httputil.RespondJSON(w, map[string]any{
		"message":   "Verification email sent. Please check your inbox.",
		"emailSent": emailSent,
	}, http.StatusOK)
}

// Login godoc
// @Summary Log in
// @Description Authenticates by email and password and starts a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 429 {object} httputil.ErrorResponse
// @Router /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.ipLimited(w, r, "login") {
		return
	}

	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondValidation(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password, session.NewContext(h.sessions, w, r, h.isProduction))
	if err != nil {
		respondAuthError(w, h.logger, err)
		return
	}

	firstName, lastName := result.Profile.DisplayName()
	httputil.RespondJSON(w, loginResponse{
		Message: "Login successful.",
		User:    newUserPayload(result.User, firstName, lastName),
		Profile: result.Profile,
	}, http.StatusOK)
}

// Logout godoc
// @Summary Log out
// @Description Destroys the current session
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} httputil.ErrorResponse
// @Router /api/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	email, err := h.service.Logout(r.Context(), session.NewContext(h.sessions, w, r, h.isProduction))
	if err != nil {
		respondAuthError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, map[string]any{
		"message": "Logged out successfully.",
		"user":    email,
	}, http.StatusOK)
}

// Me godoc
// @Summary Current session
// @Description Reports the authenticated account backing the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} meResponse
// @Failure 401 {object} map[string]any
// @Router /api/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := h.service.WhoAmI(r.Context(), session.NewContext(h.sessions, w, r, h.isProduction))
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			httputil.RespondJSON(w, map[string]any{"authenticated": false}, http.StatusUnauthorized)
			return
		}
		respondAuthError(w, h.logger, err)
		return
	}

	firstName, lastName := identity.Profile.DisplayName()
	httputil.RespondJSON(w, meResponse{
		Authenticated: true,
		User:          newUserPayload(identity.User, firstName, lastName),
		Profile:       identity.Profile,
		Session:       sessionInfo{UserType: identity.Principal.Role},
	}, http.StatusOK)
}

// ipLimited applies the fixed-window IP limit for a purpose. Limiter failures
// are logged and treated as not limited.
func (h *Handler) ipLimited(w http.ResponseWriter, r *http.Request, purpose string) bool {
	ip := getClientIP(r)

	limited, err := h.limiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		h.logger.Warn("rate limit check failed", "purpose", purpose, "error", err)
		return false
	}
	if limited {
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}

	if err := h.limiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		h.logger.Warn("failed to record rate limit hit", "purpose", purpose, "error", err)
	}
	return false
}

// respondAuthError maps lifecycle errors onto the wire taxonomy.
func respondAuthError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var notVerified *NotVerifiedError

	switch {
	case errors.Is(err, user.ErrDuplicateEmail):
		httputil.RespondErrorWithCode(w, "an account with this email already exists", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
	case errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrInvalidEmailFormat),
		errors.Is(err, ErrPasswordRequired),
		errors.Is(err, ErrPasswordTooShort):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
	case errors.Is(err, profile.ErrPhotoRequired):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePhotoRequired, http.StatusBadRequest)
	case errors.Is(err, profile.ErrPhotoTooLarge):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePhotoTooLarge, http.StatusBadRequest)
	case errors.Is(err, profile.ErrUnsupportedPhotoType):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeUnsupportedPhotoType, http.StatusBadRequest)
	case errors.As(err, &notVerified):
		httputil.RespondJSON(w, notVerifiedResponse{
			Error:             ErrEmailNotVerified.Error(),
			Code:              httputil.CodeEmailNotVerified,
			NeedsVerification: true,
			Email:             notVerified.Email,
		}, http.StatusUnauthorized)
	case errors.Is(err, ErrInvalidCredentials):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidCredentials, http.StatusUnauthorized)
	case errors.Is(err, ErrInvalidOrExpiredToken):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidVerificationToken, http.StatusBadRequest)
	case errors.Is(err, ErrNotFoundOrAlreadyVerified):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeResendNotPossible, http.StatusBadRequest)
	case errors.Is(err, ErrNotAuthenticated):
		httputil.RespondErrorWithCode(w, ErrNotAuthenticated.Error(), httputil.CodeNotAuthenticated, http.StatusBadRequest)
	default:
		logger.Error("auth request failed", "error", err)
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

// respondValidation converts ozzo validation errors into the field-error array.
func respondValidation(w http.ResponseWriter, err error) {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	fields := make([]string, 0, len(verrs))
	for field := range verrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]httputil.FieldError, 0, len(verrs))
	for _, field := range fields {
		out = append(out, httputil.FieldError{Field: field, Message: verrs[field].Error()})
	}
	httputil.RespondValidationErrors(w, out)
}

// decodeJSON reads the request body into dst, responding on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return false
	}
	return true
}

// readPhoto extracts and validates the profile photo part.
func readPhoto(r *http.Request) (profile.Photo, error) {
	file, header, err := r.FormFile("photo")
	if err != nil {
		return profile.Photo{}, profile.ErrPhotoRequired
	}
	defer file.Close()

	if header.Size > profile.MaxPhotoSize {
		return profile.Photo{}, profile.ErrPhotoTooLarge
	}

	data := make([]byte, 0, header.Size)
	buf := make([]byte, 32*1024)
	for {
		n, rerr := file.Read(buf)
		data = append(data, buf[:n]...)
		if rerr != nil {
			break
		}
		if int64(len(data)) > profile.MaxPhotoSize {
			return profile.Photo{}, profile.ErrPhotoTooLarge
		}
	}

	photo := profile.Photo{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		FileName:    header.Filename,
	}
	if err := photo.Validate(); err != nil {
		return profile.Photo{}, err
	}
	return photo, nil
}

// splitFormList parses a comma-separated multipart field into a clean slice.
func splitFormList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getClientIP resolves the caller address behind proxies.
func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

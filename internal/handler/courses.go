package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/course-registration/internal/auth"
	"github.com/sakif/course-registration/internal/model"
)

// Registrar is the part of service.RegistrationService the HTTP layer uses.
type Registrar interface {
	Register(ctx context.Context, userID string, selections []model.SelectionInput) (*model.Registration, error)
	GetRegistration(ctx context.Context, userID string) (*model.Registration, error)
	Catalog(ctx context.Context) (*model.Catalog, error)
}

// CoursesHandler serves the catalog and course registrations.
//
//	GET  /api/courses/data                   → HandleData
//	POST /api/courses/register               → HandleRegister        (auth required)
//	GET  /api/courses/registration/{userId}  → HandleGetRegistration (auth required)
type CoursesHandler struct {
	registrations Registrar
	logger        *slog.Logger
}

// NewCoursesHandler creates a CoursesHandler.
func NewCoursesHandler(registrations Registrar, logger *slog.Logger) *CoursesHandler {
	return &CoursesHandler{
		registrations: registrations,
		logger:        logger,
	}
}

// registerCoursesRequest uses pointers and a nil-able slice so a missing
// field can be told apart from a zero value.
type registerCoursesRequest struct {
	UserID           *string            `json:"userId"`
	CourseSelections []selectionRequest `json:"courseSelections"`
}

// selectionRequest accepts the full Selection shape clients echo back from
// the catalog. The display names are decoded but never used; the service
// takes them from the catalog.
type selectionRequest struct {
	CourseID     string `json:"courseId"`
	CourseName   string `json:"courseName"`
	LecturerID   *int64 `json:"lecturerId"`
	LecturerName string `json:"lecturerName"`
}

// selections converts the body to service input. It reports false when a
// required field is absent. An empty list is present, and is left for the
// validator to reject.
func (req *registerCoursesRequest) selections() ([]model.SelectionInput, bool) {
	if req.CourseSelections == nil {
		return nil, false
	}
	out := make([]model.SelectionInput, 0, len(req.CourseSelections))
	for _, s := range req.CourseSelections {
		if s.CourseID == "" || s.LecturerID == nil {
			return nil, false
		}
		out = append(out, model.SelectionInput{CourseID: s.CourseID, LecturerID: *s.LecturerID})
	}
	return out, true
}

// RegistrationResponse wraps a registration with an optional acknowledgement.
type RegistrationResponse struct {
	Message      string              `json:"message,omitempty"`
	Registration *model.Registration `json:"registration"`
}

// HandleData returns every course and lecturer.
//
// HTTP: GET /api/courses/data
func (h *CoursesHandler) HandleData(w http.ResponseWriter, r *http.Request) {
	cat, err := h.registrations.Catalog(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// HandleRegister saves the caller's course selections, replacing any
// previous registration.
//
// HTTP: POST /api/courses/register
// Auth: Required
// REQUEST BODY: {"userId"?: "...", "courseSelections": [{"courseId": "CS101", "lecturerId": 1}]}
func (h *CoursesHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	var req registerCoursesRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		h.logger.Debug("invalid course registration body", slog.String("error", err.Error()))
		writeBadRequest(w, invalidRequestData)
		return
	}
	selections, ok := req.selections()
	if !ok {
		writeBadRequest(w, invalidRequestData)
		return
	}

	if req.UserID != nil && *req.UserID != userID {
		h.logger.Warn("course registration for another user refused",
			slog.String("userID", userID),
			slog.String("target", *req.UserID),
		)
		writeForbidden(w, "You can only register courses for your own account")
		return
	}

	reg, err := h.registrations.Register(r.Context(), userID, selections)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegistrationResponse{
		Message:      "Course registration saved successfully",
		Registration: reg,
	})
}

// HandleGetRegistration returns a saved registration. Users may only read
// their own.
//
// HTTP: GET /api/courses/registration/{userId}
// Auth: Required
func (h *CoursesHandler) HandleGetRegistration(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	userID := chi.URLParam(r, "userId")
	if userID != callerID {
		writeForbidden(w, "You can only view your own registration")
		return
	}

	reg, err := h.registrations.GetRegistration(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, RegistrationResponse{Registration: reg})
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusForbidden, ErrorResponse{
		Error:   "forbidden",
		Message: message,
	})
}

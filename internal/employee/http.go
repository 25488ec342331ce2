package employee

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"employee-service/internal/httputil"
	"employee-service/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies; larger bodies fail to decode.
const maxBodyBytes = 1 << 20

type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/employees", func(r chi.Router) {
		r.Get("/", h.ListEmployees)
		r.Post("/", h.CreateEmployee)
		r.Get("/{id}", h.GetEmployee)
		r.Put("/{id}", h.UpdateEmployee)
		r.Patch("/{id}", h.PartialUpdateEmployee)
		r.Delete("/{id}", h.DeleteEmployee)
	})
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "fetching all employees")

	employees, err := h.service.ListEmployees(r.Context())
	if err != nil {
		h.handleServiceError(w, r, OpList, err)
		return
	}

	h.metrics.Employees.RecordListViewed(r.Context())

	if len(employees) == 0 {
		httputil.RespondWithJSON(w, profiles[OpList].status, MessageResponse{Message: MsgNoEmployees})
		return
	}
	httputil.RespondWithJSON(w, profiles[OpList].status, employees)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.handleServiceError(w, r, OpRetrieve, ErrEmployeeNotFound)
		return
	}

	h.logger.InfoContext(r.Context(), "fetching employee by ID", "id", id)
	employee, err := h.service.GetEmployee(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, OpRetrieve, err)
		return
	}

	h.metrics.Employees.RecordViewed(r.Context())

	httputil.RespondWithJSON(w, profiles[OpRetrieve].status, employee)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	in, err := DecodeInput(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.handleServiceError(w, r, OpCreate, err)
		return
	}

	h.logger.InfoContext(r.Context(), "creating employee")
	employee, err := h.service.CreateEmployee(r.Context(), in)
	if err != nil {
		h.handleServiceError(w, r, OpCreate, err)
		return
	}

	h.respond(w, OpCreate, employee)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, OpUpdate)
}

func (h *Handler) PartialUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, OpPartialUpdate)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, op Operation) {
	id, ok := parseID(r)
	if !ok {
		h.handleServiceError(w, r, op, ErrEmployeeNotFound)
		return
	}

	in, err := DecodeInput(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.handleServiceError(w, r, op, err)
		return
	}

	h.logger.InfoContext(r.Context(), "updating employee", "id", id, "operation", op.String())
	employee, err := h.service.UpdateEmployee(r.Context(), id, in, profiles[op].partial)
	if err != nil {
		h.handleServiceError(w, r, op, err)
		return
	}

	h.respond(w, op, employee)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.handleServiceError(w, r, OpDelete, ErrEmployeeNotFound)
		return
	}

	h.logger.InfoContext(r.Context(), "deleting employee", "id", id)
	if err := h.service.DeleteEmployee(r.Context(), id); err != nil {
		h.handleServiceError(w, r, OpDelete, err)
		return
	}

	h.respond(w, OpDelete, nil)
}

func (h *Handler) respond(w http.ResponseWriter, op Operation, employee *Employee) {
	res := profiles[op].result(employee)
	httputil.RespondWithJSON(w, res.Status, res.Body)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, op Operation, err error) {
	ctx := r.Context()

	var verr *ValidationError
	if errors.As(err, &verr) {
		h.logger.InfoContext(ctx, "validation failed", "operation", op.String(), "fields", len(verr.Fields))
		httputil.RespondWithJSON(w, http.StatusBadRequest, verr.Fields)
		return
	}
	if errors.Is(err, ErrEmployeeNotFound) {
		h.logger.InfoContext(ctx, "employee not found", "operation", op.String())
		httputil.RespondWithDetail(w, http.StatusNotFound, MsgNotFound)
		return
	}
	if errors.Is(err, ErrMalformedBody) {
		h.logger.InfoContext(ctx, "malformed request body", "operation", op.String(), "error", err)
		httputil.RespondWithDetail(w, http.StatusBadRequest, MsgParseError)
		return
	}
	h.logger.ErrorContext(ctx, "internal error", "operation", op.String(), "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}

// parseID reads the {id} path parameter. Anything that is not a positive
// integer can never match a record.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

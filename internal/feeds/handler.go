package feeds

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reliefgrid/reliefgrid/internal/platform/httpx"
)

// Handler exposes the ingested disaster events. The listing is public: the
// console shows nearby hazards to everyone, including anonymous visitors.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers event routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != "" && kind != KindEarthquake && kind != KindFire {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown event kind")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.service.Recent(r.Context(), kind, limit)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("list events", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if events == nil {
		events = []Event{}
	}
	httpx.JSON(w, http.StatusOK, events)
}

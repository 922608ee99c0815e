// Package towns exposes the town registry over HTTP with gin.
package towns

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"towncore/internal/core"
	"towncore/pkg/domain"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// IDsResponse carries an ordered list of town ids.
type IDsResponse struct {
	IDs []domain.TownID `json:"ids"`
}

// ExtremaResponse carries the nearest and farthest towns from the origin.
type ExtremaResponse struct {
	Min domain.TownID `json:"min"`
	Max domain.TownID `json:"max"`
}

// TaxResponse carries the retained tax of a town.
type TaxResponse struct {
	ID  domain.TownID `json:"id"`
	Tax int           `json:"tax"`
}

// RegisterRequest is the body of POST /towns. An omitted id is generated.
type RegisterRequest struct {
	ID   domain.TownID `json:"id"`
	Name string        `json:"name" binding:"required"`
	X    int           `json:"x"`
	Y    int           `json:"y"`
	Tax  int           `json:"tax"`
}

// RenameRequest is the body of PATCH /towns/:id.
type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

// LinkRequest is the body of POST /vassalships.
type LinkRequest struct {
	Vassal domain.TownID `json:"vassal" binding:"required"`
	Master domain.TownID `json:"master" binding:"required"`
}

// Handlers serves registry operations.
type Handlers struct {
	svc    *core.Service
	logger *slog.Logger
}

// NewHandlers wraps svc. A nil logger falls back to slog.Default.
func NewHandlers(svc *core.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{svc: svc, logger: logger}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidLink), errors.Is(err, domain.ErrInvalidTown), errors.Is(err, domain.ErrOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	h.logger.Warn("invalid request", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func (h *Handlers) ids(c *gin.Context, ids []domain.TownID, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	if ids == nil {
		ids = []domain.TownID{}
	}
	c.JSON(http.StatusOK, IDsResponse{IDs: ids})
}

// HandleList handles GET /towns. ?name= finds towns by exact name;
// ?order=distance orders by distance from the origin, otherwise by name.
func (h *Handlers) HandleList(c *gin.Context) {
	ctx := c.Request.Context()
	if name, ok := c.GetQuery("name"); ok {
		ids, err := h.svc.FindByName(ctx, name)
		h.ids(c, ids, err)
		return
	}
	switch c.DefaultQuery("order", "name") {
	case "name":
		ids, err := h.svc.AllByName(ctx)
		h.ids(c, ids, err)
	case "distance":
		ids, err := h.svc.AllByDistance(ctx)
		h.ids(c, ids, err)
	case "none":
		ids, err := h.svc.AllTowns(ctx)
		h.ids(c, ids, err)
	default:
		h.badRequest(c, "order must be name, distance or none", nil)
	}
}

// HandleRegister handles POST /towns.
func (h *Handlers) HandleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}
	town, err := h.svc.Register(c.Request.Context(), req.ID, req.Name, req.X, req.Y, req.Tax)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, town)
}

// HandleGet handles GET /towns/:id.
func (h *Handlers) HandleGet(c *gin.Context) {
	town, err := h.svc.Town(c.Request.Context(), domain.TownID(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, town)
}

// HandleRename handles PATCH /towns/:id.
func (h *Handlers) HandleRename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}
	town, err := h.svc.Rename(c.Request.Context(), domain.TownID(c.Param("id")), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, town)
}

// HandleRemove handles DELETE /towns/:id.
func (h *Handlers) HandleRemove(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), domain.TownID(c.Param("id"))); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleAncestorPath handles GET /towns/:id/path.
func (h *Handlers) HandleAncestorPath(c *gin.Context) {
	ids, err := h.svc.AncestorPath(c.Request.Context(), domain.TownID(c.Param("id")))
	h.ids(c, ids, err)
}

// HandleDeepest handles GET /towns/:id/deepest.
func (h *Handlers) HandleDeepest(c *gin.Context) {
	ids, err := h.svc.DeepestDescendantPath(c.Request.Context(), domain.TownID(c.Param("id")))
	h.ids(c, ids, err)
}

// HandleVassals handles GET /towns/:id/vassals.
func (h *Handlers) HandleVassals(c *gin.Context) {
	ids, err := h.svc.Vassals(c.Request.Context(), domain.TownID(c.Param("id")))
	h.ids(c, ids, err)
}

// HandleTax handles GET /towns/:id/tax.
func (h *Handlers) HandleTax(c *gin.Context) {
	id := domain.TownID(c.Param("id"))
	tax, err := h.svc.RetainedTax(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, TaxResponse{ID: id, Tax: tax})
}

// HandleExtrema handles GET /towns/extrema.
func (h *Handlers) HandleExtrema(c *gin.Context) {
	ctx := c.Request.Context()
	minID, err := h.svc.MinDistance(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	maxID, err := h.svc.MaxDistance(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ExtremaResponse{Min: minID, Max: maxID})
}

// HandleNth handles GET /towns/nth/:n, where n is 1-based.
func (h *Handlers) HandleNth(c *gin.Context) {
	n, err := strconv.ParseUint(c.Param("n"), 10, 0)
	if err != nil {
		h.badRequest(c, "n must be a non-negative integer", err)
		return
	}
	id, err := h.svc.NthDistance(c.Request.Context(), uint(n))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, IDsResponse{IDs: []domain.TownID{id}})
}

// HandleNear handles GET /towns/near?x=&y=.
func (h *Handlers) HandleNear(c *gin.Context) {
	x, errX := strconv.Atoi(c.Query("x"))
	y, errY := strconv.Atoi(c.Query("y"))
	if err := errors.Join(errX, errY); err != nil {
		h.badRequest(c, "x and y must be integers", err)
		return
	}
	ids, err := h.svc.DistanceFromPoint(c.Request.Context(), x, y)
	h.ids(c, ids, err)
}

// HandleLink handles POST /vassalships.
func (h *Handlers) HandleLink(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}
	if err := h.svc.Link(c.Request.Context(), req.Vassal, req.Master); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// HandleStats handles GET /stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

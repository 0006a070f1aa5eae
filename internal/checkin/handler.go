package checkin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/events", h.ListEvents)
	r.POST("/events", h.CreateEvent)
	r.GET("/events/:event_id", h.GetEvent)
	r.DELETE("/events/:event_id", h.DeleteEvent)

	// スキャン入力の受け口。1リクエスト＝1検知トークン。
	r.POST("/events/:event_id/checkins", h.CheckIn)

	r.POST("/events/:event_id/participants", h.AddParticipant)
	r.PUT("/events/:event_id/participants/:participant_id/presence", h.TogglePresence)
	r.GET("/events/:event_id/metrics", h.Metrics)
}

// ---------- handlers ----------

func (h *Handler) ListEvents(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListEvents(c.Request.Context()))
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrDTO(ErrInvalid("invalid json or missing required fields")))
		return
	}
	res, err := h.svc.CreateEvent(c.Request.Context(), req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), newErrDTO(err))
		return
	}
	c.Header("Location", "/events/"+res.EventID)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetEvent(c *gin.Context) {
	status, err := ParseStatus(c.Query("status"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), newErrDTO(err))
		return
	}
	f := Filter{Query: c.Query("q"), Status: status}

	res, err := h.svc.GetEvent(c.Request.Context(), c.Param("event_id"), f)
	if err != nil {
		c.JSON(ToHTTPStatus(err), newErrDTO(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	if err := h.svc.DeleteEvent(c.Request.Context(), c.Param("event_id")); err != nil {
		c.JSON(ToHTTPStatus(err), newErrDTO(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckIn: 結果に応じてステータスを変える。
//   - success         → 201
//   - already_present → 200（状態は変えていない）
//   - unrecognized    → 404（本文に結果を載せる。エラーDTOではない）
func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrDTO(ErrInvalid("token is required")))
		return
	}
	res, err := h.svc.CheckIn(c.Request.Context(), c.Param("event_id"), req.Token)
	if err != nil {
		c.JSON(ToHTTPStatus(err), newErrDTO(err))
		return
	}
	switch res.Result {
	case ResultSuccess:
		c.JSON(http.StatusCreated, res)
	case ResultAlreadyPresent:
		c.JSON(http.StatusOK, res)
	default:
		c.JSON(http.StatusNotFound, res)
	}
}

func (h *Handler) AddParticipant(c *gin.Context) {
	var req AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrDTO(ErrInvalid("invalid json")))
		return
	}
	res, err := h.svc.AddManualParticipant(c.Request.Context(), c.Param("event_id"), req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), newErrDTO(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) TogglePresence(c *gin.Context) {
	res, err := h.svc.TogglePresence(c.Request.Context(), c.Param("event_id"), c.Param("participant_id"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), newErrDTO(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Metrics(c *gin.Context) {
	res, err := h.svc.Metrics(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), newErrDTO(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ===== helpers =====

type errDTO struct {
	Error *APIError `json:"error"`
}

func newErrDTO(err error) errDTO {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return errDTO{Error: apiErr}
	}
	return errDTO{Error: ErrInternal(err.Error())}
}

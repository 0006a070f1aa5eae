package roster

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitout3/emargement-qr-app/internal/checkin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// multipart form: file, name, date
	r.POST("/events/import", h.Import)
	r.GET("/events/:event_id/export", h.Export)
}

// ---------- handlers ----------

func (h *Handler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, newErrDTO(checkin.ErrInvalid("file is required")))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, newErrDTO(checkin.ErrInvalid("unable to open uploaded file")))
		return
	}
	defer file.Close()

	res, err := h.svc.Import(c.Request.Context(), file, c.PostForm("name"), c.PostForm("date"))
	if err != nil {
		c.JSON(checkin.ToHTTPStatus(err), newErrDTO(err))
		return
	}
	c.Header("Location", "/events/"+res.EventID)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Export(c *gin.Context) {
	filename, data, err := h.svc.Export(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		c.JSON(checkin.ToHTTPStatus(err), newErrDTO(err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ===== helpers =====

type errDTO struct {
	Error *checkin.APIError `json:"error"`
}

func newErrDTO(err error) errDTO {
	var apiErr *checkin.APIError
	if errors.As(err, &apiErr) {
		return errDTO{Error: apiErr}
	}
	return errDTO{Error: checkin.ErrInternal(err.Error())}
}

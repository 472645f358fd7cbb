package status

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/carson-networks/pointlog/internal/logging"
)

type statusResponse struct {
	Status string `json:"status"`
}

type Handler struct{}

func NewHandler() Handler {
	return Handler{}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	render.Status(req, http.StatusOK)
	render.JSON(w, req, statusResponse{Status: "ok"})
	return nil
}

package http

import (
	"net/http"

	"github.com/hrlite/hr-backend-go/internal/domain/errorlog"
	"github.com/hrlite/hr-backend-go/internal/handler/http/response"
)

type AdminHandler interface {
	ListErrors(w http.ResponseWriter, r *http.Request)
}

type adminHandlerImpl struct {
	errorLogService errorlog.Service
}

func NewAdminHandler(errorLogService errorlog.Service) AdminHandler {
	return &adminHandlerImpl{errorLogService: errorLogService}
}

// ListErrors returns the newest error records of the caller's tenant.
func (h *adminHandlerImpl) ListErrors(w http.ResponseWriter, r *http.Request) {
	records, err := h.errorLogService.ListRecent(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

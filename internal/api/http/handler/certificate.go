package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/model"
)

// Certificate issues certificates to the authenticated user.
type Certificate struct {
	certificateService CertificateService
	contextManager     model.ContextManager
	logger             *logger.Logger
}

func NewCertificate(certificateService CertificateService, contextManager model.ContextManager, logger *logger.Logger) *Certificate {
	return &Certificate{
		certificateService: certificateService,
		contextManager:     contextManager,
		logger:             logger,
	}
}

func (h *Certificate) Issue(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.contextManager.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	var achievement model.Achievement
	if err := decode(w, r, &achievement); err != nil {
		handleError(w, err)
		return
	}

	cert, err := h.certificateService.Issue(r.Context(), identity.Name, achievement)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, cert)
}

func (h *Certificate) Get(w http.ResponseWriter, r *http.Request) {
	cert, err := h.certificateService.Get(r.Context(), mux.Vars(r)["hash"])
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

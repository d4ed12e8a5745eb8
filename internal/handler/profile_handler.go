package handler

import (
	"github.com/gin-gonic/gin"

	"surveydq/internal/domain"
	"surveydq/internal/service"
)

// ProfileHandler exposes the active survey profile.
type ProfileHandler struct {
	svc service.ValidationService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc service.ValidationService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Get handles GET /api/v1/profile
// @Summary Get the survey profile
// @Tags profile
// @Produce json
// @Success 200 {object} APIResponse{data=profile.Profile}
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	RespondOK(c, h.svc.Profile())
}

// IssueKinds handles GET /api/v1/issue-kinds
func (h *ProfileHandler) IssueKinds(c *gin.Context) {
	out := make([]gin.H, len(domain.AllIssueKinds))
	for i, k := range domain.AllIssueKinds {
		out[i] = gin.H{"kind": k, "label": k.Label()}
	}
	RespondOK(c, out)
}

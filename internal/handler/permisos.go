package handler

import (
	"net/http"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/service"

	"github.com/gin-gonic/gin"
)

type PermisosHandler struct{ svc service.PermisoService }

func NewPermisosHandler(svc service.PermisoService) *PermisosHandler {
	return &PermisosHandler{svc: svc}
}

func (h *PermisosHandler) Roles(c *gin.Context) {
	roles, err := h.svc.Roles(c.Request.Context(), actor(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": roles})
}

func (h *PermisosHandler) PorRol(c *gin.Context) {
	resp, err := h.svc.PermisosDeRol(c.Request.Context(), actor(c), c.Param("rol"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Guardar godoc
// @Summary Concede o revoca permisos directos de un rol
// @Tags permisos
// @Accept json
// @Produce json
// @Param rol path string true "Rol"
// @Param body body dto.GuardarPermisosRequest true "Cambios"
// @Success 200 {object} dto.PermisosRolResponse
// @Router /v1/permisos/{rol} [put]
func (h *PermisosHandler) Guardar(c *gin.Context) {
	var req dto.GuardarPermisosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Guardar(c.Request.Context(), actor(c), c.Param("rol"), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

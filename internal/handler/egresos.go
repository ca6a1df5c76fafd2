package handler

import (
	"net/http"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EgresosHandler struct{ svc service.EgresoService }

func NewEgresosHandler(svc service.EgresoService) *EgresosHandler { return &EgresosHandler{svc: svc} }

func (h *EgresosHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarEgresoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), actor(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *EgresosHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), actor(c), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EgresosHandler) Listar(c *gin.Context) {
	var f dto.RangoFilter
	if !bindQuery(c, &f) {
		return
	}
	var (
		resp *dto.EgresoListResponse
		err  error
	)
	if f.SesionCajaID != "" {
		resp, err = h.svc.ListarPorSesion(c.Request.Context(), uuid.MustParse(f.SesionCajaID))
	} else {
		resp, err = h.svc.ListarPorRango(c.Request.Context(), f.Desde, f.Hasta)
	}
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EgresosHandler) Totales(c *gin.Context) {
	var f dto.RangoFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Totales(c.Request.Context(), f.Desde, f.Hasta)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"por_tipo": resp})
}

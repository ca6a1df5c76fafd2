package handler

import (
	"net/http"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientesHandler struct{ svc service.ClienteService }

func NewClientesHandler(svc service.ClienteService) *ClientesHandler {
	return &ClientesHandler{svc: svc}
}

func (h *ClientesHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarClienteRequest
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

// Listar godoc
// @Summary Clientes activos, filtrables por DNI, nombre o alias
// @Tags clientes
// @Produce json
// @Param q query string false "Texto a buscar"
// @Router /v1/clientes [get]
func (h *ClientesHandler) Listar(c *gin.Context) {
	var f dto.ClienteFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), actor(c), f.Buscar)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *ClientesHandler) ObtenerPorDNI(c *gin.Context) {
	resp, err := h.svc.ObtenerPorDNI(c.Request.Context(), actor(c), c.Param("dni"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), actor(c), c.Param("dni"), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) Desactivar(c *gin.Context) {
	if err := h.svc.Desactivar(c.Request.Context(), actor(c), c.Param("dni")); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

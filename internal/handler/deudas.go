package handler

import (
	"net/http"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/service"

	"github.com/gin-gonic/gin"
)

type DeudasHandler struct{ svc service.DeudaService }

func NewDeudasHandler(svc service.DeudaService) *DeudasHandler { return &DeudasHandler{svc: svc} }

func (h *DeudasHandler) Crear(c *gin.Context) {
	var req dto.CrearDeudaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearDeuda(c.Request.Context(), actor(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Pagar godoc
// @Summary Registra un pago parcial o total de una deuda
// @Tags deudas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de deuda"
// @Param body body dto.PagarDeudaRequest true "Pago"
// @Success 201 {object} dto.PagoDeudaResponse
// @Failure 409 {object} apierror.APIError "OVER_PAYMENT"
// @Router /v1/deudas/{id}/pagos [post]
func (h *DeudasHandler) Pagar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.PagarDeudaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.PagarDeuda(c.Request.Context(), actor(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DeudasHandler) Pendientes(c *gin.Context) {
	resp, err := h.svc.Pendientes(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *DeudasHandler) Historial(c *gin.Context) {
	resp, err := h.svc.Historial(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

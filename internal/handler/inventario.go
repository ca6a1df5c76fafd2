package handler

import (
	"net/http"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/service"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// AplicarMovimiento godoc
// @Summary Ingreso o ajuste manual de stock
// @Tags inventario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimientoStockRequest true "Movimiento"
// @Success 201 {object} dto.MovimientoStockResponse
// @Failure 409 {object} apierror.APIError "INSUFFICIENT_STOCK"
// @Router /v1/inventario/movimientos [post]
func (h *InventarioHandler) AplicarMovimiento(c *gin.Context) {
	var req dto.MovimientoStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AplicarMovimiento(c.Request.Context(), actor(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoStockFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) Alertas(c *gin.Context) {
	resp, err := h.svc.Alertas(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

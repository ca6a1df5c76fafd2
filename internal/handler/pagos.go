package handler

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/machelox/Proyecto-Cyberia/internal/apierror"
	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/service"
	"github.com/machelox/Proyecto-Cyberia/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NotifySecretHeader carries the secret shared with the wallet notifier.
const NotifySecretHeader = "X-Notify-Secret"

// EncoladorPagos queues wallet notifications for the pago_digital worker.
type EncoladorPagos interface {
	EnqueuePagoDigital(ctx context.Context, payload worker.PagoDigitalJobPayload) error
}

type PagosHandler struct {
	svc       service.PagoService
	encolador EncoladorPagos
	secreto   string
}

func NewPagosHandler(svc service.PagoService, encolador EncoladorPagos, secreto string) *PagosHandler {
	return &PagosHandler{svc: svc, encolador: encolador, secreto: secreto}
}

func (h *PagosHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarPagoRequest
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

func (h *PagosHandler) Eliminar(c *gin.Context) {
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

// Listar filters by sesion_caja_id when given, otherwise by date range.
func (h *PagosHandler) Listar(c *gin.Context) {
	var f dto.RangoFilter
	if !bindQuery(c, &f) {
		return
	}
	var (
		resp *dto.PagoManualListResponse
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

func (h *PagosHandler) Totales(c *gin.Context) {
	var f dto.RangoFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Totales(c.Request.Context(), f.Desde, f.Hasta)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"por_metodo": resp})
}

// Notificacion godoc
// @Summary Recibe una notificacion Yape/Plin del reenviador
// @Description Encola el pago; se registra como automatico en la sesion abierta.
// @Tags pagos
// @Accept json
// @Produce json
// @Param X-Notify-Secret header string true "Secreto compartido"
// @Param body body dto.NotificacionPagoRequest true "Notificacion"
// @Success 202
// @Failure 401 {object} apierror.APIError
// @Router /v1/pagos/notificaciones [post]
func (h *PagosHandler) Notificacion(c *gin.Context) {
	recibido := c.GetHeader(NotifySecretHeader)
	if h.secreto == "" || subtle.ConstantTimeCompare([]byte(recibido), []byte(h.secreto)) != 1 {
		c.JSON(http.StatusUnauthorized, apierror.New(apierror.CodeUnauthorized, "Secreto de notificacion invalido"))
		return
	}
	var req dto.NotificacionPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if h.encolador == nil {
		c.JSON(http.StatusServiceUnavailable, apierror.New(apierror.CodeInternal, "Cola de notificaciones no disponible"))
		return
	}
	if err := h.encolador.EnqueuePagoDigital(c.Request.Context(), req); err != nil {
		responderError(c, err)
		return
	}
	log.Info().Str("metodo", req.Metodo).Str("codigo", req.Codigo).Msg("notificación de pago encolada")
	c.Status(http.StatusAccepted)
}

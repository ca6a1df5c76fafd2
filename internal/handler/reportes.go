package handler

import (
	"net/http"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

func (h *ReportesHandler) ProductosPorSesion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ProductosPorSesion(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *ReportesHandler) FlujoDinero(c *gin.Context) {
	var f dto.RangoFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.FlujoDinero(c.Request.Context(), f.Desde, f.Hasta)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) Rentabilidad(c *gin.Context) {
	var f dto.RangoFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Rentabilidad(c.Request.Context(), f.Desde, f.Hasta)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) MetricasBI(c *gin.Context) {
	var f dto.RangoFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.MetricasBI(c.Request.Context(), f.Desde, f.Hasta)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) Dashboard(c *gin.Context) {
	var f dto.RangoFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Dashboard(c.Request.Context(), f.Desde, f.Hasta)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

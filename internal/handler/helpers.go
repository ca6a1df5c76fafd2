package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/machelox/Proyecto-Cyberia/internal/apierror"
	"github.com/machelox/Proyecto-Cyberia/internal/middleware"
	"github.com/machelox/Proyecto-Cyberia/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeInvalidInput, "JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeInvalidInput, "Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeInvalidInput, err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramID parses a uuid path parameter, writing a 400 when it is malformed.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeInvalidInput, "ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

func paginacion(c *gin.Context, def, max int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > max {
		limit = def
	}
	return page, limit
}

// actor builds the service actor from the JWT claims set by middleware.JWTAuth.
func actor(c *gin.Context) service.Actor {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return service.Actor{}
	}
	id, _ := uuid.Parse(claims.UserID)
	return service.Actor{ID: id, Email: claims.Email, Rol: claims.Rol}
}

var statusPorKind = map[service.ErrorKind]int{
	service.KindInvalidInput:           http.StatusUnprocessableEntity,
	service.KindSessionClosed:          http.StatusConflict,
	service.KindSessionAlreadyOpen:     http.StatusConflict,
	service.KindInsufficientStock:      http.StatusConflict,
	service.KindOverPayment:            http.StatusConflict,
	service.KindInvalidStateTransition: http.StatusConflict,
	service.KindConcurrencyConflict:    http.StatusConflict,
	service.KindNotFound:               http.StatusNotFound,
	service.KindForbidden:              http.StatusForbidden,
	service.KindUnauthorized:           http.StatusUnauthorized,
}

// responderError writes the error envelope for err. Domain errors keep their
// kind as code; anything else is logged and reported as a generic 500.
func responderError(c *gin.Context, err error) {
	var de *service.Error
	if errors.As(err, &de) {
		status, ok := statusPorKind[de.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		c.JSON(status, &apierror.APIError{Code: string(de.Kind), Detail: de.Msg, SKU: de.SKU})
		return
	}
	log.Error().
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.FullPath()).
		Err(err).
		Msg("error interno")
	c.JSON(http.StatusInternalServerError, apierror.New(apierror.CodeInternal, "Error interno del servidor"))
}

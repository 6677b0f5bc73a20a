package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/model"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

// Context keys shared with the middleware package.
const (
	ContextActorID   = "actor_id"
	ContextRequestID = "request_id"
)

// Actor returns the id of the caller set by the actor middleware, or the
// system actor.
func Actor(c *gin.Context) string {
	return model.Actor(c.GetString(ContextActorID))
}

// Bind decodes the JSON body into req. On failure it writes a 400 response
// and returns false.
func Bind(c *gin.Context, req interface{}) bool {
	return bindFailed(c, c.ShouldBindJSON(req), "invalid request body")
}

// BindURI is Bind for path parameters tagged with `uri`.
func BindURI(c *gin.Context, req interface{}) bool {
	return bindFailed(c, c.ShouldBindUri(req), "invalid path")
}

func bindFailed(c *gin.Context, err error, message string) bool {
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		detail := ErrorDetail{Code: int(apperrors.ErrBadRequest)}
		for _, fe := range verrs {
			detail.Fields = append(detail.Fields, FieldError{Field: fe.Field(), Message: validationMessage(fe)})
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, &Response{
			Status:  "error",
			Message: "validation failed",
			Data:    detail,
		})
		return false
	}
	Error(c, apperrors.NewBadRequest(message, err))
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "invalid email format"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "max":
		return "must satisfy " + fe.Tag() + "=" + fe.Param()
	case "weekid":
		return "must be an ISO week such as 2024-W3"
	default:
		return fe.Error()
	}
}

// Error records err on the context and writes the matching response.
// Errors that are not AppErrors become 500s without leaking details.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)

	appErr, ok := apperrors.As(err)
	if !ok {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
		return
	}

	status := appErr.HTTPStatus()
	message := appErr.Message
	if status == http.StatusInternalServerError && appErr.Code == apperrors.ErrInternal {
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, &Response{
		Status:  "error",
		Message: message,
		Data: ErrorDetail{
			Code:         int(appErr.Code),
			Resource:     appErr.Resource,
			ID:           appErr.ID,
			Step:         appErr.Step,
			Inconsistent: appErr.Inconsistent,
		},
	})
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(data))
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, NewSuccessResponse(data))
}

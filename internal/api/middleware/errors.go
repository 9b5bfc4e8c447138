package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"homznspace/backend/internal/apperr"
)

// RespondError writes err as {"code", "error", "msg", "details"} and aborts the chain.
// msg repeats error for clients that read response.data.msg.
// Untyped errors are reported as INTERNAL without leaking their text.
func RespondError(c *gin.Context, err error) {
	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Wrap(apperr.CodeInternal, err, "unexpected error")
	}
	meta := apperr.MetadataFor(typed.Code())

	if meta.HTTPStatus >= 500 {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("code", string(typed.Code())).Msg("request failed")
		_ = c.Error(err)
	}

	message := typed.Message()
	if meta.HideMessage || message == "" {
		message = meta.PublicMessage
	}
	body := gin.H{"code": typed.Code(), "error": message, "msg": message}
	if meta.DetailsAllowed && typed.Details() != nil {
		body["details"] = typed.Details()
	}
	c.AbortWithStatusJSON(meta.HTTPStatus, body)
}

package server

import (
	"errors"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/wjs2063/tripgraph/internal/workflow"
)

// Error codes of the JSON error envelope.
const (
	CodeBadRequest = 40
	CodeNotFound   = 44
	CodeInternal   = 99
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

var errInternal = ErrorBody{Message: "Internal Server Error", Code: CodeInternal}

func badRequest(c *app.RequestContext, message string) {
	c.AbortWithStatusJSON(consts.StatusBadRequest, ErrorBody{Message: message, Code: CodeBadRequest})
}

// fail maps err to a response. Caller mistakes become 400 with their
// message; everything else is logged and answered with a bare 500.
func fail(c *app.RequestContext, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, workflow.ErrUnknownWorkflow),
		errors.Is(err, workflow.ErrEmptyInput),
		errors.Is(err, workflow.ErrInvalidMaxSteps):
		badRequest(c, err.Error())
	case errors.Is(err, workflow.ErrAuditDisabled):
		c.AbortWithStatusJSON(consts.StatusNotFound, ErrorBody{Message: err.Error(), Code: CodeNotFound})
	default:
		logger.Error("request failed", slog.String("error", err.Error()))
		c.AbortWithStatusJSON(consts.StatusInternalServerError, errInternal)
	}
}

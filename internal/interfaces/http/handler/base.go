package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/shared"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/logger"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/dto"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID set by the RequestID middleware
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total, page, pageSize int, hasMore bool) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize, hasMore))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	code = dto.NormalizeErrorCode(code)
	c.Set(middleware.ErrorCodeKey, code)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	code = dto.NormalizeErrorCode(code)
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, message string, details []dto.ValidationDetail) {
	c.Set(middleware.ErrorCodeKey, dto.ErrCodeValidation)
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(message, getRequestID(c), details))
}

// HandleBindError converts a request binding failure to a 400/413 response
func (h *BaseHandler) HandleBindError(c *gin.Context, err error) {
	var (
		validationErrs validator.ValidationErrors
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
		tooLarge       *http.MaxBytesError
	)
	switch {
	case errors.As(err, &validationErrs):
		middleware.HandleValidationError(c, err)
	case errors.As(err, &tooLarge):
		h.ErrorWithCode(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	case errors.Is(err, io.EOF):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is required")
	default:
		h.BadRequest(c, err.Error())
	}
}

// HandleError maps service errors to HTTP responses. Order matters: an unknown
// booking outcome also matches ErrNetwork.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var (
		validationErr *excursion.ValidationError
		configErr     *excursion.ConfigurationError
		upstreamErr   *excursion.UpstreamError
		domainErr     *shared.DomainError
	)

	switch {
	case errors.As(err, &validationErr):
		details := make([]dto.ValidationDetail, 0, len(validationErr.Fields))
		for _, f := range validationErr.Fields {
			details = append(details, dto.ValidationDetail{Field: f, Message: validationErr.Message})
		}
		h.ValidationError(c, validationErr.Message, details)

	case errors.Is(err, excursion.ErrDuplicateSubmission):
		h.ErrorWithCode(c, dto.ErrCodeDuplicateSubmission,
			"This cart was already submitted; check its status before booking again")

	case errors.Is(err, excursion.ErrBookingOutcomeUnknown):
		h.logFailure(c, err)
		h.ErrorWithCode(c, dto.ErrCodeBookingOutcomeUnknown,
			"The booking outcome is unknown; check the cart status before resubmitting")

	case errors.Is(err, excursion.ErrNotFound):
		h.NotFound(c, "Resource not found")

	case errors.As(err, &configErr):
		h.logFailure(c, err)
		h.ErrorWithCode(c, dto.ErrCodeSupplyNotConfigured, "Excursion supply is not configured")

	case errors.As(err, &upstreamErr):
		h.logFailure(c, err)
		switch {
		case upstreamErr.IsNotEntitled():
			msg := "The supply account is not entitled to this operation"
			if upstreamErr.Message() != "" {
				msg += ". " + upstreamMessage(upstreamErr)
			}
			h.ErrorWithCode(c, dto.ErrCodeNotEntitled, msg)
		case upstreamErr.Status == http.StatusTooManyRequests:
			h.ErrorWithCode(c, dto.ErrCodeUpstreamRateLimited, "The supply API is throttling requests; retry later")
		default:
			h.ErrorWithCode(c, dto.ErrCodeUpstream, upstreamMessage(upstreamErr))
		}

	case errors.Is(err, excursion.ErrRequestNotSent):
		h.logFailure(c, err)
		h.ErrorWithCode(c, dto.ErrCodeUpstreamUnavailable, "The supply API request was not sent; retry later")

	case errors.Is(err, excursion.ErrNetwork):
		h.logFailure(c, err)
		h.ErrorWithCode(c, dto.ErrCodeUpstreamUnavailable, "The supply API could not be reached")

	case errors.As(err, &domainErr):
		h.ErrorWithCode(c, domainErr.Code, domainErr.Message)

	default:
		h.logFailure(c, err)
		h.InternalError(c, "An unexpected error occurred")
	}
}

func upstreamMessage(e *excursion.UpstreamError) string {
	if msg := e.Message(); msg != "" {
		return "Supply API error: " + msg
	}
	return "Supply API error"
}

func (h *BaseHandler) logFailure(c *gin.Context, err error) {
	logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
}

// internal/common/errors/handler.go
package errors

// Logger is the subset of logger.Logger the handler needs.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns any failure at a component boundary into a tagged
// StandardError and logs it once.
type ErrorHandler struct {
	logger Logger
}

var warnCategories = map[string]bool{
	"PLATFORM":   true,
	"LOCATION":   true,
	"NETWORK":    true,
	"VALIDATION": true,
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Resolve normalizes err and logs it. Outcomes the user or device can
// cause (permission, location, connectivity, bad input) log at warn, the
// rest at error.
func (h *ErrorHandler) Resolve(operation string, err error) *StandardError {
	if err == nil {
		return nil
	}
	stdErr := Normalize(err)

	fields := map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}

	if h.logger != nil {
		if warnCategories[GetErrorCategory(stdErr.Code)] {
			h.logger.Warn("operation failed", fields)
		} else {
			h.logger.Error("operation failed", fields)
		}
	}
	return stdErr
}

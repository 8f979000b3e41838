package validator

import (
	"errors"
	"strings"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/timeframe"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// TimeframeTag is the struct tag checked by Timeframe
const TimeframeTag = "timeframe"

// Timeframe returns the check behind the `timeframe` binding tag. In strict mode
// only the supported keys pass; otherwise any non-blank value passes and the
// limiter applies its fallback limit.
func Timeframe(strict bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := strings.TrimSpace(fl.Field().String())
		if value == "" {
			return false
		}
		if !strict {
			return true
		}
		return timeframe.IsKnown(value)
	}
}

// Register installs the custom tags on gin's validator engine
func Register(strictTimeframes bool) error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return engine.RegisterValidation(TimeframeTag, Timeframe(strictTimeframes))
}

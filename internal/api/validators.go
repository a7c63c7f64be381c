package api

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/andrevf/planday/internal/recur"
)

var validatorsOnce sync.Once

// registerValidators installs the custom binding validators on gin's
// shared validator engine.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("15:04", fl.Field().String())
			return err == nil
		})
		v.RegisterValidation("weekdaylist", func(fl validator.FieldLevel) bool {
			_, err := recur.ParseDays(fl.Field().String())
			return err == nil
		})
	})
}

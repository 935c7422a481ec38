// Package validation configura go-playground/validator para los comandos y DTOs de la aplicación.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain"
)

// New registra decimal.Decimal como float64 para poder usar gt/gte/lte en montos,
// y usa el nombre json del campo en los errores.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Error convierte validator.ValidationErrors en el primer domain.ValidationError.
func Error(err error, prefix string) error {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return domain.NewValidationError(prefix, err.Error())
	}
	fe := ves[0]
	field := fe.Field()
	if prefix != "" {
		field = prefix + "." + field
	}
	reason := fe.Tag()
	if fe.Param() != "" {
		reason += "=" + fe.Param()
	}
	return domain.NewValidationError(field, reason)
}

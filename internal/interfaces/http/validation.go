package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validator valida los DTO de entrada según sus tags `validate`.
type Validator struct {
	v *validator.Validate
}

// NewValidator registra la regla objectid, usa el nombre JSON en los mensajes y permite
// comparar decimal.Decimal con gte/lte.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return &Validator{v: v}
}

// Struct valida s; devuelve *ValidationError con un mensaje por campo.
func (v *Validator) Struct(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field()+": "+fieldMessage(fe))
	}
	return newValidationError(fields...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "objectid":
		return "debe ser un id válido (24 caracteres hexadecimales)"
	case "oneof":
		return "debe ser uno de: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "debe ser mayor o igual a " + fe.Param()
	case "lte":
		return "debe ser menor o igual a " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("debe tener al menos %s caracteres", fe.Param())
		}
		return "debe ser mayor o igual a " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("debe tener como máximo %s caracteres", fe.Param())
		}
		return "debe ser menor o igual a " + fe.Param()
	case "nefield":
		return "debe ser distinto de " + snakeCase(fe.Param())
	default:
		return "no es válido (" + fe.Tag() + ")"
	}
}

// snakeCase FromLocationID -> from_location_id.
func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// parseBody decodifica el JSON del cuerpo y lo valida.
func parseBody(c *fiber.Ctx, v *Validator, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cuerpo inválido: se espera JSON con los tipos correctos")
	}
	return v.Struct(out)
}

// idParam lee un parámetro de ruta que debe ser un ObjectID hexadecimal.
func idParam(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if !primitive.IsValidObjectID(id) {
		return "", newValidationError(name + ": debe ser un id válido (24 caracteres hexadecimales)")
	}
	return id, nil
}

package dto

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Reportar los campos con su nombre JSON.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidationError errores de entrada por campo. errors.Is(err, domain.ErrInvalidInput) es true.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "datos inválidos: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == domain.ErrInvalidInput }

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// positive exige una cantidad mayor que cero.
func (e *ValidationError) positive(field string, v decimal.Decimal) {
	if !v.IsPositive() {
		e.add(field, "debe ser mayor que cero")
	}
	e.scaled(field, &v)
}

// nonNegative exige una cantidad opcional mayor o igual a cero.
func (e *ValidationError) nonNegative(field string, v *decimal.Decimal) {
	if v != nil && v.IsNegative() {
		e.add(field, "no puede ser negativo")
	}
	e.scaled(field, v)
}

// scaled rechaza cantidades con más decimales de los que se almacenan.
func (e *ValidationError) scaled(field string, v *decimal.Decimal) {
	if v != nil && !domain.FitsQuantityScale(*v) {
		e.add(field, fmt.Sprintf("máximo %d decimales", domain.QuantityScale))
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// check aplica las etiquetas validate del struct y devuelve el acumulador de errores.
func check(v any) *ValidationError {
	out := &ValidationError{}
	err := validate.Struct(v)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.add("body", err.Error())
		return out
	}
	for _, fe := range verrs {
		out.add(fieldPath(fe), message(fe))
	}
	return out
}

// fieldPath quita del namespace el tipo raíz y los structs embebidos:
// "AddIngredientRequest.IngredientInput.material_id" -> "material_id".
func fieldPath(fe validator.FieldError) string {
	segs := strings.Split(fe.Namespace(), ".")
	kept := segs[:0]
	for _, s := range segs {
		if s != "" && unicode.IsUpper(rune(s[0])) {
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		return fe.Field()
	}
	return strings.Join(kept, ".")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", fe.Param())
	case "max":
		return fmt.Sprintf("máximo %s", fe.Param())
	case "min":
		return fmt.Sprintf("mínimo %s", fe.Param())
	case "uuid":
		return "debe ser un UUID"
	default:
		return fmt.Sprintf("no cumple %s", fe.Tag())
	}
}

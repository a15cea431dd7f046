package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperror "financetracker/internal/errors"
)

// Validator encapsula o go-playground/validator com as regras da API:
// nomes de campo seguem a tag json, decimal.Decimal é validado como número
// e a tag "notblank" rejeita strings só com espaços.
type Validator struct {
	v *validator.Validate
}

// New cria o Validator com as regras registradas.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// O registro só falha com tag vazia ou função nula.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("money", validateMoney)
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})

	return &Validator{v: v}
}

// Validate valida a struct e agrega todas as violações em um único ValidationError.
func (val *Validator) Validate(i interface{}) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperror.NewInternalError("falha ao validar payload", err)
	}

	fields := make(map[string][]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
	}
	return apperror.NewFieldValidationError(fields)
}

// fieldMessage converte a falha de um campo em texto legível.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "é obrigatório"
	case "notblank":
		return "não pode estar em branco"
	case "email":
		return "deve ser um email válido"
	case "min":
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("deve ter no mínimo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser maior ou igual a %s", fe.Param())
	case "max":
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("deve ter no máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser menor ou igual a %s", fe.Param())
	case "gte":
		return fmt.Sprintf("deve ser maior ou igual a %s", fe.Param())
	case "gt":
		return fmt.Sprintf("deve ser maior que %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("deve ser um de: %s", fe.Param())
	case "money":
		return fmt.Sprintf("deve ter no máximo %d dígitos inteiros e %d casas decimais", moneyIntDigits, moneyScale)
	case "maxbytes":
		return fmt.Sprintf("deve ter no máximo %s bytes", fe.Param())
	default:
		return fmt.Sprintf("é inválido (%s)", fe.Tag())
	}
}

// Limites de NUMERIC(15,2).
const (
	moneyIntDigits = 13
	moneyScale     = 2
)

var moneyUpperBound = decimal.New(1, moneyIntDigits)

// validateMoney lê o decimal original da struct, já que o tipo customizado
// entrega às demais tags apenas uma cópia float64.
func validateMoney(fl validator.FieldLevel) bool {
	d, ok := originalDecimal(fl)
	if !ok {
		if fl.Field().Kind() != reflect.Float64 {
			return false
		}
		d = decimal.NewFromFloat(fl.Field().Float())
	}
	return d.Equal(d.Truncate(moneyScale)) && d.Abs().LessThan(moneyUpperBound)
}

func originalDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() != reflect.Struct {
		return decimal.Decimal{}, false
	}
	f := parent.FieldByName(fl.StructFieldName())
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return decimal.Decimal{}, false
		}
		f = f.Elem()
	}
	if !f.IsValid() || !f.CanInterface() {
		return decimal.Decimal{}, false
	}
	d, ok := f.Interface().(decimal.Decimal)
	return d, ok
}

func isLengthKind(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Slice || k == reflect.Map || k == reflect.Array
}

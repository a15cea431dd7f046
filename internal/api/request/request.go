package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	apperror "financetracker/internal/errors"
)

// maxBodyBytes limita o tamanho dos payloads aceitos.
const maxBodyBytes = 1 << 20

// DecodeJSON lê o corpo da requisição em dst. Corpo vazio, JSON malformado ou
// com tipos incompatíveis resultam em ValidationError.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperror.NewValidationError("O corpo da requisição não pode ser vazio.")
		case errors.As(err, &typeErr):
			return apperror.NewFieldValidationError(map[string][]string{
				typeErr.Field: {"tipo inválido"},
			})
		case errors.As(err, &maxErr):
			return apperror.NewValidationError("O corpo da requisição excede o tamanho máximo permitido.")
		default:
			return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
		}
	}
	return nil
}

// PathID lê o parâmetro de rota name como um ID positivo.
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewValidationError("ID inválido: " + raw)
	}
	return id, nil
}

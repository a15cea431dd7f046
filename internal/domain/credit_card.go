package domain

import "github.com/shopspring/decimal"

func init() {
	// Valores monetários trafegam como números JSON, não strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// CreditCard representa o cartão de crédito persistido. UserID é definido na criação e não muda.
type CreditCard struct {
	ID             int64
	Name           string
	CreditLimit    decimal.Decimal
	ClosingDay     int
	DueDay         int
	CurrentBalance decimal.Decimal
	UserID         int64
}

// CreditCardRequest representa o payload de criação de cartão.
// Campos numéricos são ponteiros para distinguir "ausente" de zero.
// @Description Payload de criação de cartão de crédito.
type CreditCardRequest struct {
	Name           string           `json:"name" validate:"required,notblank,max=50" example:"Visa"`
	CreditLimit    *decimal.Decimal `json:"creditLimit" validate:"required,gte=0,money" swaggertype:"number" example:"1000"`
	ClosingDay     *int             `json:"closingDay" validate:"required,min=1,max=31" example:"5"`
	DueDay         *int             `json:"dueDay" validate:"required,min=1,max=31" example:"15"`
	CurrentBalance *decimal.Decimal `json:"currentBalance" validate:"required,gte=0,money" swaggertype:"number" example:"0"`
	UserID         *int64           `json:"userId" validate:"required,gt=0" example:"1"`
}

// CreditCardUpdate representa o payload de atualização: nome, limite, fechamento e vencimento.
// @Description Payload de atualização de cartão de crédito.
type CreditCardUpdate struct {
	Name        string           `json:"name" validate:"required,notblank,max=50" example:"Visa Platinum"`
	CreditLimit *decimal.Decimal `json:"creditLimit" validate:"required,gte=0,money" swaggertype:"number" example:"2500.50"`
	ClosingDay  *int             `json:"closingDay" validate:"required,min=1,max=31" example:"10"`
	DueDay      *int             `json:"dueDay" validate:"required,min=1,max=31" example:"20"`
}

// CreditCardResponse é a representação pública do cartão; o dono aparece apenas como userId.
// @Description Cartão de crédito retornado pela API.
type CreditCardResponse struct {
	ID             int64           `json:"id" example:"1"`
	Name           string          `json:"name" example:"Visa"`
	CreditLimit    decimal.Decimal `json:"creditLimit" swaggertype:"number" example:"1000"`
	ClosingDay     int             `json:"closingDay" example:"5"`
	DueDay         int             `json:"dueDay" example:"15"`
	CurrentBalance decimal.Decimal `json:"currentBalance" swaggertype:"number" example:"0"`
	UserID         int64           `json:"userId" example:"1"`
}

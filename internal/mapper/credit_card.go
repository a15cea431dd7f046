package mapper

import (
	"github.com/shopspring/decimal"

	"financetracker/internal/domain"
)

// ToCreditCardEntity cria o cartão a partir do payload já validado. O dono é
// resolvido pelo serviço e informado separadamente.
func ToCreditCardEntity(req domain.CreditCardRequest, owner domain.User) domain.CreditCard {
	return domain.CreditCard{
		Name:           req.Name,
		CreditLimit:    derefDecimal(req.CreditLimit),
		ClosingDay:     derefInt(req.ClosingDay),
		DueDay:         derefInt(req.DueDay),
		CurrentBalance: derefDecimal(req.CurrentBalance),
		UserID:         owner.ID,
	}
}

// ToCreditCardResponse reduz o dono ao seu ID.
func ToCreditCardResponse(c domain.CreditCard) domain.CreditCardResponse {
	return domain.CreditCardResponse{
		ID:             c.ID,
		Name:           c.Name,
		CreditLimit:    c.CreditLimit,
		ClosingDay:     c.ClosingDay,
		DueDay:         c.DueDay,
		CurrentBalance: c.CurrentBalance,
		UserID:         c.UserID,
	}
}

// ToCreditCardResponses converte uma lista, devolvendo slice vazio (nunca nil).
func ToCreditCardResponses(cards []domain.CreditCard) []domain.CreditCardResponse {
	out := make([]domain.CreditCardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, ToCreditCardResponse(c))
	}
	return out
}

// ApplyCreditCardUpdate altera nome, limite, fechamento e vencimento.
// Saldo e dono permanecem intactos.
func ApplyCreditCardUpdate(c *domain.CreditCard, upd domain.CreditCardUpdate) {
	c.Name = upd.Name
	c.CreditLimit = derefDecimal(upd.CreditLimit)
	c.ClosingDay = derefInt(upd.ClosingDay)
	c.DueDay = derefInt(upd.DueDay)
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

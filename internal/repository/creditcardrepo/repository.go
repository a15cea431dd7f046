package creditcardrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"financetracker/internal/domain"
	apperror "financetracker/internal/errors"
	"financetracker/internal/pkg/database"
	"financetracker/internal/pkg/logger"
)

const selectCreditCards = `
        SELECT id, name, credit_limit, closing_day, due_day, current_balance, user_id
        FROM credit_cards`

// CreditCardRepository implementa o acesso a dados dos cartões de crédito.
type CreditCardRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewCreditCardRepository cria e retorna uma nova instância do repositório de cartões.
func NewCreditCardRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *CreditCardRepository {
	return &CreditCardRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCreditCard(s scanner) (domain.CreditCard, error) {
	var c domain.CreditCard
	err := s.Scan(&c.ID, &c.Name, &c.CreditLimit, &c.ClosingDay, &c.DueDay, &c.CurrentBalance, &c.UserID)
	return c, err
}

// FindAll devolve todos os cartões ordenados por ID.
func (r *CreditCardRepository) FindAll(ctx context.Context) ([]domain.CreditCard, error) {
	r.logger.Debug("Iniciando FindAll de cartões no repositório.", nil)

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := database.Executor(ctx, r.DB).QueryContext(ctxTimeout, selectCreditCards+` ORDER BY id`)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de cartões.", err)
		return nil, apperror.NewDBError("Falha ao buscar cartões", err)
	}
	defer rows.Close()

	cards := make([]domain.CreditCard, 0)
	for rows.Next() {
		card, err := scanCreditCard(rows)
		if err != nil {
			r.logger.Error("Falha ao ler linha de cartão.", err)
			return nil, apperror.NewDBError("Falha ao ler cartão", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Erro ao iterar cartões.", err)
		return nil, apperror.NewDBError("Falha ao iterar cartões", err)
	}

	r.logger.Info("Cartões listados.", map[string]interface{}{"count": len(cards)})
	return cards, nil
}

// FindByID busca um cartão pelo ID. Devolve nil, nil quando não existe.
func (r *CreditCardRepository) FindByID(ctx context.Context, id int64) (*domain.CreditCard, error) {
	r.logger.Debug("Iniciando FindByID de cartão no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	card, err := scanCreditCard(database.Executor(ctx, r.DB).QueryRowContext(ctxTimeout, selectCreditCards+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug("Cartão não encontrado.", map[string]interface{}{"id": id})
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Falha ao buscar cartão no DB.", err)
		return nil, apperror.NewDBError("Falha ao buscar cartão", err)
	}

	r.logger.Info("Cartão encontrado.", map[string]interface{}{"id": id, "user_id": card.UserID})
	return &card, nil
}

// CountByUserID conta os cartões de um usuário.
func (r *CreditCardRepository) CountByUserID(ctx context.Context, userID int64) (int, error) {
	r.logger.Debug("Iniciando CountByUserID no repositório.", map[string]interface{}{"user_id": userID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var count int
	err := database.Executor(ctx, r.DB).QueryRowContext(ctxTimeout,
		`SELECT COUNT(*) FROM credit_cards WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		r.logger.Error("Falha ao contar cartões do usuário.", err)
		return 0, apperror.NewDBError("Falha ao contar cartões", err)
	}
	return count, nil
}

// Save insere o cartão quando ID == 0 (atribuindo o ID) ou atualiza os campos mutáveis.
// O dono (user_id) só é gravado na inserção.
func (r *CreditCardRepository) Save(ctx context.Context, card *domain.CreditCard) error {
	r.logger.Debug("Iniciando Save de cartão no repositório.", map[string]interface{}{"id": card.ID, "user_id": card.UserID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	exec := database.Executor(ctx, r.DB)

	// Os valores monetários voltam do banco para refletir o que foi gravado em NUMERIC(15,2).
	var err error
	if card.ID == 0 {
		err = exec.QueryRowContext(ctxTimeout, `
            INSERT INTO credit_cards (name, credit_limit, closing_day, due_day, current_balance, user_id)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, credit_limit, current_balance`,
			card.Name, card.CreditLimit, card.ClosingDay, card.DueDay, card.CurrentBalance, card.UserID,
		).Scan(&card.ID, &card.CreditLimit, &card.CurrentBalance)
	} else {
		err = exec.QueryRowContext(ctxTimeout, `
            UPDATE credit_cards
            SET name = $1, credit_limit = $2, closing_day = $3, due_day = $4, current_balance = $5
            WHERE id = $6
            RETURNING credit_limit, current_balance`,
			card.Name, card.CreditLimit, card.ClosingDay, card.DueDay, card.CurrentBalance, card.ID,
		).Scan(&card.CreditLimit, &card.CurrentBalance)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NewEntityNotFoundError("Cartão de crédito", card.ID)
		}
	}

	if err != nil {
		if database.IsForeignKeyViolation(err) {
			r.logger.Info("Cartão rejeitado: usuário inexistente.", map[string]interface{}{"user_id": card.UserID})
			return apperror.NewEntityNotFoundError("Usuário", card.UserID)
		}
		r.logger.Error("Falha ao salvar cartão no DB.", err)
		return apperror.NewDBError("Falha ao salvar cartão", err)
	}

	r.logger.Info("Cartão salvo com sucesso.", map[string]interface{}{"id": card.ID, "user_id": card.UserID})
	return nil
}

// Delete remove o cartão. Não faz nada se o ID não existir.
func (r *CreditCardRepository) Delete(ctx context.Context, id int64) error {
	r.logger.Debug("Iniciando Delete de cartão no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := database.Executor(ctx, r.DB).ExecContext(ctxTimeout, `DELETE FROM credit_cards WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao remover cartão no DB.", err)
		return apperror.NewDBError("Falha ao remover cartão", err)
	}

	n, _ := res.RowsAffected()
	r.logger.Info("Delete de cartão executado.", map[string]interface{}{"id": id, "rows": n})
	return nil
}

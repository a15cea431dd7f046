package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"financetracker/internal/domain"
	apperror "financetracker/internal/errors"
	"financetracker/internal/pkg/database"
	"financetracker/internal/pkg/logger"
)

// selectUsers carrega o usuário e seus papéis na mesma ida ao banco.
const selectUsers = `
        SELECT u.id, u.name, u.email, u.password_hash,
               COALESCE(array_agg(r.role ORDER BY r.role) FILTER (WHERE r.role IS NOT NULL), '{}') AS roles
        FROM users u
        LEFT JOIN user_roles r ON r.user_id = u.id`

// UserRepository persiste usuários e seus papéis no PostgreSQL.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// scanner é satisfeito por *sql.Row e *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner) (domain.User, error) {
	var (
		user  domain.User
		roles pq.StringArray
	)
	if err := s.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &roles); err != nil {
		return domain.User{}, err
	}
	user.Roles = domain.RolesFromNames(roles)
	return user, nil
}

// FindAll devolve todos os usuários ordenados por ID.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	r.logger.Debug("Iniciando FindAll de usuários no repositório.", nil)

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := database.Executor(ctx, r.DB).QueryContext(ctxTimeout, selectUsers+`
        GROUP BY u.id
        ORDER BY u.id`)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de usuários.", err)
		return nil, apperror.NewDBError("Falha ao buscar usuários", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.logger.Error("Falha ao ler linha de usuário.", err)
			return nil, apperror.NewDBError("Falha ao ler usuário", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Erro ao iterar usuários.", err)
		return nil, apperror.NewDBError("Falha ao iterar usuários", err)
	}

	r.logger.Info("Usuários listados.", map[string]interface{}{"count": len(users)})
	return users, nil
}

// FindByID busca um usuário pelo ID. Devolve nil, nil quando não existe.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	r.logger.Debug("Iniciando FindByID de usuário no repositório.", map[string]interface{}{"id": id})
	return r.findOne(ctx, selectUsers+`
        WHERE u.id = $1
        GROUP BY u.id`, id)
}

// FindByEmail busca um usuário pelo email. Devolve nil, nil quando não existe.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.logger.Debug("Iniciando FindByEmail de usuário no repositório.", map[string]interface{}{"email": email})
	return r.findOne(ctx, selectUsers+`
        WHERE u.email = $1
        GROUP BY u.id`, email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user, err := scanUser(database.Executor(ctx, r.DB).QueryRowContext(ctxTimeout, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug("Usuário não encontrado.", map[string]interface{}{"key": arg})
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário no DB.", err)
		return nil, apperror.NewDBError("Falha ao buscar usuário", err)
	}

	r.logger.Info("Usuário encontrado no repositório.", map[string]interface{}{"user_id": user.ID})
	return &user, nil
}

// Save insere o usuário quando ID == 0 (atribuindo o ID) ou atualiza o existente.
// Os papéis são regravados na mesma transação.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"id": user.ID, "email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	err := database.RunInTx(ctxTimeout, r.DB, func(txCtx context.Context) error {
		exec := database.Executor(txCtx, r.DB)

		if user.ID == 0 {
			if err := exec.QueryRowContext(txCtx,
				`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
				user.Name, user.Email, user.PasswordHash,
			).Scan(&user.ID); err != nil {
				return err
			}
		} else {
			res, err := exec.ExecContext(txCtx,
				`UPDATE users SET name = $1, email = $2, password_hash = $3 WHERE id = $4`,
				user.Name, user.Email, user.PasswordHash, user.ID,
			)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return apperror.NewEntityNotFoundError("Usuário", user.ID)
			}
		}

		user.Roles = domain.NormalizeRoles(user.Roles)
		if _, err := exec.ExecContext(txCtx, `DELETE FROM user_roles WHERE user_id = $1`, user.ID); err != nil {
			return err
		}
		if len(user.Roles) > 0 {
			if _, err := exec.ExecContext(txCtx,
				`INSERT INTO user_roles (user_id, role) SELECT $1, unnest($2::varchar[])`,
				user.ID, pq.Array(domain.RoleNames(user.Roles)),
			); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Info("Email duplicado rejeitado pela constraint.", map[string]interface{}{"email": user.Email})
			return apperror.NewConflictErrorWithCause(domain.MsgEmailInUse, err)
		}
		var appErr apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		r.logger.Error("Falha ao salvar usuário no DB.", err)
		return apperror.NewDBError("Falha ao salvar usuário", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID})
	return nil
}

// Delete remove o usuário (os papéis caem em cascata). Não faz nada se o ID não existir.
// Cartões vinculados bloqueiam a remoção pela FK RESTRICT.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	r.logger.Debug("Iniciando Delete de usuário no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := database.Executor(ctx, r.DB).ExecContext(ctxTimeout, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperror.NewConflictErrorWithCause("Usuário possui cartões de crédito vinculados", err)
		}
		r.logger.Error("Falha ao remover usuário no DB.", err)
		return apperror.NewDBError("Falha ao remover usuário", err)
	}

	n, _ := res.RowsAffected()
	r.logger.Info("Delete de usuário executado.", map[string]interface{}{"id": id, "rows": n})
	return nil
}

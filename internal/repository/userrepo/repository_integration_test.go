package userrepo_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financetracker/internal/domain"
	apperror "financetracker/internal/errors"
	"financetracker/internal/pkg/database"
	"financetracker/internal/pkg/logger"
	"financetracker/internal/repository/userrepo"
)

// setupTestDB conecta no Postgres de DATABASE_URL e aplica as migrações.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if os.Getenv("RUN_DB_INTEGRATION") != "true" {
		t.Skip("defina RUN_DB_INTEGRATION=true para rodar os testes de integração")
	}

	_ = godotenv.Load("../../../.env")
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Fatal("DATABASE_URL é obrigatória")
	}

	db, err := database.NewPostgresDB(dsn, database.PoolOptions{MaxOpenConns: 5})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db, logger.NewNop(), "up"))
	return db
}

func TestUserRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := userrepo.NewUserRepository(db, 5*time.Second, logger.NewNop())

	email := fmt.Sprintf("ana_%d@x.com", time.Now().UnixNano())
	user := &domain.User{Name: "Ana", Email: email, PasswordHash: "hash", Roles: []domain.Role{domain.RoleUser}}

	require.NoError(t, repo.Save(ctx, user))
	require.NotZero(t, user.ID)
	t.Cleanup(func() { _ = repo.Delete(ctx, user.ID) })

	found, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, []domain.Role{domain.RoleUser}, found.Roles)

	// Papéis são regravados no update.
	found.Name = "Ana Maria"
	found.Roles = []domain.Role{domain.RoleUser, domain.RoleAdmin}
	require.NoError(t, repo.Save(ctx, found))

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", byID.Name)
	assert.Equal(t, []domain.Role{domain.RoleAdmin, domain.RoleUser}, byID.Roles)

	// Email duplicado barrado pela constraint UNIQUE.
	dup := &domain.User{Name: "Outra", Email: email, PasswordHash: "hash", Roles: []domain.Role{domain.RoleUser}}
	err = repo.Save(ctx, dup)
	assert.IsType(t, &apperror.ConflictError{}, err)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, all)

	require.NoError(t, repo.Delete(ctx, user.ID))
	gone, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Delete de ID inexistente não é erro no repositório.
	assert.NoError(t, repo.Delete(ctx, user.ID))
}

func TestUserRepository_Integration_RollbackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := userrepo.NewUserRepository(db, 5*time.Second, logger.NewNop())
	tx := database.NewTxManager(db)

	email := fmt.Sprintf("rollback_%d@x.com", time.Now().UnixNano())
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := repo.Save(ctx, &domain.User{Name: "Tmp", Email: email, PasswordHash: "h", Roles: []domain.Role{domain.RoleUser}}); err != nil {
			return err
		}
		return apperror.NewInternalError("forçado", nil)
	})
	require.Error(t, err)

	found, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Nil(t, found)
}

package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/aulahq/aula/core/account"
)

// pq unique_violation
const uniqueViolation = "23505"

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sql.DB) *accountRepository {
	return &accountRepository{db: sqlx.NewDb(db, "postgres")}
}

type dbAccount struct {
	ID           int          `db:"id"`
	Name         string       `db:"name"`
	Email        string       `db:"email"`
	PasswordHash []byte       `db:"password_hash"`
	Telefono     string       `db:"telefono"`
	Role         string       `db:"role"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

func (a dbAccount) toCore() account.Account {
	return account.Account{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		Telefono:     a.Telefono,
		Role:         a.Role,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		LastLogin:    a.LastLogin.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to account.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return account.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const accountColumns = "id, name, email, password_hash, telefono, role, created_at, updated_at, last_login"

func (repo accountRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedAccounts ...account.Account) error {
	query := "SELECT EXISTS (SELECT 1 FROM account WHERE email = ?)"
	args := []interface{}{email}

	if len(excludedAccounts) > 0 {
		ids := make([]int, 0, len(excludedAccounts))
		for _, acct := range excludedAccounts {
			ids = append(ids, acct.ID)
		}
		query = "SELECT EXISTS (SELECT 1 FROM account WHERE email = ? AND id NOT IN (?))"
		var err error
		if query, args, err = sqlx.In(query, email, ids); err != nil {
			return errors.Wrap(err, "expanding excluded accounts")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return account.ErrEmailExists
	}
	return nil
}

// CreateAccount inserts the account and its role profile in one transaction;
// a failed profile insert rolls the account row back.
func (repo accountRepository) CreateAccount(ctx context.Context, acct account.Account, specialty, grade string) (account.Account, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "beginning registration transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var id int
	err = tx.QueryRowxContext(
		ctx,
		`INSERT INTO account (name, email, password_hash, telefono, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		acct.Name, acct.Email, acct.PasswordHash, acct.Telefono, acct.Role, acct.CreatedAt, acct.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	acct.ID = id

	switch acct.Role {
	case account.RoleStudent:
		if _, err = tx.ExecContext(ctx, "INSERT INTO student (account_id, grade) VALUES ($1, $2)", id, grade); err != nil {
			return account.Account{}, errors.Wrap(err, "inserting student profile")
		}
	case account.RoleTeacher:
		if _, err = tx.ExecContext(
			ctx, "INSERT INTO teacher (account_id, specialty, created_at) VALUES ($1, $2, $3)",
			id, specialty, acct.CreatedAt,
		); err != nil {
			return account.Account{}, errors.Wrap(err, "inserting teacher profile")
		}
	}

	if err = tx.Commit(); err != nil {
		return account.Account{}, errors.Wrap(err, "committing registration")
	}
	return acct, nil
}

func (repo accountRepository) QueryAllAccounts(ctx context.Context) ([]account.Account, error) {
	var rows []dbAccount
	if err := repo.db.SelectContext(ctx, &rows, "SELECT "+accountColumns+" FROM account ORDER BY name ASC"); err != nil {
		return nil, errors.Wrap(err, "querying accounts")
	}
	accts := make([]account.Account, 0, len(rows))
	for _, row := range rows {
		accts = append(accts, row.toCore())
	}
	return accts, nil
}

func (repo accountRepository) GetAccountByID(ctx context.Context, id int) (account.Account, error) {
	var row dbAccount
	if err := repo.db.GetContext(ctx, &row, "SELECT "+accountColumns+" FROM account WHERE id = $1", id); err != nil {
		return account.Account{}, trapNoRowsErr(err, "finding account by ID")
	}
	return row.toCore(), nil
}

func (repo accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	var row dbAccount
	if err := repo.db.GetContext(ctx, &row, "SELECT "+accountColumns+" FROM account WHERE email = $1", email); err != nil {
		return account.Account{}, trapNoRowsErr(err, "finding account by email")
	}
	return row.toCore(), nil
}

// UpdateAccount saves set fields only: empty role keeps the stored role and a
// nil password hash keeps the stored digest.
func (repo accountRepository) UpdateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	var pwdHash []byte
	if len(acct.PasswordHash) > 0 {
		pwdHash = acct.PasswordHash
	}

	var row dbAccount
	err := repo.db.GetContext(
		ctx, &row,
		`UPDATE account
		 SET name          = $1,
		     email         = $2,
		     telefono      = $3,
		     role          = COALESCE(NULLIF($4, ''), role),
		     password_hash = COALESCE($5, password_hash),
		     updated_at    = $6
		 WHERE id = $7
		 RETURNING `+accountColumns,
		acct.Name, acct.Email, acct.Telefono, acct.Role, pwdHash, acct.UpdatedAt, acct.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, trapNoRowsErr(err, "updating account")
	}
	return row.toCore(), nil
}

func (repo accountRepository) SetLastLogin(ctx context.Context, acct account.Account) (account.Account, error) {
	var row dbAccount
	err := repo.db.GetContext(
		ctx, &row,
		"UPDATE account SET last_login = $1 WHERE id = $2 RETURNING "+accountColumns,
		time.Now().UTC(), acct.ID,
	)
	if err != nil {
		return account.Account{}, trapNoRowsErr(err, "setting last login")
	}
	return row.toCore(), nil
}

func (repo accountRepository) DeleteAccountsByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM account WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "expanding account IDs")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting accounts")
	}
	return nil
}

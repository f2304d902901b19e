package account

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/aulahq/aula/core"
)

var (
	// errors
	ErrNotFound    = errors.New("account not found")
	ErrEmailExists = errors.New("an account with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedAccounts ...Account) error
		// CreateAccount persists acct along with its role profile (student or
		// teacher row) in a single transaction: either both rows exist
		// afterwards or neither does.
		CreateAccount(ctx context.Context, acct Account, specialty, grade string) (Account, error)
		QueryAllAccounts(ctx context.Context) ([]Account, error)
		GetAccountByID(ctx context.Context, id int) (Account, error)
		GetAccountByEmail(ctx context.Context, email string) (Account, error)
		UpdateAccount(ctx context.Context, acct Account) (Account, error)
		SetLastLogin(ctx context.Context, acct Account) (Account, error)
		DeleteAccountsByID(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) CheckEmailUniqueness(ctx context.Context, email string, exclAccts ...Account) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclAccts...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates the Account and its role profile atomically.
func (svc *Service) Register(ctx context.Context, reg Register) (Account, error) {
	now := time.Now().UTC()
	acct := Account{
		Name:      reg.Name,
		Email:     reg.Email,
		Telefono:  reg.Telefono,
		Role:      reg.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acct.SetPassword(reg.Password); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateAccount(ctx, acct, reg.Specialty, reg.Grade)
}

// Authenticate checks the provided credentials and records the login time.
// It returns ErrNotFound for an unknown email or a password mismatch alike so
// callers cannot probe for registered emails.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Account, error) {
	acct, err := svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return Account{}, err
	}
	if err := acct.CheckPassword(pwd); err != nil {
		return Account{}, ErrNotFound
	}
	return svc.repo.SetLastLogin(ctx, acct)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Account, error) {
	return svc.repo.QueryAllAccounts(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Account, error) {
	return svc.repo.GetAccountByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id int, ua UpdateAccount) (Account, error) {
	acct := Account{
		ID:        id,
		Name:      ua.Name,
		Email:     ua.Email,
		Telefono:  ua.Telefono,
		Role:      ua.Role,
		UpdatedAt: time.Now().UTC(),
	}
	if ua.Password != "" {
		if err := acct.SetPassword(ua.Password); err != nil {
			return Account{}, errors.Wrap(err, "hashing password")
		}
	}
	return svc.repo.UpdateAccount(ctx, acct)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteAccountsByID(ctx, ids...)
}

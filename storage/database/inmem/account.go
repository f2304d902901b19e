package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/aulahq/aula/core/account"
	"github.com/aulahq/aula/core/school"
)

type accountRepository struct {
	db *DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) *accountRepository {
	return &accountRepository{db: db}
}

// query must be called with db.mu held.
func (repo *accountRepository) query() []account.Account {
	accts := make([]account.Account, 0, len(repo.db.accounts))
	for _, acct := range repo.db.accounts {
		accts = append(accts, *acct)
	}
	return accts
}

func (repo *accountRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedAccounts ...account.Account) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := make(map[int]bool, len(excludedAccounts))
	for _, acct := range excludedAccounts {
		excluded[acct.ID] = true
	}

	for _, acct := range repo.query() {
		if acct.Email == email && !excluded[acct.ID] {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acct account.Account, specialty, grade string) (account.Account, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// both the account and its role profile appear under one lock hold;
	// either both rows exist afterwards or neither does
	for _, existing := range repo.db.accounts {
		if existing.Email == acct.Email {
			return account.Account{}, account.ErrEmailExists
		}
	}

	acct.ID = repo.db.nextID("account")
	repo.db.accounts[acct.ID] = &acct

	switch acct.Role {
	case account.RoleStudent:
		std := school.Student{ID: repo.db.nextID("student"), AccountID: acct.ID, Grade: grade}
		repo.db.students[std.ID] = &std
	case account.RoleTeacher:
		tch := school.Teacher{ID: repo.db.nextID("teacher"), AccountID: acct.ID, Specialty: specialty, CreatedAt: acct.CreatedAt}
		repo.db.teachers[tch.ID] = &tch
	}
	return acct, nil
}

func (repo *accountRepository) QueryAllAccounts(ctx context.Context) ([]account.Account, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	accts := repo.query()
	sort.Slice(accts, func(i, j int) bool { return accts[i].Name < accts[j].Name })
	return accts, nil
}

func (repo *accountRepository) GetAccountByID(ctx context.Context, id int) (account.Account, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if acct, ok := repo.db.accounts[id]; ok {
		return *acct, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, acct := range repo.db.accounts {
		if acct.Email == email {
			return *acct, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// only save set fields
	orig, ok := repo.db.accounts[acct.ID]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	if acct.Role != "" {
		orig.Role = acct.Role
	}
	if acct.PasswordHash != nil {
		orig.PasswordHash = acct.PasswordHash
	}
	orig.Name = acct.Name
	orig.Email = acct.Email
	orig.Telefono = acct.Telefono
	orig.UpdatedAt = acct.UpdatedAt
	return *orig, nil
}

func (repo *accountRepository) SetLastLogin(ctx context.Context, acct account.Account) (account.Account, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.accounts[acct.ID]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	orig.LastLogin = time.Now().UTC()
	return *orig, nil
}

func (repo *accountRepository) DeleteAccountsByID(ctx context.Context, ids ...int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.accounts, id)
		// emulate the FK cascade on role profiles
		for sid, std := range repo.db.students {
			if std.AccountID == id {
				delete(repo.db.students, sid)
			}
		}
		for tid, tch := range repo.db.teachers {
			if tch.AccountID == id {
				delete(repo.db.teachers, tid)
			}
		}
	}
	return nil
}

package main

import (
	"context"
	"time"

	"github.com/aulahq/aula/core"
	"github.com/aulahq/aula/core/account"
)

// addSuperuser creates an admin account, or promotes an existing one and
// resets its password.
func (cli *commandLine) addSuperuser(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	acct, err := cli.acctRepo.GetAccountByEmail(ctx, email)
	if err != nil {
		if err != account.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		acct = account.Account{
			Name:      name,
			Email:     email,
			Role:      account.RoleAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := acct.SetPassword(pwd); err != nil {
			return err
		}
		_, err := cli.acctRepo.CreateAccount(ctx, acct, "", "")
		return err
	}

	acct.Role = account.RoleAdmin
	acct.UpdatedAt = time.Now().UTC()
	if err := acct.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.acctRepo.UpdateAccount(ctx, acct)
	return err
}

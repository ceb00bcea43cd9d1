package main

import (
	"context"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = user.CheckPasswordPolicy(pwd, usr.Name, usr.Email); err != nil {
		return err
	}
	return cli.usrSvc.ResetPassword(ctx, email, pwd)
}

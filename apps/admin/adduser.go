package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(name, email, city, pwd string, isAdmin bool) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	if err := user.CheckPasswordPolicy(pwd, name, email); err != nil {
		return err
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return err
		}
		usr = user.User{Email: email, Roles: user.UserRoles}
	}
	usr.Name = name
	if city = core.CleanString(city); city != "" {
		usr.City = city
	}
	if isAdmin {
		usr.Roles = user.AdminRoles
	}
	usr.IsActive = true
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	if usr, err = cli.usrSvc.UpdateOrCreate(ctx, usr); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "user %s (%s) saved\n", usr.Email, usr.ID)
	return nil
}

package main

import (
	"context"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/storage/database"
)

func (cli *commandLine) migrate(args []string) error {
	return database.Migrate(context.Background(), cli.db, args[0], args[1:]...)
}

// Migration command for the regional and value object tables
package main

import (
	"context"
	"flag"

	"pyape/config"
	"pyape/dao/query"
	"pyape/logutils"
)

func main() {
	bindKey := flag.String("bind", "", "bind key holding the regional tables, the default bind when empty")
	rollback := flag.Bool("rollback", false, "roll back the last migration instead")
	flag.Parse()

	cfg := config.GetConfig()
	if err := logutils.SetLevel(cfg.Log.Level); err != nil {
		logutils.Log.Fatal(err)
	}
	db, err := query.Open(cfg)
	if err != nil {
		logutils.Log.Fatal(err)
	}
	defer db.Close()

	mg, err := query.NewMigrator(context.Background(), db, *bindKey)
	if err != nil {
		logutils.Log.Fatal(err)
	}
	if *rollback {
		err = mg.RollbackLast()
	} else {
		err = mg.Migrate()
	}
	if err != nil {
		logutils.Log.Fatal(err)
	}
	logutils.Log.Info("migration done")
}

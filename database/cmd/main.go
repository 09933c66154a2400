package main

import (
	"flag"
	"os"

	"nika.id/configs"
	"nika.id/configs/configsdatabase"
	"nika.id/configs/configslog"
	"nika.id/database"
)

func main() {
	configslog.InitLogger()
	defer configslog.SyncLogger()

	migrateFlag := flag.Bool("migrate", false, "run schema migrations")
	seedFlag := flag.Bool("seed", false, "seed the admin user and built-in templates")
	flag.Parse()

	cfg, err := configs.Load()
	if err != nil {
		configslog.SLog.Fatalf("config: %v", err)
	}
	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()

	err = database.Initialize(configsdatabase.GetDB(), *migrateFlag, *seedFlag, database.SeedOptions{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		os.Exit(1)
	}
}

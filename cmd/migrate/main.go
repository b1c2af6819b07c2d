package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

const usage = `usage: migrate [flags] <up|down|status|to VERSION|create NAME|validate>

The embedded migrations are used unless -dir is set.
`

func main() {
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	if err := run(flag.Args(), *dir); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(args []string, dir string) error {
	cmd := args[0]

	// offline commands
	switch cmd {
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("create needs a NAME")
		}
		target := dir
		if target == "" {
			target = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(target, args[1])
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		if err := migrate.Validate(source(dir)); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "catalog-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": cmd})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()

	sqlDB, err := client.SQL()
	if err != nil {
		return err
	}

	// versioned migrations are postgres only; sqlite gets the bundled schema
	if client.Dialect() == config.DBDriverSQLite {
		if cmd != "up" {
			return fmt.Errorf("sqlite databases only support up")
		}
		return migrate.ApplySQLiteSchema(ctx, sqlDB)
	}

	var applied []migrate.Applied
	switch cmd {
	case "up":
		applied, err = migrate.Up(ctx, sqlDB, source(dir))
	case "down":
		applied, err = migrate.Down(ctx, sqlDB, source(dir))
	case "to":
		if len(args) < 2 {
			return fmt.Errorf("to needs a VERSION (YYYYMMDDHHMMSS)")
		}
		version, perr := strconv.ParseInt(args[1], 10, 64)
		if perr != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], perr)
		}
		applied, err = migrate.To(ctx, sqlDB, source(dir), version)
	case "status":
		statuses, serr := migrate.Statuses(ctx, sqlDB, source(dir))
		if serr != nil {
			return serr
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied " + s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%d  %-45s %s\n", s.Version, s.Source, state)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}

	for _, a := range applied {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"version":   a.Version,
			"direction": a.Direction,
			"source":    a.Source,
		}), "migration done")
	}
	logg.Info(logg.WithField(ctx, "count", len(applied)), "migrate finished")
	return nil
}

func source(dir string) fs.FS {
	if dir == "" {
		return migrate.Migrations()
	}
	return os.DirFS(dir)
}

// admin is the operator CLI: seeding demo data, promoting users and moving
// complaints through their lifecycle without going through the HTTP API.
package main

import (
	"civicdesk/backend/internal/complaint"
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/logger"
	"civicdesk/backend/internal/seed"
	"civicdesk/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `Usage: admin [--env-file path] <command> [args]

Commands:
  seed [--reset]                 insert demo users, departments and complaints
  promote <email> <role>         change a user's role (citizen, admin, department_head)
  set-status <id> <status>       update a complaint status [--resolution text]
  stats                          print complaint counts per status
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var envFile string
	flagSet := pflag.NewFlagSet("admin", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flagSet.Usage = func() { fmt.Fprint(out, usage) }
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("no command given")
	}

	config.LoadDotEnv(envFile)
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, "console", "civicdesk-admin")
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	// No redis needed for admin CLI; events have no subscribers here.
	store := storage.NewStorageService(db, nil, log)

	ctx := context.Background()
	command, cmdArgs := rest[0], rest[1:]
	switch command {
	case "seed":
		return seedCommand(ctx, store, log, cmdArgs, out)
	case "promote":
		return promoteCommand(ctx, store, cmdArgs, out)
	case "set-status":
		svc := complaint.NewService(store, nil, log, cfg.StrictTransitions)
		return setStatusCommand(ctx, svc, cmdArgs, out)
	case "stats":
		svc := complaint.NewService(store, nil, log, cfg.StrictTransitions)
		return statsCommand(ctx, svc, out)
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func seedCommand(ctx context.Context, store *storage.Service, log *zap.Logger, args []string, out io.Writer) error {
	var reset bool
	fs := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	fs.BoolVar(&reset, "reset", false, "delete all existing data first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := seed.New(store, log).Run(ctx, seed.Options{Reset: reset})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d users, %d departments, %d complaints.\n", res.Users, res.Departments, res.Complaints)
	return nil
}

func promoteCommand(ctx context.Context, s storage.Storage, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("usage: admin promote <email> <role>")
	}
	email, role := args[0], args[1]
	if !slices.Contains(config.Roles, role) {
		return fmt.Errorf("invalid role %q, want one of %s", role, strings.Join(config.Roles, ", "))
	}

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("load user %s: %w", email, err)
	}
	user.Role = role
	if err := s.UpdateUser(ctx, user); err != nil {
		return err
	}
	fmt.Fprintf(out, "User %s is now %s.\n", user.Email, role)
	return nil
}

func setStatusCommand(ctx context.Context, svc *complaint.Service, args []string, out io.Writer) error {
	var resolution string
	fs := pflag.NewFlagSet("set-status", pflag.ContinueOnError)
	fs.StringVar(&resolution, "resolution", "", "resolution text to store with the status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: admin set-status <complaint_id> <status> [--resolution text]")
	}
	id, status := fs.Arg(0), fs.Arg(1)
	if !slices.Contains(config.Statuses, status) {
		return fmt.Errorf("invalid status %q, want one of %s", status, strings.Join(config.Statuses, ", "))
	}

	in := complaint.UpdateInput{Status: &status}
	if fs.Changed("resolution") {
		in.Resolution = &resolution
	}
	c, err := svc.Update(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Complaint %s is now %s.\n", c.ID, c.Status)
	return nil
}

func statsCommand(ctx context.Context, svc *complaint.Service, out io.Writer) error {
	stats, err := svc.Stats(ctx)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Fprintln(out, "No complaints yet.")
		return nil
	}
	statuses := make([]string, 0, len(stats))
	for status := range stats {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(out, "%-12s %d\n", status, stats[status])
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"yatube/app/config"
	"yatube/app/repositories"
	"yatube/app/services"

	"github.com/sirupsen/logrus"
)

// HandleCommand runs a yatube subcommand and returns its exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "serve":
		return RunAppServer(args[1:])
	case "clean":
		return clean()
	case "init":
		return initDb()
	case "backup":
		target := ""
		if len(args) > 1 {
			target = args[1]
		}
		return backup(target)
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			return 1
		}
		return restore(args[1])
	case "group":
		return groupCommand(args[1:])
	case "user":
		return userCommand(args[1:])
	case "cache":
		return cacheCommand(args[1:])
	case "help":
		printHelp()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printHelp()
		return 1
	}
}

// printHelp prints help for the subcommands.
func printHelp() {
	helpText := `Usage: yatube <command> [options]

Commands:
  serve [--addr <addr>]                     Run the blog server
  init                                      Initialize a new empty database
  clean                                     Remove every record from the database
  backup [file]                             Create a backup of the badger database
  restore <file>                            Restore the badger database from a backup
  group add <slug> <title> [description]    Create a group
  group list                                List groups
  group delete <slug>                       Delete a group, keeping its posts
  user add <username> <password> [email]    Create a user
  cache clear                               Drop every cached page
  version                                   Show version information
  help                                      Display this help message

Settings are read from the environment and an optional .env file.
`
	fmt.Println(helpText)
}

func confirm(prompt string) bool {
	fmt.Print(prompt + " [y/N] ")
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

// initDb creates the database, or migrates the SQL schema.
func initDb() int {
	cfg, log, err := setup()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if isBadger(cfg) {
		if _, err := os.Stat(cfg.DataDir); err == nil {
			fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
			return 0
		}
	}

	store, err := openStore(cfg, log)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer store.Close()

	fmt.Println("Database initialized successfully")
	return 0
}

// clean removes the badger directory, or empties the SQL tables.
func clean() int {
	cfg, log, err := setup()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if isBadger(cfg) {
		if _, err := os.Stat(cfg.DataDir); os.IsNotExist(err) {
			fmt.Println("Database is already clean (does not exist)")
			return 0
		}
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 1
	}

	if isBadger(cfg) {
		err = os.RemoveAll(cfg.DataDir)
	} else {
		err = clearStore(cfg, log)
	}
	if err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

func clearStore(cfg *config.Config, log *logrus.Logger) error {
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Clear()
}

func backupDir(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(filepath.Clean(cfg.DataDir)), "backups")
}

// backup writes a badger snapshot to target, or to a timestamped file in
// the backups directory next to the data directory.
func backup(target string) int {
	cfg, log, err := setup()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if !isBadger(cfg) {
		fmt.Printf("Backup is only supported for the badger store, use the %s tools instead\n", cfg.DBDriver)
		return 1
	}
	if _, err := os.Stat(cfg.DataDir); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return 1
	}

	if target == "" {
		dir := backupDir(cfg)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Printf("Failed to create backup directory: %v\n", err)
			return 1
		}
		target = filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	}

	store, err := openBadger(cfg, log)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	f, err := os.Create(target)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", target)
	return 0
}

// restore replaces the badger database with the snapshot in backupFile.
func restore(backupFile string) int {
	cfg, log, err := setup()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if !isBadger(cfg) {
		fmt.Printf("Restore is only supported for the badger store, use the %s tools instead\n", cfg.DBDriver)
		return 1
	}

	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if _, err := os.Stat(cfg.DataDir); err == nil {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(cfg.DataDir); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	store, err := openBadger(cfg, log)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	if err := store.Load(f); err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}

// groupCommand manages communities, which have no web form.
func groupCommand(args []string) int {
	if len(args) < 1 {
		fmt.Println("Error: group requires add, list or delete")
		return 1
	}

	var err error
	switch args[0] {
	case "add":
		if len(args) < 3 {
			fmt.Println("Error: usage: group add <slug> <title> [description]")
			return 1
		}
		description := ""
		if len(args) > 3 {
			description = strings.Join(args[3:], " ")
		}
		err = withServices(func(svc *services.Services) error {
			group, err := svc.Groups.CreateGroup(args[1], args[2], description)
			if err != nil {
				return err
			}
			fmt.Printf("Group created: %s (id %d)\n", group.Slug, group.ID)
			return nil
		})
	case "list":
		err = withServices(func(svc *services.Services) error {
			groups, err := svc.Groups.List()
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Println("No groups")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSLUG\tTITLE")
			for _, group := range groups {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", group.ID, group.Slug, group.Title)
			}
			return tw.Flush()
		})
	case "delete":
		if len(args) < 2 {
			fmt.Println("Error: usage: group delete <slug>")
			return 1
		}
		err = withServices(func(svc *services.Services) error {
			if err := svc.Groups.DeleteGroup(args[1]); err != nil {
				return err
			}
			fmt.Printf("Group deleted: %s\n", args[1])
			return nil
		})
	default:
		fmt.Printf("Unknown group command: %s\n", args[0])
		return 1
	}
	return report(err)
}

func userCommand(args []string) int {
	if len(args) < 3 || args[0] != "add" {
		fmt.Println("Error: usage: user add <username> <password> [email]")
		return 1
	}
	email := ""
	if len(args) > 3 {
		email = args[3]
	}
	err := withServices(func(svc *services.Services) error {
		user, err := svc.Users.CreateUser(args[1], args[2], email)
		if err != nil {
			return err
		}
		fmt.Printf("User created: %s (id %d)\n", user.Username, user.ID)
		return nil
	})
	return report(err)
}

// cacheCommand clears the shared page cache. The badger cache lives inside
// the server process, so only redis can be cleared from outside.
func cacheCommand(args []string) int {
	if len(args) < 1 || args[0] != "clear" {
		fmt.Println("Error: usage: cache clear")
		return 1
	}
	cfg, _, err := setup()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if cfg.CacheBackend != "redis" {
		fmt.Println("The badger page cache lives in the server process and is cleared on restart")
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := openCache(ctx, cfg)
	if err != nil {
		return report(err)
	}
	defer store.Close()
	if err := store.Clear(ctx); err != nil {
		return report(err)
	}
	fmt.Println("Page cache cleared")
	return 0
}

// report prints err in the form the admin expects and maps it to an exit code.
func report(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, repositories.ErrDuplicate):
		fmt.Printf("Error: already exists: %v\n", err)
	case errors.Is(err, repositories.ErrNotFound):
		fmt.Printf("Error: not found: %v\n", err)
	default:
		fmt.Printf("Error: %v\n", err)
	}
	return 1
}

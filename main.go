package main

import (
	"fmt"
	"os"
	"strings"

	"yatube/service"
)

const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the command line. Everything except help and version
// is handled by the service package.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "help", "-h", "--help":
		printHelp()
	case "version":
		fmt.Printf("yatube version %s\n", CliVersion)
	default:
		exit(service.HandleCommand(append([]string{cmd}, os.Args[2:]...)))
	}
}

func printHelp() {
	helpText := `Usage: yatube <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve [--addr <addr>]          Run the blog.
  init | clean                   Create or empty the database.
  backup [file] | restore <file> Snapshot or restore the badger database.
  group add|list|delete          Manage groups.
  user add                       Create a user.
  cache clear                    Drop cached pages.

Run "yatube help" through the service for the full argument list.
`
	fmt.Println(helpText)
}

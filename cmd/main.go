package main

import (
	"fmt"
	"io"
	"os"
)

// Version is set at build time via -ldflags.
// Example: go build -ldflags="-X main.Version=v0.3.0" ./cmd
var Version = "dev"

const usage = `tagdeck - terminal client for a metadata remote server

Usage:
  tagdeck [command] [options]

Commands:
  browse        Open the interactive editor (default when no command is given)
  files         List the audio files under a folder
  folder        Apply metadata changes to a whole folder
  folder apply <folder> <field> <value>   Write one field to every file
  folder delete-field <folder> <field>    Remove one field from every file
  folder art <folder> <image-file>        Write album art to every file
  folder rename <folder> <new-name>       Rename the folder itself
  history       Work with the server's edit history
  history list           Show the edit history
  history show <id>      Show one action in detail
  history undo <id>      Undo an action
  history redo <id>      Redo a previously undone action
  history clear          Clear the entire edit history
  servers       Manage known servers
  servers list           List saved servers
  servers add <name> <url>   Save a server
  servers rm <name>          Remove a saved server
  servers default <name>     Make a saved server the default
  discover      Browse the local network for metadata servers
  doctor        Check connectivity to the configured server
  qr            Show the server's web UI address as a QR code
  version       Print the version

Run 'tagdeck <command> --help' for more information on a command.
`

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		return runBrowse(nil, stdout, stderr)
	}

	switch args[1] {
	case "browse":
		return runBrowse(args[2:], stdout, stderr)
	case "files":
		return runFiles(args[2:], stdout, stderr)
	case "folder":
		return runFolder(args[2:], stdout, stderr)
	case "history":
		return runHistory(args[2:], stdout, stderr)
	case "servers":
		return runServers(args[2:], stdout, stderr)
	case "discover":
		return runDiscover(args[2:], stdout, stderr)
	case "doctor":
		return runDoctor(args[2:], stdout, stderr)
	case "qr":
		return runQR(args[2:], stdout, stderr)
	case "--help", "-h", "help":
		fmt.Fprint(stdout, usage)
		return 0
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "tagdeck %s\n", Version)
		return 0
	default:
		fmt.Fprintf(stdout, "Unknown command: %s\n", args[1])
		fmt.Fprint(stdout, usage)
		return 1
	}
}

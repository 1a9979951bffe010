package main

import (
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/tagdeck/tagdeck/internal/api"
)

const folderUsage = `Usage: tagdeck folder <subcommand> [options]

Apply metadata changes to every audio file directly in a folder.

Subcommands:
  apply <folder> <field> <value>   Write one field value to every file
  delete-field <folder> <field>    Remove one field from every file
  art <folder> <image-file>        Write album art to every file
  rename <folder> <new-name>       Rename the folder itself
`

// runFolder dispatches the whole-folder subcommands.
func runFolder(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, folderUsage)
		return 1
	}
	switch args[0] {
	case "apply":
		return runFolderApply(args[1:], stdout, stderr)
	case "delete-field":
		return runFolderDeleteField(args[1:], stdout, stderr)
	case "art":
		return runFolderArt(args[1:], stdout, stderr)
	case "rename":
		return runFolderRename(args[1:], stdout, stderr)
	case "--help", "-h", "help":
		fmt.Fprint(stdout, folderUsage)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown folder subcommand: %s\n", args[0])
		fmt.Fprint(stderr, folderUsage)
		return 1
	}
}

func runFolderApply(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("folder apply", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck folder apply [options] <folder> <field> <value>\n\nWrite one field value to every audio file directly in the folder.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() < 3 {
		fmt.Fprintln(stderr, "Error: folder, field, and value are required")
		fs.Usage()
		return 1
	}

	client, ctx, cancel, code := apiClient(&common, stderr)
	if code != 0 {
		return code
	}
	defer cancel()

	res, err := client.ApplyFieldToFolder(ctx, fs.Arg(0), fs.Arg(1), fs.Arg(2))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return printBatchResult(stdout, stderr, fmt.Sprintf("Applied %s", fs.Arg(1)), res)
}

func runFolderDeleteField(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("folder delete-field", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck folder delete-field [options] <folder> <field>\n\nRemove one field from every audio file directly in the folder.\nFiles without the field count as skipped.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(stderr, "Error: folder and field are required")
		fs.Usage()
		return 1
	}

	client, ctx, cancel, code := apiClient(&common, stderr)
	if code != 0 {
		return code
	}
	defer cancel()

	res, err := client.DeleteFieldFromFolder(ctx, fs.Arg(0), fs.Arg(1))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return printBatchResult(stdout, stderr, fmt.Sprintf("Deleted %s", fs.Arg(1)), res)
}

func runFolderArt(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("folder art", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck folder art [options] <folder> <image-file>\n\nWrite an image as album art to every audio file directly in the folder.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(stderr, "Error: folder and image file are required")
		fs.Usage()
		return 1
	}

	raw, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(stderr, "Error: could not read %s: %v\n", fs.Arg(1), err)
		return 1
	}

	client, ctx, cancel, code := apiClient(&common, stderr)
	if code != 0 {
		return code
	}
	defer cancel()

	res, err := client.ApplyArtToFolder(ctx, fs.Arg(0), base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return printBatchResult(stdout, stderr, "Applied art", res)
}

func runFolderRename(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("folder rename", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck folder rename [options] <folder> <new-name>\n\nRename a folder. Paths of the files inside it change with it.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(stderr, "Error: folder and new name are required")
		fs.Usage()
		return 1
	}

	client, ctx, cancel, code := apiClient(&common, stderr)
	if code != 0 {
		return code
	}
	defer cancel()

	res, err := client.RenameFolder(ctx, fs.Arg(0), fs.Arg(1))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintln(stdout, green(fmt.Sprintf("Renamed to %s", res.NewPath)))
	return 0
}

// printBatchResult renders a whole-folder outcome. Partial completion is
// reported as success with the skip count alongside.
func printBatchResult(stdout, stderr io.Writer, verb string, res *api.BatchResult) int {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	if res.Status == api.StatusError {
		msg := res.Err
		if msg == "" {
			msg = res.Message
		}
		if msg == "" {
			msg = "the server reported an error"
		}
		fmt.Fprintf(stderr, "%s\n", red(fmt.Sprintf("%s failed: %s", verb, msg)))
		return 1
	}

	updated := res.FilesUpdated
	if updated == 0 {
		updated = res.FilesCreated
	}
	line := fmt.Sprintf("%s: %d file(s) updated", verb, updated)
	if res.FilesSkipped > 0 {
		line += fmt.Sprintf(", %d skipped", res.FilesSkipped)
	}
	fmt.Fprintln(stdout, green(line))
	return 0
}

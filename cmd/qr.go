package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/skip2/go-qrcode"
)

// runQR implements `tagdeck qr`: render the server's web UI address as a
// terminal QR code, for pointing a phone at the same library.
func runQR(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("qr", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagdeck qr [options]\n\nShow the server's web UI address as a QR code.\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	_, serverURL, err := common.resolve(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Medium error correction keeps the code scannable at terminal density.
	qr, err := qrcode.New(serverURL, qrcode.Medium)
	if err != nil {
		fmt.Fprintf(stderr, "Error: could not generate QR code: %v\n", err)
		fmt.Fprintf(stdout, "Server: %s\n", serverURL)
		return 1
	}

	fmt.Fprintln(stdout, "")
	fmt.Fprint(stdout, qr.ToSmallString(false))
	fmt.Fprintf(stdout, "\n  %s\n\n", serverURL)
	return 0
}

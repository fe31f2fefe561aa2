package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meenmo/termstruct/cmd/termcurve/internal/fixedleg"
	"github.com/meenmo/termstruct/cmd/termcurve/internal/oiscurve"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "bootstrap", "curve":
		return oiscurve.Run(args[1:], stdin, stdout, stderr)
	case "leg", "fixed-leg":
		return fixedleg.Run(args[1:], stdin, stdout, stderr)
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: termcurve <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  bootstrap  Bootstrap an OIS discount curve from par quotes")
	fmt.Fprintln(w, "  leg        Fixed-rate leg coupon amounts and accruals")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run `termcurve <command> -h` for command-specific help.")
}

// Package vaultctl implements the operator commands of the vaultctl binary:
// key and secret generation, account creation, schema migration and development tokens.
package vaultctl

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/passvault/internal/buildinfo"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

const usage = `usage: vaultctl <command> [flags]

commands:
  keygen   [-passphrase] [-salt <hex>]          print a base64 encryption key
  secret   [-n <bytes>]                          print a random JWT signing secret
  useradd  -d <dsn> -e <email> [-admin]          create an account, print its id
  migrate  -d <dsn>                              apply database migrations
  token    -s <secret> -u <user-id> [-t <min>]   mint an access token
  version                                        print build information
`

// Run executes the command named by args[0] and returns the process exit
// code. Results go to stdout, diagnostics and prompts to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "keygen":
		err = keygen(args[1:], stdout, stderr)
	case "secret":
		err = secret(args[1:], stdout, stderr)
	case "useradd":
		err = useradd(ctx, args[1:], stdout, stderr)
	case "migrate":
		err = migrate(ctx, args[1:], stdout, stderr)
	case "token":
		err = token(args[1:], stdout, stderr)
	case "version":
		buildinfo.PrintBuildData(stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "vaultctl %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

// promptPassword prints prompt to w and reads a line from the terminal
// without echo. The caller wipes the result.
func promptPassword(w io.Writer, prompt string) ([]byte, error) {
	fmt.Fprint(w, prompt)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}

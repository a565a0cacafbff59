package vaultctl

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/passvault/internal/common"
)

// secret prints a hex string suitable for PASSVAULT_SECRET_KEY.
func secret(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("secret", flag.ContinueOnError)
	fs.SetOutput(stderr)
	size := fs.Int("n", 32, "random bytes before hex encoding")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *size < 16 {
		return errors.New("-n must be at least 16")
	}

	s, err := common.MakeRandHexString(*size)
	if err != nil {
		return fmt.Errorf("generate secret: %w", err)
	}

	fmt.Fprintln(stdout, s)
	return nil
}

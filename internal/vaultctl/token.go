package vaultctl

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/passvault/internal/server/auth"
	"github.com/google/uuid"
)

// token mints an access token for development and smoke tests.
func token(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	secret := fs.String("s", "", "JWT secret key (PASSVAULT_SECRET_KEY)")
	userID := fs.String("u", "", "user id")
	minutes := fs.Int("t", 15, "validity in minutes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *secret == "" {
		return errors.New("-s is required")
	}
	if err := uuid.Validate(*userID); err != nil {
		return fmt.Errorf("invalid -u: %w", err)
	}
	if *minutes <= 0 {
		return errors.New("-t must be positive")
	}

	tok, err := auth.GenerateToken(*userID, []byte(*secret), time.Duration(*minutes)*time.Minute)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Fprintln(stdout, tok)
	return nil
}

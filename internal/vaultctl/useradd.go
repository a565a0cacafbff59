package vaultctl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
)

// openDB is a test seam for repomanager.Open.
var openDB = repomanager.Open

func useradd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dsn := fs.String("d", "", "database DSN")
	email := fs.String("e", "", "account email")
	admin := fs.Bool("admin", false, "grant admin rights")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *dsn == "" {
		return errors.New("-d is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(*email))
	if err != nil {
		return fmt.Errorf("invalid -e: %w", err)
	}

	pw, err := promptPassword(stderr, "Password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	if len(pw) == 0 {
		return errors.New("empty password")
	}

	db, m, err := openDB(ctx, *dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	u, err := m.Users(db).Create(ctx, &models.User{
		Email:        addr.Address,
		PasswordHash: cryptox.HashPassword(pw),
		IsAdmin:      *admin,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintln(stdout, u.ID)
	return nil
}

func migrate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dsn := fs.String("d", "", "database DSN")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dsn == "" {
		return errors.New("-d is required")
	}

	db, _, err := openDB(ctx, *dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintln(stdout, "migrations applied")
	return nil
}

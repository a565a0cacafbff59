package vaultctl

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
)

// keygen prints a random key, or with -passphrase a key derived from a
// passphrase read from the terminal. The salt is printed so the same key
// can be derived again.
func keygen(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fromPassphrase := fs.Bool("passphrase", false, "derive the key from a passphrase")
	saltHex := fs.String("salt", "", "hex salt for -passphrase (random if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*fromPassphrase {
		if *saltHex != "" {
			return errors.New("-salt requires -passphrase")
		}
		key := cryptox.GenerateKey()
		defer common.WipeByteArray(key)
		fmt.Fprintln(stdout, cryptox.EncodeKey(key))
		return nil
	}

	var salt []byte
	if *saltHex == "" {
		salt = common.GenerateRandByteArray(cryptox.SaltSize)
	} else {
		var err error
		if salt, err = hex.DecodeString(*saltHex); err != nil {
			return fmt.Errorf("invalid salt: %w", err)
		}
		if len(salt) < cryptox.SaltSize {
			return fmt.Errorf("salt must be at least %d bytes", cryptox.SaltSize)
		}
	}

	pass, err := promptPassword(stderr, "Passphrase: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)
	if len(pass) == 0 {
		return errors.New("empty passphrase")
	}

	key := cryptox.DeriveMasterKey(pass, salt)
	defer common.WipeByteArray(key)

	fmt.Fprintf(stdout, "key:  %s\nsalt: %s\n", cryptox.EncodeKey(key), hex.EncodeToString(salt))
	return nil
}

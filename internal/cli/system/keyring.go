package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/keyring"
	"github.com/julianstephens/threethings/internal/storage/postgres"
)

// KeyringSetCmd stores a secret in the OS keyring
type KeyringSetCmd struct {
	Secret string `arg:"" enum:"connection-string,generator-key" help:"Secret to store (connection-string or generator-key)."`
	Value  string `arg:"" help:"Secret value."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}

	if secret == keyring.SecretConnectionString {
		if !strings.HasPrefix(cmd.Value, "postgres://") &&
			!strings.HasPrefix(cmd.Value, "postgresql://") &&
			!strings.Contains(cmd.Value, "host=") {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if err := postgres.ValidateConnString(cmd.Value); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
	}

	if err := keyring.Set(secret, cmd.Value); err != nil {
		return err
	}
	ctx.Printf("✓ %s stored in OS keyring\n", cmd.Secret)
	if secret == keyring.SecretConnectionString {
		ctx.Println("  threethings will use it when --config is omitted or names a PostgreSQL server")
	}
	return nil
}

// KeyringDeleteCmd removes a secret from the OS keyring
type KeyringDeleteCmd struct {
	Secret string `arg:"" enum:"connection-string,generator-key" help:"Secret to delete (connection-string or generator-key)."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}
	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", cmd.Secret)
		}
		return err
	}
	ctx.Printf("✓ %s deleted from OS keyring\n", cmd.Secret)
	return nil
}

// KeyringStatusCmd reports which secrets are stored
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	for _, name := range []string{"connection-string", "generator-key"} {
		secret, _ := keyring.ParseSecret(name)
		_, err := keyring.Get(secret)
		switch {
		case err == nil:
			ctx.Printf("✓ %s is stored\n", name)
		case errors.Is(err, keyring.ErrNotFound):
			ctx.Printf("ℹ %s is not stored\n", name)
		default:
			return err
		}
	}
	return nil
}

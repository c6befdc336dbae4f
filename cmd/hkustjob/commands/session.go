package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// SessionSetAction saves the PHP session credential used by scrapes.
func SessionSetAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Sessions.SetCredential(ctx, cmd.String("value")); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Println("✓ Session credential saved")
	return nil
}

// SessionShowAction prints the saved credential, masked.
func SessionShowAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	cred, err := app.Sessions.Credential(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if cred == "" {
		fmt.Println("No session credential saved")
		return nil
	}
	fmt.Printf("Session credential: %s\n", mask(cred))
	return nil
}

// SessionClearAction removes the saved credential.
func SessionClearAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	fmt.Println("✓ Session credential cleared")
	return nil
}

// mask keeps the first and last four characters of long values.
func mask(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "…" + s[len(s)-4:]
}

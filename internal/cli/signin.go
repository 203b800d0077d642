package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"raic-cli/internal/platform"
)

// ensureSignedIn checks the persisted session and, when it has expired,
// prompts for credentials and signs in. The password is read without echo
// and is never stored.
func ensureSignedIn(ctx context.Context) error {
	ok, err := client.SignedIn(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	creds, err := promptCredentials()
	if err != nil {
		return err
	}
	return client.SignIn(ctx, creds)
}

func promptCredentials() (platform.Credentials, error) {
	fmt.Fprint(os.Stderr, "username or email: ")
	reader := bufio.NewReader(os.Stdin)
	login, err := reader.ReadString('\n')
	if err != nil {
		return platform.Credentials{}, fmt.Errorf("failed to read login: %w", err)
	}

	fmt.Fprint(os.Stderr, "password (is not stored anywhere): ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return platform.Credentials{}, fmt.Errorf("failed to read password: %w", err)
	}

	return platform.Credentials{
		Login:    strings.TrimSpace(login),
		Password: string(password),
	}, nil
}

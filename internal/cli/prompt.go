package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

// promptPassword reads the password from the terminal without echo.
func promptPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	raw, err := terminal.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", errors.Wrap(err, "[promptPassword] read password")
	}
	return string(raw), nil
}

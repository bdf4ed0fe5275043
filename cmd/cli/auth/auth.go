package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/crucial707/landscape-lab/cmd/cli/client"
	"github.com/crucial707/landscape-lab/cmd/cli/config"
	"github.com/crucial707/landscape-lab/cmd/cli/output"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// InitAuth registers login, register, logout and whoami on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(
		loginCmd(),
		registerCmd(),
		logoutCmd(),
		whoamiCmd(),
	)
}

// ==========================
// LOGIN
// ==========================
func loginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Landscape Lab API",
		Long:  "Authenticate with the Landscape Lab API and store the bearer token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("username is required")
			}
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			f, err := config.Load()
			if err != nil {
				return err
			}
			c := client.New(f)

			var tok struct {
				AccessToken string `json:"access_token"`
				ExpiresIn   int64  `json:"expires_in"`
			}
			form := url.Values{"username": {username}, "password": {password}}
			if err := c.PostForm(cmd.Context(), "/auth/token", form, &tok); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if tok.AccessToken == "" {
				return errors.New("login succeeded but no token returned")
			}

			f.Token = tok.AccessToken
			f.Username = username
			if err := config.Save(f); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to log in as")
	return cmd
}

// ==========================
// REGISTER
// ==========================
func registerCmd() *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" {
				return errors.New("--username and --email are required")
			}
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			f, err := config.Load()
			if err != nil {
				return err
			}

			var u models.User
			body := map[string]string{"username": username, "email": email, "password": password}
			if err := client.New(f).Do(cmd.Context(), http.MethodPost, "/auth/register", body, &u); err != nil {
				return fmt.Errorf("register failed: %w", err)
			}

			if output.WantJSON(cmd) {
				return output.JSON(cmd.OutOrStdout(), u)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (id %d). Run `landlab login -u %s` to sign in.\n", u.Username, u.ID, u.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	return cmd
}

// ==========================
// LOGOUT
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load()
			if err != nil {
				return err
			}
			f.Token = ""
			f.Username = ""
			if err := config.Save(f); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// ==========================
// WHOAMI
// ==========================
func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authenticated()
			if err != nil {
				return err
			}
			var u models.User
			if err := c.Do(cmd.Context(), http.MethodGet, "/users/me", nil, &u); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.JSON(cmd.OutOrStdout(), u)
			}
			role := "user"
			if u.IsAdmin {
				role = "admin"
			}
			output.RenderTable(cmd.OutOrStdout(),
				[]string{"ID", "Username", "Email", "Role", "Active"},
				[][]interface{}{{u.ID, u.Username, u.Email, role, u.IsActive}})
			return nil
		},
	}
}

// readPassword prompts without echo on a terminal and otherwise reads one
// line from the command's input, so scripts can pipe it in.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/tasksync/internal/config"
	"github.com/existflow/tasksync/internal/remote"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage authentication with the tasksync server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the tasksync server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the tasksync server",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the tasksync server",
	RunE:  runRegister,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
}

// httpStore opens the server client without touching the local database
func httpStore() (*remote.HTTPStore, error) {
	if cfg.Remote.Backend == config.BackendMongo {
		return nil, fmt.Errorf("the mongo backend has no accounts, authentication is only used with the http backend")
	}
	credsPath, err := remote.DefaultCredentialsPath()
	if err != nil {
		return nil, err
	}
	return remote.NewHTTPStore(cfg.Remote.ServerURL, remote.NewCredentialsFile(credsPath), cfg.Remote.Timeout)
}

func readPassword(prompt string) string {
	fmt.Print(prompt)
	b, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return string(b)
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, err := httpStore()
	if err != nil {
		return err
	}
	defer client.Close()

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	password := readPassword("Password: ")

	fmt.Println("🔄 Logging in...")
	if err := client.Login(cmd.Context(), username, password); err != nil {
		return err
	}

	fmt.Println("✅ Logged in successfully!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	client, err := httpStore()
	if err != nil {
		return err
	}
	defer client.Close()

	if !client.IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Println("🔄 Logging out...")
	if err := client.Logout(cmd.Context()); err != nil {
		return err
	}

	fmt.Println("✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	client, err := httpStore()
	if err != nil {
		return err
	}
	defer client.Close()

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	password := readPassword("Password: ")
	confirm := readPassword("Confirm Password: ")

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Println("🔄 Creating account...")
	if err := client.Register(cmd.Context(), username, email, password); err != nil {
		return err
	}

	fmt.Println("✅ Account created and logged in!")
	return nil
}

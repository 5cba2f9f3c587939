package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/gridkv/gridkv/cmd/util"
	remoteAuth "github.com/gridkv/gridkv/remote/auth"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// AuthCommands represents the auth command group
	AuthCommands = &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored authorization",
	}

	// loginCmd represents the login command
	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Authorize gridKV and store the user token",
		Long:  "Runs the interactive authorization flow: the authorization link is printed, the pasted one-time code is exchanged for a token and the token is stored for later runs.",
		RunE:  runLogin,
	}

	// statusCmd represents the status command
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the state of the stored user token",
		RunE:  runStatus,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add subcommands to auth command
	AuthCommands.AddCommand(loginCmd)
	AuthCommands.AddCommand(statusCmd)

	// Add credential file flags to the auth command
	util.SetupAuthFlags(AuthCommands)

	// Add flags specific to login
	loginCmd.Flags().Bool("force", false, "Run the authorization flow even if a stored token exists")
}

// runLogin executes the interactive authorization flow
func runLogin(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	opts := util.GetAuthOptions(util.NewLogger())

	// A forced login discards the stored token so the flow runs again
	if viper.GetBool("force") && opts.TokenFile != "" {
		if err := os.Remove(opts.TokenFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stored token: %w", err)
		}
	}

	if _, err := remoteAuth.Client(cmd.Context(), opts); err != nil {
		return err
	}

	fmt.Println("authorization successful")
	return nil
}

// runStatus reports on the stored user token
func runStatus(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	path := viper.GetString("token")
	token, err := remoteAuth.LoadToken(path)
	if err != nil {
		fmt.Printf("no usable token at %s (%v)\n", path, err)
		fmt.Println("run 'gridkv auth login' to authorize")
		return nil
	}

	fmt.Printf("token file: %s\n", path)
	fmt.Printf("access token valid: %t\n", token.Valid())
	if !token.Expiry.IsZero() {
		fmt.Printf("access token expires: %s\n", token.Expiry.Format(time.RFC3339))
	}
	if token.RefreshToken != "" {
		fmt.Println("refresh token present, expired access tokens renew automatically")
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/theakshaypant/concertdb/internal/backup"
)

const redirectPort = "8085"

var authCmd = &cobra.Command{
	Use:   "auth [gdrive|onedrive]",
	Short: "Authorize a cloud backup driver",
	Long: `Authorize concertdb to store backups in Google Drive or OneDrive.

  1. Starts a local server to receive the OAuth callback
  2. Opens your browser to sign in
  3. Saves the token to token_file for later backup commands

Without an argument the configured backup.driver is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	driver := backup.Driver(viper.GetString("backup.driver"))
	if len(args) > 0 {
		driver = backup.Driver(args[0])
	}

	switch driver {
	case backup.DriverGDrive:
		return runGoogleAuth(cmd)
	case backup.DriverOneDrive:
		return runMicrosoftAuth(cmd)
	default:
		return fmt.Errorf("driver %q needs no authorization (supported: gdrive, onedrive)", driver)
	}
}

func runGoogleAuth(cmd *cobra.Command) error {
	credsFile := expandPath(viper.GetString("credentials_file"))
	tokenFile := expandPath(viper.GetString("token_file"))

	config, err := backup.GoogleOAuthConfig(credsFile)
	if err != nil {
		return err
	}

	tok, err := getTokenViaLocalServer(cmd.Context(), config, "Google", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	return finishAuth(tokenFile, tok, "gdrive")
}

func runMicrosoftAuth(cmd *cobra.Command) error {
	clientID := viper.GetString("client_id")
	if clientID == "" {
		return fmt.Errorf("client_id not configured\n\nAdd it to your profile config:\n  client_id: \"your-azure-app-client-id\"")
	}
	tokenFile := expandPath(viper.GetString("token_file"))

	config := backup.MicrosoftOAuthConfig(clientID, viper.GetString("tenant_id"))
	tok, err := getTokenViaLocalServer(cmd.Context(), config, "Microsoft", oauth2.SetAuthURLParam("prompt", "consent"))
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	return finishAuth(tokenFile, tok, "onedrive")
}

func finishAuth(tokenFile string, tok *oauth2.Token, driver string) error {
	if err := backup.SaveToken(tokenFile, tok); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Println("\n✅ Authentication successful!")
	fmt.Printf("📁 Token saved to %s\n", tokenFile)
	fmt.Printf("\nYou can now run 'concertdb backup push --driver %s'.\n", driver)
	return nil
}

func getTokenViaLocalServer(ctx context.Context, config *oauth2.Config, providerName string, authOpts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	server := &http.Server{Addr: ":" + redirectPort}
	mux := http.NewServeMux()

	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errMsg := r.URL.Query().Get("error")
			http.Error(w, "Authorization failed: "+errMsg, http.StatusBadRequest)
			errChan <- fmt.Errorf("authorization failed: %s", errMsg)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>concertdb authorized</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 20vh;">
	<h1>Authorization Successful</h1>
	<p>You can close this window and return to the terminal.</p>
</body>
</html>`)

		codeChan <- code
	})

	server.Handler = mux

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := config.AuthCodeURL("state-token", authOpts...)

	fmt.Printf("🔐 Opening browser for %s authorization...\n\n", providerName)

	if err := openBrowser(authURL); err != nil {
		fmt.Println("⚠️  Couldn't open browser automatically.")
		fmt.Println("   Please open this URL manually:")
		fmt.Println(authURL)
	}

	fmt.Println("⏳ Waiting for authorization...")

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("timeout waiting for authorization")
	}

	tok, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return tok, nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}

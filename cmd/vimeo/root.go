package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	vimeo "github.com/videolib/vimeo-go"
	"github.com/videolib/vimeo-go/internal/tokenfile"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagVerbose   bool
	flagQuiet     bool
	flagTokenFile string
)

// Environment variables carrying application credentials.
const (
	envClientID     = "VIMEO_CLIENT_ID"
	envClientSecret = "VIMEO_CLIENT_SECRET"
	envAccessToken  = "VIMEO_ACCESS_TOKEN"
)

// newRootCmd builds the fully-assembled root command. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vimeo",
		Short:   "Vimeo API client",
		Long:    "A CLI for the Vimeo API: OAuth flows, generic requests, and resumable video uploads.",
		Version: version,
		// Silence cobra's default error/usage printing — main() handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Credentials may live in a .env file next to the working
			// directory. A missing file is not an error.
			_ = godotenv.Load()

			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")
	cmd.PersistentFlags().StringVar(&flagTokenFile, "token-file", "", "token file path (default: user config dir)")

	cmd.AddCommand(newAuthURLCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newReplaceCmd())

	return cmd
}

// buildLogger creates an slog.Logger honoring --verbose and --quiet.
func buildLogger() *slog.Logger {
	level := slog.LevelWarn

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// tokenPath resolves the token file location: --token-file wins, otherwise
// the platform user config directory.
func tokenPath() (string, error) {
	if flagTokenFile != "" {
		return flagTokenFile, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}

	return filepath.Join(dir, "vimeo-go", "token.json"), nil
}

// newSDKClient builds a vimeo.Client from env credentials and, when no
// access token is present in the environment, a previously saved token file.
func newSDKClient(logger *slog.Logger) (*vimeo.Client, error) {
	creds := vimeo.Credentials{
		ClientID:     os.Getenv(envClientID),
		ClientSecret: os.Getenv(envClientSecret),
		AccessToken:  os.Getenv(envAccessToken),
	}

	if creds.AccessToken == "" {
		path, err := tokenPath()
		if err != nil {
			return nil, err
		}

		tok, _, err := tokenfile.Load(path)
		if err != nil {
			return nil, err
		}

		if tok != nil {
			creds.AccessToken = tok.AccessToken
		}
	}

	if creds.AccessToken == "" && (creds.ClientID == "" || creds.ClientSecret == "") {
		return nil, fmt.Errorf("no credentials: set %s or %s/%s, or run 'vimeo login'",
			envAccessToken, envClientID, envClientSecret)
	}

	return vimeo.NewClient(creds, vimeo.WithLogger(logger)), nil
}

// statusf prints informational output unless --quiet is set.
func statusf(format string, args ...any) {
	if flagQuiet {
		return
	}

	fmt.Printf(format, args...)
}

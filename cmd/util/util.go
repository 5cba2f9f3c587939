package util

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gridkv/gridkv/lib/store"
	"github.com/gridkv/gridkv/remote"
	"github.com/gridkv/gridkv/remote/auth"
	"github.com/gridkv/gridkv/remote/codec"
	"github.com/gridkv/gridkv/remote/memory"
	"github.com/gridkv/gridkv/remote/sheets"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the flags shared by all store-backed commands
func SetupStoreFlags(cmd *cobra.Command) {
	key := "spreadsheet"
	cmd.PersistentFlags().String(key, "", WrapString("The id of the remote document holding the store table"))

	key = "sheet"
	cmd.PersistentFlags().String(key, "Sheet1", WrapString("The title of the tab inside the document"))

	key = "name"
	cmd.PersistentFlags().String(key, "gridkv", WrapString("Store name used in logs and metrics"))

	key = "key-label"
	cmd.PersistentFlags().String(key, "key", WrapString("Expected header label of the key column"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds for a single remote call"))

	key = "retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to attempt a retryable remote call"))

	key = "rate-limit"
	cmd.PersistentFlags().Float64(key, 1.0, WrapString("Remote request rate limit in requests per second (0 for unlimited)"))

	SetupAuthFlags(cmd)
}

// SetupAuthFlags adds the flags locating the OAuth credential files
func SetupAuthFlags(cmd *cobra.Command) {
	key := "credentials"
	cmd.PersistentFlags().String(key, "credentials.json", WrapString("Path to the application credentials JSON file"))

	key = "token"
	cmd.PersistentFlags().String(key, "token.json", WrapString("Path to the stored user token"))

	key = "save-token"
	cmd.PersistentFlags().Bool(key, true, WrapString("Persist a freshly granted token to the token file"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("gridkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetTableConfig reads the remote table configuration from viper
func GetTableConfig() remote.TableConfig {
	return remote.TableConfig{
		SpreadsheetID: viper.GetString("spreadsheet"),
		Sheet:         viper.GetString("sheet"),
		TimeoutSecond: viper.GetInt("timeout"),
		RetryCount:    viper.GetInt("retries"),
		RatePerSecond: viper.GetFloat64("rate-limit"),
	}
}

// GetAuthOptions reads the authorization options from viper
func GetAuthOptions(logger *slog.Logger) auth.Options {
	return auth.Options{
		CredentialsFile: viper.GetString("credentials"),
		TokenFile:       viper.GetString("token"),
		SaveToken:       viper.GetBool("save-token"),
		Logger:          logger,
	}
}

// GetCodec creates a cell codec based on configuration
func GetCodec() (codec.ICellCodec, error) {
	switch viper.GetString("codec") {
	case "json":
		return codec.NewJSONCodec(), nil
	case "yaml":
		return codec.NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("invalid codec %s", viper.GetString("codec"))
	}
}

// GetTableFactory creates the table client factory based on configuration.
// The factory itself runs inside the store's Open call, so credential and
// connection errors surface there.
func GetTableFactory(logger *slog.Logger) (store.TableFactory, error) {
	switch viper.GetString("backend") {
	case "sheets":
		config := GetTableConfig()
		authOpts := GetAuthOptions(logger)
		return func(ctx context.Context) (remote.ITableClient, error) {
			httpClient, err := auth.Client(ctx, authOpts)
			if err != nil {
				return nil, err
			}
			return sheets.New(config, httpClient, logger)
		}, nil
	case "memory":
		return func(ctx context.Context) (remote.ITableClient, error) {
			return memory.New(), nil
		}, nil
	default:
		return nil, fmt.Errorf("invalid backend %s", viper.GetString("backend"))
	}
}

// NewLogger creates the CLI logger based on configuration
func NewLogger() *slog.Logger {
	var level slog.Level
	switch viper.GetString("log-level") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

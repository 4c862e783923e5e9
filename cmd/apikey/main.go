package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"archedit/internal/infra"
	"archedit/internal/infra/credentials"
)

const opTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage the Gemini API key used by the editor",
	Long: `apikey reads and writes the API key in the configured credential
backend (CREDENTIAL_BACKEND=file|postgres|redis).

Saved keys are valid for 24 hours. After that the editor asks for a new one.`,
	SilenceUsage: true,
}

var setCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Validate and save a key (falls back to GEMINI_API_KEY)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSet,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the masked key and its expiry",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved key",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(setCmd, showCmd, clearCmd)
}

func main() {
	_ = godotenv.Load(".env.local", ".env")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (*credentials.Store, func(), error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "apikey").Logger()
	kv, closeKV, err := credentials.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return credentials.NewStore(kv), closeKV, nil
}

func runSet(cmd *cobra.Command, args []string) error {
	key := ""
	if len(args) == 1 {
		key = args[0]
	}
	if strings.TrimSpace(key) == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
	defer cancel()
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	cred, err := store.Save(ctx, key)
	if err != nil {
		return fmt.Errorf("save api key: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s (expires %s)\n", cred.Masked(), cred.ExpiresAt.Format(time.RFC3339))
	return nil
}

func runShow(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
	defer cancel()
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	cred, ok, err := store.Resolve(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintln(out, "no api key saved (or the saved key expired)")
		return nil
	}
	if cred.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "%s (source %s, no expiry)\n", cred.Masked(), cred.Source)
		return nil
	}
	fmt.Fprintf(out, "%s (source %s, expires %s)\n", cred.Masked(), cred.Source, cred.ExpiresAt.Format(time.RFC3339))
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
	defer cancel()
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "api key removed")
	return nil
}

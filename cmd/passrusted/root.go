package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/PRATIKK0709/PassRusted/internal/passgen"
	"github.com/PRATIKK0709/PassRusted/internal/vault"
)

const (
	defaultDatabasePath = "passwords.db"
	timestampFormat     = "2006-01-02 15:04:05"
)

var (
	BuildVersion  = `(missing)`
	BuildShortSHA = `(missing)`
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleTitle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleService = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleDetail  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleDim     = lipgloss.NewStyle().Faint(true)
)

func Main(ctx context.Context, args []string, output io.Writer) error {
	rootCmd := &cobra.Command{
		Use:     "passrusted",
		Short:   "A local, single-user encrypted password vault.",
		Version: BuildShortSHA,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}

			setupLogging(verbose, cmd.ErrOrStderr())

			return nil
		},
	}
	rootCmd.SetOut(output)
	rootCmd.SetArgs(args[1:])
	rootCmd.PersistentFlags().StringP("database-path", "d", defaultDatabasePath, "path to the vault `file`")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAddCommand())
	rootCmd.AddCommand(newGetCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newDeleteCommand())
	rootCmd.AddCommand(newUpdateCommand())

	return rootCmd.ExecuteContext(ctx)
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "init",
		Short:   "initialize a new vault",
		Example: "passrusted init --database-path vault.db",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if store.IsInitialized() {
				fmt.Fprintln(out, styleWarn.Render("Database already initialized!"))
				return nil
			}

			fmt.Fprintln(out, styleTitle.Render("Initializing secure password database..."))

			password, err := PromptPassword(nil, cmd.ErrOrStderr(), "Enter master password: ", "Confirm master password: ")
			if err != nil {
				return err
			}
			defer ZeroPassword(password)

			if err := store.Initialize(cmd.Context(), password); err != nil {
				return err
			}

			fmt.Fprintln(out, styleSuccess.Render("Database initialized successfully!"))
			return nil
		},
	}
}

func newAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add <service>",
		Short:   "add a credential entry",
		Example: "passrusted add github --username alice",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := args[0]

			username, err := cmd.Flags().GetString("username")
			if err != nil {
				return fmt.Errorf("failed to get username flag: %w", err)
			}

			store, err := authenticatedStore(cmd)
			if err != nil {
				return err
			}

			if username == "" {
				username, err = ReadLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Username: ")
				if err != nil {
					return err
				}
			}

			password, err := choosePassword(cmd, "Enter password: ")
			if err != nil {
				return err
			}

			if _, err := store.Add(service, username, password); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Password added for %s (%s)\n",
				styleSuccess.Render("✓"), styleTitle.Render(service), username)
			return nil
		},
	}

	cmd.Flags().StringP("username", "u", "", "username for the entry")

	return cmd
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "get <service>",
		Short:   "show a credential entry",
		Example: "passrusted get github",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := args[0]

			store, err := authenticatedStore(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			entry, err := store.Get(service)
			if errors.Is(err, vault.ErrNoEntry) {
				fmt.Fprintln(out, styleError.Render(fmt.Sprintf("No entry found for service: %s", service)))
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, styleTitle.Render("Password Entry"))
			fmt.Fprintf(out, "Service: %s\n", styleService.Render(entry.Service))
			fmt.Fprintf(out, "Username: %s\n", styleService.Render(entry.Username))
			fmt.Fprintf(out, "Password: %s\n", styleSuccess.Render(entry.Password))
			fmt.Fprintf(out, "Created: %s\n", styleDetail.Render(entry.CreatedAt.Format(timestampFormat)))
			fmt.Fprintf(out, "Updated: %s\n", styleDetail.Render(entry.UpdatedAt.Format(timestampFormat)))
			return nil
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "list all stored entries",
		Example: "passrusted list",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := authenticatedStore(cmd)
			if err != nil {
				return err
			}

			entries, err := store.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if len(entries) == 0 {
				fmt.Fprintln(out, styleWarn.Render("No passwords stored yet."))
				return nil
			}

			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Service < entries[j].Service
			})

			fmt.Fprintln(out, styleTitle.Render("Stored Passwords:"))
			for _, entry := range entries {
				fmt.Fprintf(out, "%s %s (%s)\n",
					styleSuccess.Render("•"),
					styleService.Render(entry.Service),
					styleDetail.Render(entry.Username))
				fmt.Fprintf(out, "  %s\n",
					styleDim.Render("Last updated: "+entry.UpdatedAt.Format(timestampFormat)))
			}
			return nil
		},
	}
}

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "generate a random password",
		Example: "passrusted generate --length 24 --include-symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			length, err := cmd.Flags().GetInt("length")
			if err != nil {
				return fmt.Errorf("failed to get length flag: %w", err)
			}

			includeSymbols, err := cmd.Flags().GetBool("include-symbols")
			if err != nil {
				return fmt.Errorf("failed to get include-symbols flag: %w", err)
			}

			password, err := passgen.Generate(length, includeSymbols)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styleTitle.Render("Generated Password:"))
			fmt.Fprintln(out, styleSuccess.Render(password))
			return nil
		},
	}

	cmd.Flags().IntP("length", "l", passgen.DefaultLength, "password length")
	cmd.Flags().BoolP("include-symbols", "s", false, "include symbols")

	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <service>",
		Short:   "delete a credential entry",
		Example: "passrusted delete github",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := args[0]

			store, err := authenticatedStore(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if _, err := store.Get(service); errors.Is(err, vault.ErrNoEntry) {
				fmt.Fprintln(out, styleError.Render(fmt.Sprintf("No entry found for service: %s", service)))
				return nil
			} else if err != nil {
				return err
			}

			prompt := fmt.Sprintf("Are you sure you want to delete the entry for '%s'? (y/N): ", service)
			confirmation, err := ReadLine(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt)
			if err != nil {
				return err
			}

			if confirmation != "y" && confirmation != "Y" {
				fmt.Fprintln(out, "Deletion cancelled.")
				return nil
			}

			if err := store.Delete(service); err != nil {
				return err
			}

			fmt.Fprintf(out, "%s Entry deleted for %s\n", styleSuccess.Render("✓"), styleTitle.Render(service))
			return nil
		},
	}
}

func newUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "update <service>",
		Short:   "update the password of an entry",
		Example: "passrusted update github",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := args[0]

			store, err := authenticatedStore(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if _, err := store.Get(service); errors.Is(err, vault.ErrNoEntry) {
				fmt.Fprintln(out, styleError.Render(fmt.Sprintf("No entry found for service: %s", service)))
				return nil
			} else if err != nil {
				return err
			}

			password, err := choosePassword(cmd, "Enter new password: ")
			if err != nil {
				return err
			}

			if err := store.UpdatePassword(service, password); err != nil {
				return err
			}

			fmt.Fprintf(out, "%s Password updated for %s\n", styleSuccess.Render("✓"), styleTitle.Render(service))
			return nil
		},
	}
}

func openStore(cmd *cobra.Command) (*vault.Store, error) {
	path, err := cmd.Flags().GetString("database-path")
	if err != nil {
		return nil, fmt.Errorf("failed to get database-path flag: %w", err)
	}

	return vault.Open(path, vault.WithLogger(slog.Default()))
}

// authenticatedStore opens the vault at the configured path and unlocks it
// with a prompted master password.
func authenticatedStore(cmd *cobra.Command) (*vault.Store, error) {
	store, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	if !store.IsInitialized() {
		return nil, errors.New("database not initialized. Run 'init' command first")
	}

	password, err := PromptPassword(nil, cmd.ErrOrStderr(), "Master password: ", "")
	if err != nil {
		return nil, err
	}
	defer ZeroPassword(password)

	ok, err := store.Authenticate(cmd.Context(), password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, errors.New("invalid master password")
	}

	return store, nil
}

// choosePassword offers the generate-or-type choice shared by add and update.
func choosePassword(cmd *cobra.Command, enterPrompt string) (string, error) {
	errOut := cmd.ErrOrStderr()

	fmt.Fprintln(errOut, "Choose password option:")
	fmt.Fprintln(errOut, "1. Generate random password")
	fmt.Fprintln(errOut, "2. Enter custom password")

	choice, err := ReadLine(cmd.InOrStdin(), errOut, "Choice (1/2): ")
	if err != nil {
		return "", err
	}

	switch choice {
	case "1":
		return passgen.Generate(passgen.DefaultLength, true)
	case "2":
		password, err := PromptPassword(nil, errOut, enterPrompt, "")
		if err != nil {
			return "", err
		}

		return string(password), nil
	default:
		return "", fmt.Errorf("invalid choice: %s", strconv.Quote(choice))
	}
}

func setupLogging(verbose bool, output io.Writer) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultDBPath = "expenses.db"

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := newAddUserCommand(stdin)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(context.Background())
}

type addUserOptions struct {
	email     string
	password  string
	firstName string
	lastName  string
	dbPath    string
}

func newAddUserCommand(stdin io.Reader) *cobra.Command {
	var opts addUserOptions

	cmd := &cobra.Command{
		Use:   "adduser --email <email> [--password <password>] [--db <db_path>]",
		Short: "Create a user account",
		Long: "Create a user account in the finance tracker database.\n" +
			"The password is prompted for when --password is omitted.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// DB_PATH applies unless --db was given explicitly
			if path := os.Getenv("DB_PATH"); path != "" && !cmd.Flags().Changed("db") {
				opts.dbPath = path
			}
			return addUser(cmd.Context(), opts, stdin, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "Email address used to log in")
	cmd.Flags().StringVar(&opts.password, "password", "", "Password (optional, will prompt if omitted)")
	cmd.Flags().StringVar(&opts.firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&opts.lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&opts.dbPath, "db", defaultDBPath, "Path to database file")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func addUser(ctx context.Context, opts addUserOptions, stdin io.Reader, stdout io.Writer) error {
	email := strings.TrimSpace(opts.email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address %q", opts.email)
	}

	password := opts.password
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // Print newline after password input
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	db, err := storage.NewDB(opts.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if existing, err := db.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return fmt.Errorf("user %s already exists", email)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := db.CreateUser(ctx, models.User{
		FirstName:    opts.firstName,
		LastName:     opts.lastName,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Email, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

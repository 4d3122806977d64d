package cli

import (
	"errors"
	"fmt"

	"driver_dashboard/internal/repository"
	"driver_dashboard/internal/service"
	"driver_dashboard/internal/utils"

	"github.com/spf13/cobra"
)

// NewCreateUserCommand creates the create-user command.
func NewCreateUserCommand(rootOpts *RootOptions) *cobra.Command {
	var username, name, role, password string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a dashboard account with a bcrypt-hashed password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			store, err := repository.Open(cmd.Context(), cfg, rootOpts.Log)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer store.Close()

			auth := service.NewAuthService(store.Users, service.NewBcryptAuthenticator(store.Users),
				utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpirationHours), rootOpts.Log)

			user, err := auth.CreateUser(cmd.Context(), username, name, role, password)
			if err != nil {
				if errors.Is(err, service.ErrUserAlreadyExists) {
					return fmt.Errorf("user %q already exists", username)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, role %s)\n", user.Username, user.ID, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", "partner", "admin or partner")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 6 characters (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// NewHashPasswordCommand creates the hash-password command.
func NewHashPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password for a users file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := utils.HashPassword(args[0])
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

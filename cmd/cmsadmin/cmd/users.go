package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/upeosoft/cms/internal/common"
	"github.com/upeosoft/cms/internal/server/auth"
	"github.com/upeosoft/cms/internal/server/models"
	"github.com/upeosoft/cms/internal/server/services"
)

func newUsersCmd(d *deps, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage CMS accounts",
	}
	cmd.AddCommand(newUsersCreateCmd(d, opts))
	cmd.AddCommand(newUsersSetRoleCmd(d, opts))
	return cmd
}

type createOptions struct {
	username  string
	email     string
	password  string
	role      string
	firstName string
	lastName  string
}

func newUsersCreateCmd(d *deps, opts *rootOptions) *cobra.Command {
	o := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account with any role",
		Example: `  cmsadmin users create --username admin --email admin@example.com --role admin
  cmsadmin users create --username editor --email ed@example.com --password s3cret!`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.username == "" {
				return errors.New("--username flag is required")
			}
			if o.email == "" {
				return errors.New("--email flag is required")
			}
			role, err := auth.ParseRole(o.role)
			if err != nil {
				return err
			}

			password := []byte(o.password)
			if len(password) == 0 {
				password, err = promptPassword(cmd.ErrOrStderr(), d.readPassword)
				if err != nil {
					return err
				}
			}
			defer common.WipeByteArray(password)

			ctx := cmd.Context()
			return withUserService(ctx, d, opts, func(us *services.UserService) error {
				u, err := us.CreateUser(ctx, services.NewUser{
					Username: o.username,
					Email:    o.email,
					Password: string(password),
					Role:     role,
					Profile:  models.Profile{FirstName: o.firstName, LastName: o.lastName},
				})
				if err != nil {
					return fmt.Errorf("failed to create user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s, role %s)\n", u.Username, u.ID, u.Role)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.username, "username", "", "login name (required)")
	f.StringVar(&o.email, "email", "", "email address (required)")
	f.StringVar(&o.password, "password", "", "password; prompted without echo when omitted")
	f.StringVar(&o.role, "role", string(auth.RoleUser), "user or admin")
	f.StringVar(&o.firstName, "first-name", "", "first name")
	f.StringVar(&o.lastName, "last-name", "", "last name")
	return cmd
}

func newUsersSetRoleCmd(d *deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "set-role <email|username> <role>",
		Short:   "Change the role of an existing account",
		Example: "  cmsadmin users set-role admin@example.com admin",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withUserService(ctx, d, opts, func(us *services.UserService) error {
				u, err := us.SetRoleByLogin(ctx, args[0], args[1])
				if err != nil {
					if errors.Is(err, common.ErrorNotFound) {
						return fmt.Errorf("no account matches %q", args[0])
					}
					return fmt.Errorf("failed to set role: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s now has role %s\n", u.Username, u.Role)
				return nil
			})
		},
	}
}

// withUserService opens the database and hands fn a UserService. The token
// authority gets a throwaway secret: the CLI never issues tokens.
func withUserService(ctx context.Context, d *deps, opts *rootOptions, fn func(*services.UserService) error) error {
	hasher, err := auth.NewHasher(opts.cfg.BcryptCost)
	if err != nil {
		return err
	}
	secret, err := common.MakeRandHexString(32)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenAuthority(secret, opts.cfg.TokenValidityDuration)
	if err != nil {
		return err
	}

	db, err := opts.open(ctx, d)
	if err != nil {
		return err
	}
	defer db.Close()

	us, err := services.NewUserService(db, d.manager(), hasher, tokens, d.logger)
	if err != nil {
		return err
	}
	return fn(us)
}

func promptPassword(w io.Writer, read func(int) ([]byte, error)) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	fmt.Fprint(w, "Enter password: ")
	first, err := read(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(w, "Repeat password: ")
	second, err := read(fd)
	fmt.Fprintln(w)
	defer common.WipeByteArray(second)
	if err != nil {
		common.WipeByteArray(first)
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	if !bytes.Equal(first, second) {
		common.WipeByteArray(first)
		return nil, errors.New("passwords do not match")
	}
	if len(first) == 0 {
		return nil, errors.New("password is required")
	}
	return first, nil
}

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/alert"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/validation"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/app"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/auth"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/config"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/database"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/dynamo"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := app.LoadEnvironment(ctx)
			if err != nil {
				return err
			}
			db, err := database.New(ctx, env.Config.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := db.Migrate(ctx)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "applied", v)
			}
			return nil
		},
	}
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage platform users",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			organisation, _ := cmd.Flags().GetString("organisation")
			admin, _ := cmd.Flags().GetBool("admin")

			if errs := validation.ValidateRegisterUserRequest(validation.RegisterUserRequest{
				Username:     username,
				Password:     password,
				Email:        email,
				Name:         name,
				Organisation: organisation,
			}); len(errs) > 0 {
				return fieldErrors(errs)
			}

			ctx := cmd.Context()
			svc, closeDB, err := openUsers(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			u := &auth.User{Username: username, Email: email, Name: name, Organisation: organisation}
			if admin {
				u.Capabilities = []auth.Capability{{Name: "Admin", Value: auth.PrivilegedRole}}
			}
			if err := svc.Register(ctx, u, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", username)
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Username (required)")
	createCmd.Flags().String("password", "", "Initial password (required)")
	createCmd.Flags().String("email", "", "Email address (required)")
	createCmd.Flags().String("name", "", "Display name (required)")
	createCmd.Flags().String("organisation", "", "Organisation (required)")
	createCmd.Flags().Bool("admin", false, "Grant the system administrator capability")
	cmd.AddCommand(createCmd)

	grantCmd := &cobra.Command{
		Use:   "grant",
		Short: "Add or replace a capability on a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, _ := cmd.Flags().GetString("username")
			capName, _ := cmd.Flags().GetString("capability")
			value, _ := cmd.Flags().GetString("value")
			if username == "" || capName == "" {
				return fmt.Errorf("--username and --capability are required")
			}

			ctx := cmd.Context()
			repo, closeDB, err := openUserRepo(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			u, err := repo.GetByUsername(ctx, username)
			if err != nil {
				return err
			}
			caps := grant(u.Capabilities, auth.Capability{Name: capName, Value: value})
			if _, err := repo.UpdateCapabilities(ctx, username, caps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted %s=%s to %s\n", capName, value, username)
			return nil
		},
	}
	grantCmd.Flags().String("username", "", "Username (required)")
	grantCmd.Flags().String("capability", "", "Capability name (required)")
	grantCmd.Flags().String("value", "", "Capability value")
	cmd.AddCommand(grantCmd)

	return cmd
}

func alertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Manage system alerts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Archive every system alert whose end date has passed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := app.LoadEnvironment(ctx)
			if err != nil {
				return err
			}
			ddb := dynamo.NewClient(env.AWS, env.Config.DynamoEndpoint)
			repo := alert.NewRepository(ddb, dynamo.TableName(env.Config.TablePrefix, alert.Table))

			archived, err := alert.NewSweeper(repo, 0).Sweep(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %d alert(s)\n", len(archived))
			for _, id := range archived {
				fmt.Fprintln(cmd.OutOrStdout(), " ", id)
			}
			return nil
		},
	})
	return cmd
}

func secretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Inspect secret store access",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load SECRET_GROUPS and report which groups and keys resolved",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := app.LoadEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), secretsReport(env))
			if len(env.Secrets.Failed) > 0 {
				return fmt.Errorf("%d secret group(s) failed to load", len(env.Secrets.Failed))
			}
			return nil
		},
	})
	return cmd
}

func openUserRepo(cmd *cobra.Command) (auth.UserRepository, func(), error) {
	ctx := cmd.Context()
	env, err := app.LoadEnvironment(ctx)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.New(ctx, env.Config.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewRepository(db.Pool()), db.Close, nil
}

func openUsers(cmd *cobra.Command) (*auth.Service, func(), error) {
	ctx := cmd.Context()
	env, err := app.LoadEnvironment(ctx)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.New(ctx, env.Config.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return newUserService(db, env.Config), db.Close, nil
}

func newUserService(db *database.DB, cfg *config.Config) *auth.Service {
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	return auth.NewService(auth.NewRepository(db.Pool()), tokens, cfg.BcryptCost)
}

// grant returns caps with c added, replacing any capability of the same name.
func grant(caps []auth.Capability, c auth.Capability) []auth.Capability {
	out := make([]auth.Capability, 0, len(caps)+1)
	for _, existing := range caps {
		if existing.Name != c.Name {
			out = append(out, existing)
		}
	}
	return append(out, c)
}

func secretsReport(env *app.Environment) string {
	var b strings.Builder
	res := env.Secrets
	fmt.Fprintf(&b, "loaded groups: %s\n", strings.Join(res.Loaded, ", "))

	failed := make([]string, 0, len(res.Failed))
	for g := range res.Failed {
		failed = append(failed, g)
	}
	sort.Strings(failed)
	for _, g := range failed {
		fmt.Fprintf(&b, "failed group %s: %v\n", g, res.Failed[g])
	}
	fmt.Fprintf(&b, "keys: %s\n", strings.Join(res.Keys, ", "))
	return b.String()
}

func fieldErrors(errs []validation.FieldError) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
}

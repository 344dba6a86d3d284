// Command gymctl administers the gym portal database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gymportal/internal/adapters/storage"
	accountStore "gymportal/internal/adapters/storage/account"
	memberStore "gymportal/internal/adapters/storage/member"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/config"
	"gymportal/internal/domain/account"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath string

	root := &cobra.Command{
		Use:           "gymctl",
		Short:         "Gym portal administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", config.DBPath(), "SQLite database path")

	root.AddCommand(newSeedMembersCmd(&dbPath))
	root.AddCommand(newCreateAccountCmd(&dbPath))
	root.AddCommand(newListAccountsCmd(&dbPath))
	return root
}

type stores struct {
	db       *sql.DB
	accounts *accountStore.SQLiteStore
	members  *memberStore.SQLiteStore
}

// openStores opens and migrates the database. Callers must Close it.
func openStores(path string) (*stores, error) {
	db, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	if err := storage.MigrateDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &stores{
		db:       db,
		accounts: accountStore.NewSQLiteStore(db),
		members:  memberStore.NewSQLiteStore(db),
	}, nil
}

func (s *stores) Close() error { return s.db.Close() }

func newID() string { return uuid.New().String() }

func newSeedMembersCmd(dbPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-members --file <members.yaml>",
		Short: "Import members from a YAML file; existing emails are updated",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(file) == "" {
				return fmt.Errorf("--file is required")
			}
			seeds, err := readSeedFile(file)
			if err != nil {
				return err
			}
			st, err := openStores(*dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := orchestrators.ExecuteSeedMembers(context.Background(), seeds, orchestrators.SeedMembersDeps{
				MemberStore: st.members,
				GenerateID:  newID,
				Now:         time.Now,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "members: %d created, %d updated, %d unchanged\n", res.Created, res.Updated, res.Unchanged)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML seed file")
	return cmd
}

func newCreateAccountCmd(dbPath *string) *cobra.Command {
	var email, name, role, password string
	cmd := &cobra.Command{
		Use:   "create-account --email <email> --name <name> --role <role> --password <password>",
		Short: "Create a login account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := account.ParseRole(role)
			if err != nil {
				return err
			}
			if password == "" {
				password = os.Getenv("GYM_NEW_ACCOUNT_PASSWORD")
			}
			st, err := openStores(*dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			acct, err := orchestrators.ExecuteCreateAccount(context.Background(), orchestrators.CreateAccountInput{
				Email:    email,
				Name:     name,
				Password: password,
				Role:     r,
			}, orchestrators.CreateAccountDeps{
				AccountStore: st.accounts,
				GenerateID:   newID,
				Now:          time.Now,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s account %s (%s)\n", acct.Role, acct.Email, acct.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", "member", "admin|trainer|member")
	cmd.Flags().StringVar(&password, "password", "", "password (or GYM_NEW_ACCOUNT_PASSWORD)")
	return cmd
}

func newListAccountsCmd(dbPath *string) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "list-accounts",
		Short: "List login accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := accountStore.ListFilter{}
			if role != "" {
				r, err := account.ParseRole(role)
				if err != nil {
					return err
				}
				filter.Role = r
			}
			st, err := openStores(*dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			accounts, err := st.accounts.List(context.Background(), filter)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no accounts")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "EMAIL\tNAME\tROLE\tCREATED")
			for _, a := range accounts {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Email, a.Name, a.Role, a.CreatedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "only list accounts with this role")
	return cmd
}

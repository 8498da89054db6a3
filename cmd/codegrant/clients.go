package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/app"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/domain"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/service"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errNoDatabase = errors.New("no client database configured (set --db or database.file)")

// clientView is how clients are printed and imported.
type clientView struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	RedirectURI string    `json:"redirect_uri" yaml:"redirect_uri"`
	Secret      string    `json:"secret,omitempty" yaml:"secret,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
}

func toView(c domain.Client, withSecret bool) clientView {
	v := clientView{ID: c.ID, Name: c.Name, RedirectURI: c.RedirectURI, CreatedAt: c.CreatedAt}
	if withSecret {
		v.Secret = c.Secret
	}
	return v
}

func newClientsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage clients stored in the sqlite registry",
	}

	cmd.AddCommand(newClientsAddCommand())
	cmd.AddCommand(newClientsListCommand())
	cmd.AddCommand(newClientsRemoveCommand())
	cmd.AddCommand(newClientsImportCommand())

	return cmd
}

// withAdmin opens the configured client store for the duration of fn.
func withAdmin(cmd *cobra.Command, fn func(*service.ClientAdmin) error) error {
	cfg, err := app.LoadConfig("", cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.DatabaseFile == "" {
		return errNoDatabase
	}

	st, err := app.OpenClientStore(cfg.DatabaseFile)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(&service.ClientAdmin{Store: st, Clock: clockwork.NewRealClock()})
}

func newClientsAddCommand() *cobra.Command {
	var name, redirectURI, secret, output string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a client; prints its id and secret once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAdmin(cmd, func(admin *service.ClientAdmin) error {
				c, err := admin.CreateClient(cmd.Context(), name, redirectURI, secret)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), output, toView(c, true))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "exact redirect URI the client will use")
	cmd.Flags().StringVar(&secret, "secret", "", "client secret (generated when empty)")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format (yaml, json)")
	_ = cmd.MarkFlagRequired("redirect-uri")

	return cmd
}

func newClientsListCommand() *cobra.Command {
	var output string
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAdmin(cmd, func(admin *service.ClientAdmin) error {
				clients, err := admin.ListClients(cmd.Context())
				if err != nil {
					return err
				}

				views := make([]clientView, 0, len(clients))
				for _, c := range clients {
					views = append(views, toView(c, showSecrets))
				}
				return render(cmd.OutOrStdout(), output, views)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format (yaml, json)")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "include client secrets")

	return cmd
}

func newClientsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <client-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a client",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(admin *service.ClientAdmin) error {
				if err := admin.DeleteClient(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newClientsImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml|->",
		Short: "Import a YAML list of clients in one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := readClients(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			return withAdmin(cmd, func(admin *service.ClientAdmin) error {
				if err := admin.ImportClients(cmd.Context(), clients); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d clients\n", len(clients))
				return nil
			})
		},
	}
}

func readClients(stdin io.Reader, path string) ([]domain.Client, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var views []clientView
	if err := yaml.Unmarshal(raw, &views); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	clients := make([]domain.Client, 0, len(views))
	for _, v := range views {
		clients = append(clients, domain.Client{
			ID:          v.ID,
			Name:        v.Name,
			RedirectURI: v.RedirectURI,
			Secret:      v.Secret,
			CreatedAt:   v.CreatedAt,
		})
	}
	return clients, nil
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"vetlab/internal/auth"
	"vetlab/internal/model"
	"vetlab/internal/repository"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func getNextNumberCmd(a *app) *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "next-number",
		Short: "Show the next procedure number",
		Long: `Show the procedure number the next record will receive when created
without one: NNNN-YYYY-L for the laboratory, NNNN-YYYY-V for quarantine.

Examples:
  labctl next-number
  labctl next-number --domain vet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				n   string
				err error
			)
			switch model.Domain(domain) {
			case model.DomainLab:
				n, err = a.lab.GetNextProcedureNumber(cmd.Context())
			case model.DomainVet:
				n, err = a.vet.GetNextShipmentNumber(cmd.Context())
			default:
				return fmt.Errorf("unknown domain %q (want lab or vet)", domain)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&domain, "domain", "d", string(model.DomainLab), "lab or vet")
	return cmd
}

func getSeedAdminCmd(a *app) *cobra.Command {
	var domain, name, username, password string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the program manager account",
		Long: `Create the single program_manager account. The role spans both domains,
so one account is enough; --domain only picks the document it is stored in.

Examples:
  labctl seed-admin --username admin --password 's3cret'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := model.UserInput{Name: name, Username: username, Password: password, Role: model.RoleProgramManager}
			var (
				u   *model.User
				err error
			)
			switch model.Domain(domain) {
			case model.DomainLab:
				u, err = a.lab.CreateUser(cmd.Context(), in)
			case model.DomainVet:
				u, err = a.vet.CreateUser(cmd.Context(), in)
			default:
				return fmt.Errorf("unknown domain %q (want lab or vet)", domain)
			}
			if errors.Is(err, repository.ErrProgramManagerExists) {
				fmt.Fprintln(cmd.OutOrStdout(), "A program manager already exists, nothing to do")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s (%s) in %s\n", u.Username, u.Role, domain)
			return nil
		},
	}
	cmd.Flags().StringVarP(&domain, "domain", "d", string(model.DomainLab), "document to store the account in")
	cmd.Flags().StringVar(&name, "name", "مدير البرنامج", "display name")
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (required)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func getLoginCmd(a *app) *cobra.Command {
	var domain, username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in the operator session",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.session.SignIn(cmd.Context(), username, password, model.Domain(domain))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s, %s)\n", u.Username, u.Role, u.Domain)
			return nil
		},
	}
	cmd.Flags().StringVarP(&domain, "domain", "d", string(model.DomainLab), "lab or vet")
	cmd.Flags().StringVarP(&username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func getLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the operator session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func getWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the operator session",
		RunE: func(cmd *cobra.Command, args []string) error {
			u := a.session.User()
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), a.session.State())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, %s)\n", a.session.State(), u.Username, u.Role, u.Domain)
			return nil
		},
	}
}

// requirePermission fails closed when no operator is signed in.
func requirePermission(a *app, perm string) error {
	if !a.session.HasPermission(perm) {
		return fmt.Errorf("permission %q required: sign in with labctl login", perm)
	}
	return nil
}

func getExportCmd(a *app) *cobra.Command {
	var domain, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a domain document as JSON",
		Long: `Write the whole lab or vet document as indented JSON, to stdout or --out.

Examples:
  labctl export --domain lab --out lab.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(a, auth.ExportData); err != nil {
				return err
			}
			doc, err := a.document(domain)
			if err != nil {
				return err
			}
			data, err := doc.Export(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%s)\n", out, humanize.Bytes(uint64(len(data))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&domain, "domain", "d", string(model.DomainLab), "lab or vet")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func getImportCmd(a *app) *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace a domain document with a JSON export",
		Long: `Replace the whole lab or vet document with the contents of FILE.
The file must parse as a document of that domain; missing collections are
created empty.

Examples:
  labctl import --domain vet vet.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(a, auth.ExportData); err != nil {
				return err
			}
			doc, err := a.document(domain)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if err := doc.Import(cmd.Context(), data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %s into %s\n", humanize.Bytes(uint64(len(data))), domain)
			return nil
		},
	}
	cmd.Flags().StringVarP(&domain, "domain", "d", string(model.DomainLab), "lab or vet")
	return cmd
}

type collectionCount struct {
	name  string
	count int
}

func labCounts(data []byte) ([]collectionCount, error) {
	var doc model.LabDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return []collectionCount{
		{"saved_samples", len(doc.SavedSamples)},
		{"samples", len(doc.Samples)},
		{"test_results", len(doc.TestResults)},
		{"inventory_items", len(doc.InventoryItems)},
		{"inventory_transactions", len(doc.InventoryTransactions)},
		{"users", len(doc.Users)},
		{"notifications", len(doc.Notifications)},
	}, nil
}

func vetCounts(data []byte) ([]collectionCount, error) {
	var doc model.VetDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return []collectionCount{
		{"animal_shipments", len(doc.AnimalShipments)},
		{"quarantine_traders", len(doc.QuarantineTraders)},
		{"users", len(doc.Users)},
		{"notifications", len(doc.Notifications)},
	}, nil
}

func getStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts and document sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, d := range []struct {
				domain model.Domain
				doc    document
				counts func([]byte) ([]collectionCount, error)
			}{
				{model.DomainLab, a.lab, labCounts},
				{model.DomainVet, a.vet, vetCounts},
			} {
				data, err := d.doc.Export(cmd.Context())
				if err != nil {
					return err
				}
				counts, err := d.counts(data)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", d.domain, humanize.Bytes(uint64(len(data))))
				for _, c := range counts {
					fmt.Fprintf(w, "  %s\t%s\n", c.name, humanize.Comma(int64(c.count)))
				}
			}
			return w.Flush()
		},
	}
}

func getPermissionsCmd(a *app) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Print the role permission table",
		RunE: func(cmd *cobra.Command, args []string) error {
			roles := a.table.Roles()
			if role != "" {
				if _, ok := a.table.Role(role); !ok {
					return fmt.Errorf("unknown role %q", role)
				}
				roles = []string{role}
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, name := range roles {
				r, _ := a.table.Role(name)
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, r.Domain, strings.Join(a.table.Permissions(name), ", "))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", "", "only this role")
	return cmd
}

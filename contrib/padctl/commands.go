// Package padctl implements a small command-line tool over the pad.ws
// SDK: listing, creating, renaming, deleting and sharing pads from the
// terminal.
package padctl

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	padws "github.com/padws/pad.go"
	"github.com/padws/pad.go/pkg/auth"
	"github.com/padws/pad.go/pkg/models"
)

// NewRootCommand builds the padctl command tree. The backend URL and the
// bearer token come from flags, falling back to the PADWS_URL and
// PADWS_TOKEN environment variables.
func NewRootCommand() *cobra.Command {
	var (
		url    string
		token  string
		client *padws.Client
	)

	root := &cobra.Command{
		Use:           "padctl",
		Short:         "Manage pad.ws pads from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = os.Getenv("PADWS_URL")
			}
			if token == "" {
				token = os.Getenv("PADWS_TOKEN")
			}
			if url == "" {
				return fmt.Errorf("backend URL required: pass --url or set PADWS_URL")
			}

			session := auth.NewSession()
			session.SetToken(token)
			client = padws.NewClient(url, session)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&url, "url", "", "pad.ws backend URL")
	root.PersistentFlags().StringVar(&token, "token", "", "bearer token")

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your pads",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSHARING\tUPDATED")
			for _, pad := range user.Pads {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					pad.ID, pad.Title, pad.SharingPolicy,
					pad.UpdatedAt.Local().Format(time.RFC3339))
			}
			return tw.Flush()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create a new pad",
		RunE: func(cmd *cobra.Command, args []string) error {
			pad, err := client.CreatePad(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", pad.ID, pad.Title)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a pad",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.RenamePad(cmd.Context(), args[0], args[1])
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a pad",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.DeletePad(cmd.Context(), args[0])
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "share <id> <public|private>",
		Short: "Change a pad's sharing policy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.SetSharing(cmd.Context(), args[0], models.SharingPolicy(args[1]))
		},
	})

	return root
}

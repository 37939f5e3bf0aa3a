package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/teemow/todoist-mcp/internal/pagination"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
)

func newCheckCmd() *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the Todoist API token and configuration",
		Long: `Load the configuration exactly as serve does, then call the Todoist API
to confirm the token works. Prints the account, its timezone and the number
of projects it can see.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			client, err := todoist.NewClient(cmd.Context(), cfg.ClientConfig())
			if err != nil {
				return fmt.Errorf("failed to create Todoist client: %w", err)
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), client)
		},
	}

	flags.registerCommon(cmd)
	return cmd
}

func runCheck(ctx context.Context, w io.Writer, client server.TodoistClient) error {
	if ctx == nil {
		ctx = context.Background()
	}

	user, err := client.GetUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	projects, err := pagination.DrainAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Project], error) {
		return client.GetProjects(ctx, todoist.PageArgs{Cursor: cursor})
	})
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	tz := user.TZInfo.Timezone
	if tz == "" {
		tz = "UTC"
	}
	fmt.Fprintf(w, "Authenticated as %s <%s>\n", user.FullName, user.Email)
	fmt.Fprintf(w, "  Timezone: %s\n", tz)
	fmt.Fprintf(w, "  Inbox project: %s\n", user.InboxProjectID)
	fmt.Fprintf(w, "  Projects: %d\n", len(projects))
	return nil
}

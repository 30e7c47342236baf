package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

const timeLayout = "2006-01-02 15:04"

func newListCmd(root *rootOptions) *cobra.Command {
	var filters domain.TicketFilters
	var status string

	c := &cobra.Command{
		Use:     "list",
		Short:   "List tickets",
		Args:    cobra.NoArgs,
		Example: `ticketctl list --status in_progress`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters.Status = domain.TicketStatus(status)
			if status != "" && !filters.Status.Valid() {
				return fmt.Errorf("invalid status %q", status)
			}

			root.store.FetchTickets(cmd.Context(), &filters)
			state := root.store.State()
			if state.Error != "" {
				return errors.New(state.Error)
			}
			return printTickets(cmd.OutOrStdout(), state.Tickets)
		},
	}

	c.Flags().StringVar(&status, "status", "", "Only tickets with this status")
	c.Flags().StringVar(&filters.ClientID, "client-id", "", "Only tickets of this client")
	c.Flags().StringVar(&filters.AssignedTo, "assigned-to", "", "Only tickets assigned to this user")
	return c
}

func newGetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root.store.FetchTicketByID(cmd.Context(), args[0])
			state := root.store.State()
			if state.Error != "" {
				return errors.New(state.Error)
			}
			if state.SelectedTicket == nil {
				return fmt.Errorf("ticket %s not found", args[0])
			}
			return printTicket(cmd.OutOrStdout(), state.SelectedTicket)
		},
	}
}

func newCreateCmd(root *rootOptions) *cobra.Command {
	var req domain.CreateTicketRequest
	var priority string

	c := &cobra.Command{
		Use:     "create",
		Short:   "Create a ticket",
		Args:    cobra.NoArgs,
		Example: `ticketctl create --title "VPN down" --body "Cannot connect since 9am" --priority high`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Priority = domain.TicketPriority(priority)
			if !req.Priority.Valid() {
				return fmt.Errorf("invalid priority %q", priority)
			}
			if req.ClientID == "" {
				req.ClientID = root.cfg.Form.DefaultClientID
			}

			ticket, err := root.store.CreateTicket(cmd.Context(), req)
			if err != nil {
				return errors.New(root.store.State().Error)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created ticket %s\n", ticket.ID)
			return err
		},
	}

	c.Flags().StringVar(&req.Title, "title", "", "Ticket title")
	c.Flags().StringVar(&req.Body, "body", "", "Ticket description")
	c.Flags().StringVar(&priority, "priority", string(domain.TicketPriorityMedium), "low, medium, high or urgent")
	c.Flags().StringVar(&req.ClientID, "client-id", "", "Client the ticket belongs to (defaults to DEFAULT_CLIENT_ID)")
	_ = c.MarkFlagRequired("title")
	_ = c.MarkFlagRequired("body")
	return c
}

func newStatsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count tickets per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root.store.FetchTickets(cmd.Context(), nil)
			if msg := root.store.State().Error; msg != "" {
				return errors.New(msg)
			}
			stats := root.store.TicketStats()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STATUS\tCOUNT")
			fmt.Fprintf(w, "new\t%d\n", stats.New)
			fmt.Fprintf(w, "processing\t%d\n", stats.Processing)
			fmt.Fprintf(w, "in_progress\t%d\n", stats.InProgress)
			fmt.Fprintf(w, "resolved\t%d\n", stats.Resolved)
			fmt.Fprintf(w, "closed\t%d\n", stats.Closed)
			fmt.Fprintf(w, "total\t%d\n", stats.Total)
			return w.Flush()
		},
	}
}

func printTickets(out io.Writer, tickets []domain.Ticket) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tCREATED")
	for _, t := range tickets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Priority, formatTime(t.CreatedAt))
	}
	return w.Flush()
}

func printTicket(out io.Writer, t *domain.Ticket) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", t.ID)
	fmt.Fprintf(w, "Title:\t%s\n", t.Title)
	fmt.Fprintf(w, "Status:\t%s\n", t.Status)
	fmt.Fprintf(w, "Priority:\t%s\n", t.Priority)
	if t.Client != nil {
		fmt.Fprintf(w, "Client:\t%s\n", t.Client.Name)
	}
	if t.AssignedUser != nil {
		fmt.Fprintf(w, "Assigned:\t%s\n", t.AssignedUser.Name)
	}
	fmt.Fprintf(w, "Created:\t%s\n", formatTime(t.CreatedAt))
	if t.ResolutionSteps != nil && *t.ResolutionSteps != "" {
		fmt.Fprintf(w, "Resolution:\t%s\n", *t.ResolutionSteps)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n%s\n", t.Body)
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/derWhity/eventqr/internal/client"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all events in ascending ID order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := client.NewEventListLoader(a.api, a.logger, client.WithLoadTimeout(a.conf.LoadTimeout.Std()))
			st := loader.Load(cmd.Context())
			if refresh && st.Phase == client.LoadReady {
				st = loader.Refresh(cmd.Context())
			}
			if st.Phase == client.LoadError {
				return errors.New(st.Message)
			}
			out := cmd.OutOrStdout()
			if len(st.Events) == 0 {
				fmt.Fprintln(out, "No events yet.")
				return nil
			}
			return writeEvents(out, st.Events)
		},
	}
	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Fetch the list a second time as a refresh")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 1 {
				return errors.Errorf("'%s' is no valid event ID", args[0])
			}
			ev, err := a.lookup.GetEvent(cmd.Context(), id)
			if err != nil {
				return describeLookupError(err, fmt.Sprintf("event #%d", id))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %d\n", ev.ID)
			fmt.Fprintf(out, "Name:        %s\n", ev.Name)
			fmt.Fprintf(out, "Date:        %s\n", ev.Date)
			fmt.Fprintf(out, "Description: %s\n", ev.Description)
			fmt.Fprintf(out, "QR code:     %s\n", ev.QRCode)
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var name, description, date string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if date != "" {
				d, err := models.ParseDate(date)
				if err != nil {
					return errors.Errorf("'%s' is no valid date - use YYYY-MM-DD", date)
				}
				day = d.In(time.Local)
			}
			out := cmd.OutOrStdout()
			opts := []client.SubmitterOption{
				client.WithSubmitTimeout(a.conf.SubmitTimeout.Std()),
				client.WithResetDelay(a.conf.ResetDelay.Std()),
			}
			if a.verbose {
				opts = append(opts, client.WithSubmitObserver(func(st client.SubmitState) {
					fmt.Fprintf(cmd.ErrOrStderr(), "form: %s\n", st.Phase)
				}))
			}
			sub := client.NewEventSubmitter(a.api, a.logger, opts...)
			defer sub.Close()
			st, err := sub.Submit(cmd.Context(), name, description, day)
			if st.Phase == client.SubmitFailed {
				return errors.New(st.Message)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, st.Message)
			if st.Created != nil {
				return writeEvents(out, []models.Event{*st.Created})
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the event")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the event")
	cmd.Flags().StringVar(&date, "date", "", "Date of the event as YYYY-MM-DD (defaults to today)")
	return cmd
}

func newProfilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List all profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.lookup.ListProfiles(cmd.Context())
			if err != nil {
				return describeLookupError(err, "profile list")
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, p := range list {
				fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Name)
			}
			return w.Flush()
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <id>",
		Short: "Show a single profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.lookup.GetProfile(cmd.Context(), args[0])
			if err != nil {
				return describeLookupError(err, fmt.Sprintf("profile '%s'", args[0]))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.ID, p.Name)
			return nil
		},
	}
}

// writeEvents prints the events as a table
func writeEvents(out io.Writer, events []models.Event) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tNAME\tDESCRIPTION")
	for _, ev := range events {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", ev.ID, ev.Date, ev.Name, ev.Description)
	}
	return w.Flush()
}

// describeLookupError turns a failed lookup into a message naming what has been looked up
func describeLookupError(err error, what string) error {
	var statusErr *client.HTTPStatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.StatusCode == 404:
		return errors.Errorf("%s does not exist", what)
	case client.IsTimeout(err):
		return errors.Errorf("%s: the server did not answer in time", what)
	case client.IsNetwork(err):
		return errors.Errorf("%s: the server cannot be reached", what)
	}
	return errors.Wrapf(err, "Failed to fetch %s", what)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/odemetakip/internal/command"
	"github.com/mmynk/odemetakip/internal/dispatch"
	"github.com/mmynk/odemetakip/internal/export"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/storage"
)

var (
	errEmptyName     = errors.New("name is required")
	errDuplicateName = errors.New("an athlete with this name already exists in the list")
	errLastList      = errors.New("the last list cannot be deleted")
	errNoAthlete     = errors.New("athlete not found")
)

func newInterpretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interpret TEXT...",
		Short: "Show how a command is read, without applying it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent := command.Interpret(joinArgs(args))
			out := cmd.OutOrStdout()

			state := "-"
			switch {
			case intent.IsPaid:
				state = "ödendi"
			case intent.IsUnpaid:
				state = "ödenmedi"
			}
			name := intent.NameFragment
			if intent.Broad() {
				name = "(herkes)"
			}

			fmt.Fprintf(out, "Durum: %s\n", state)
			fmt.Fprintf(out, "Aylar: %s\n", monthLabels(intent.Months))
			fmt.Fprintf(out, "İsim:  %s\n", name)

			err := intent.Err()
			if err == nil && len(intent.Months) == 0 {
				err = command.ErrNoMonth
			}
			if err != nil {
				fmt.Fprintln(out, command.Message(err))
			}
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage lists",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "Show every list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.resolveList(ctx, store, ""); err != nil {
				return err
			}
			lists, err := store.ListLists(ctx, "")
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLİSTE\tSPORCU")
			for _, l := range lists {
				athletes, err := store.ListAthletes(ctx, l.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\n", l.ID, l.Name, len(athletes))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME...",
		Short: "Create a list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			list := &models.List{Name: joinArgs(args)}
			if list.Name == "" {
				return errEmptyName
			}
			if err := store.CreateList(cmd.Context(), list); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Liste oluşturuldu: %s (%s)\n", list.Name, list.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename LIST NEW-NAME...",
		Short: "Rename a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			list, err := a.resolveList(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			name := joinArgs(args[1:])
			if err := store.RenameList(cmd.Context(), list.ID, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Liste yeniden adlandırıldı: %s\n", name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm LIST",
		Short: "Delete a list and its athletes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			list, err := a.resolveList(ctx, store, args[0])
			if err != nil {
				return err
			}
			lists, err := store.ListLists(ctx, "")
			if err != nil {
				return err
			}
			if len(lists) <= 1 {
				return errLastList
			}
			if err := store.DeleteList(ctx, list.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Liste silindi: %s\n", list.Name)
			return nil
		},
	})

	return cmd
}

func newAthleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "athlete",
		Aliases: []string{"sporcu"},
		Short:   "Manage the athletes of a list",
	}

	var search string
	ls := &cobra.Command{
		Use:   "ls",
		Short: "Show the payment table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, list, err := a.openList(cmd)
			if err != nil {
				return err
			}
			roster, err := loadRoster(cmd, store, list.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", list.Name)
			return writeTable(cmd.OutOrStdout(), command.Filter(roster, search))
		},
	}
	ls.Flags().StringVarP(&search, "search", "s", "", "only athletes whose name contains this text")
	cmd.AddCommand(ls)

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME...",
		Short: "Add an athlete with every month unpaid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, list, err := a.openList(cmd)
			if err != nil {
				return err
			}
			name := joinArgs(args)
			roster, err := loadRoster(cmd, store, list.ID)
			if err != nil {
				return err
			}
			if _, ok := command.FindByName(roster, name); ok {
				return fmt.Errorf("%w: %s", errDuplicateName, name)
			}
			athlete := &models.Athlete{ListID: list.ID, Name: name}
			if err := store.AddAthlete(cmd.Context(), athlete); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sporcu eklendi: %s\n", athlete.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm NAME...",
		Short: "Remove an athlete",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, list, err := a.openList(cmd)
			if err != nil {
				return err
			}
			roster, err := loadRoster(cmd, store, list.ID)
			if err != nil {
				return err
			}
			athlete, ok := command.FindByName(roster, joinArgs(args))
			if !ok {
				return fmt.Errorf("%w: %s", errNoAthlete, joinArgs(args))
			}
			if err := store.DeleteAthlete(cmd.Context(), athlete.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sporcu silindi: %s\n", athlete.Name)
			return nil
		},
	})

	return cmd
}

func newApplyCmd(a *app) *cobra.Command {
	var (
		search string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "apply TEXT...",
		Short: `Apply a payment command, e.g. "Ali ekim ödendi"`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, list, err := a.openList(cmd)
			if err != nil {
				return err
			}
			roster, err := loadRoster(cmd, store, list.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			intent := command.Interpret(joinArgs(args))
			updates, err := command.Plan(intent, command.Filter(roster, search))
			if err != nil {
				fmt.Fprintln(out, command.Message(err))
				return nil
			}

			if dryRun {
				fmt.Fprintf(out, "Önizleme: %s\n", command.Summary(intent, len(updates)))
				for _, u := range updates {
					fmt.Fprintf(out, "  %s\n", u.Name)
				}
				return nil
			}

			result := dispatch.Run(cmd.Context(), store, updates, a.cfg.Command.DispatchLimit)
			fmt.Fprintln(out, command.Summary(intent, len(result.Applied)))
			for _, f := range result.Failed {
				fmt.Fprintf(out, "  güncellenemedi: %s (%v)\n", f.Name, f.Err)
			}
			if !result.OK() && len(result.Applied) == 0 {
				return errors.New(command.MsgFailed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "limit the command to athletes whose name contains this text")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would change without writing")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the payment table as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, list, err := a.openList(cmd)
			if err != nil {
				return err
			}
			roster, err := loadRoster(cmd, store, list.ID)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return export.Write(cmd.OutOrStdout(), roster)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := export.Write(f, roster); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Add or update athletes from a CSV written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, list, err := a.openList(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			rows, err := export.Read(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			roster, err := loadRoster(cmd, store, list.ID)
			if err != nil {
				return err
			}
			var added, updated int
			for _, row := range rows {
				if existing, ok := command.FindByName(roster, row.Name); ok {
					if err := store.UpdateAthletePayments(ctx, existing.ID, row.Payments()); err != nil {
						return err
					}
					updated++
					continue
				}
				athlete := &models.Athlete{ListID: list.ID, Name: row.Name, Payments: row.Payments()}
				if err := store.AddAthlete(ctx, athlete); err != nil {
					return err
				}
				roster = append(roster, *athlete)
				added++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d sporcu eklendi, %d sporcu güncellendi\n", added, updated)
			return nil
		},
	}
}

// openList opens the store and resolves --list.
func (a *app) openList(cmd *cobra.Command) (storage.Store, *models.List, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, nil, err
	}
	list, err := a.resolveList(cmd.Context(), store, a.listRef)
	if err != nil {
		return nil, nil, err
	}
	return store, list, nil
}

func loadRoster(cmd *cobra.Command, store storage.Store, listID string) ([]models.Athlete, error) {
	rows, err := store.ListAthletes(cmd.Context(), listID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Athlete, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out, nil
}

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"filmtrack/internal/inventory"
)

func newFilmsCommand(ctx *commandContext) *cobra.Command {
	filmsCmd := &cobra.Command{
		Use:     "films",
		Aliases: []string{"film"},
		Short:   "Manage the film catalog",
	}
	filmsCmd.AddCommand(newFilmsAddCommand(ctx))
	filmsCmd.AddCommand(newFilmsListCommand(ctx))
	return filmsCmd
}

func newFilmsAddCommand(ctx *commandContext) *cobra.Command {
	var film inventory.NewFilm

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a film stock to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			film.Name = args[0]
			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				created, err := m.CreateFilm(c, film)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, created)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created film %d (%s)\n", created.ID, created.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&film.Brand, "brand", "", "Manufacturer")
	cmd.Flags().StringVar(&film.Format, "format", "", "Format, e.g. 135 or 120")
	cmd.Flags().IntVar(&film.ISO, "iso", 0, "Box speed")
	cmd.Flags().StringVar(&film.Process, "process", "", "Development process, e.g. C-41")
	return cmd
}

func newFilmsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				films, err := m.ListFilms(c)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, films)
				}
				out := cmd.OutOrStdout()
				if len(films) == 0 {
					fmt.Fprintln(out, "No films in the catalog")
					return nil
				}
				rows := make([][]string, 0, len(films))
				for _, film := range films {
					iso := "-"
					if film.ISO > 0 {
						iso = strconv.Itoa(film.ISO)
					}
					rows = append(rows, []string{
						strconv.FormatInt(film.ID, 10),
						film.Name,
						fallback(film.Brand, "-"),
						fallback(film.Format, "-"),
						iso,
						fallback(film.Process, "-"),
					})
				}
				fmt.Fprint(out, renderTable(out, []string{"ID", "Name", "Brand", "Format", "ISO", "Process"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
				return nil
			})
		},
	}
}

func newRollsCommand(ctx *commandContext) *cobra.Command {
	rollsCmd := &cobra.Command{
		Use:     "rolls",
		Aliases: []string{"roll"},
		Short:   "Manage rolls",
	}
	rollsCmd.AddCommand(newRollsAddCommand(ctx))
	rollsCmd.AddCommand(newRollsShowCommand(ctx))
	return rollsCmd
}

func newRollsAddCommand(ctx *commandContext) *cobra.Command {
	var roll inventory.NewRoll

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a roll that film items can be linked to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				created, err := m.CreateRoll(c, roll)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, created)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created roll %d\n", created.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&roll.Title, "title", "", "Roll title")
	cmd.Flags().StringVar(&roll.Camera, "camera", "", "Camera")
	cmd.Flags().StringVar(&roll.StartDate, "start", "", "Start date")
	cmd.Flags().StringVar(&roll.Notes, "notes", "", "Notes")
	return cmd
}

func newRollsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a roll and the purchase data copied onto it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "roll")
			if err != nil {
				return err
			}
			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				roll, err := m.GetRoll(c, id)
				if err != nil {
					return err
				}
				if roll == nil {
					return fmt.Errorf("roll %d not found", id)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, roll)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Roll %d\n", roll.ID)
				fmt.Fprintf(out, "  Title:         %s\n", fallback(roll.Title, "-"))
				fmt.Fprintf(out, "  Camera:        %s\n", fallback(roll.Camera, "-"))
				fmt.Fprintf(out, "  Film item:     %s\n", formatRollID(roll.FilmItemID))
				fmt.Fprintf(out, "  Purchase cost: %s\n", formatAmount(roll.PurchaseCost))
				fmt.Fprintf(out, "  Develop cost:  %s\n", formatAmount(roll.DevelopCost))
				fmt.Fprintf(out, "  Lab:           %s\n", fallback(roll.DevelopLab, "-"))
				return nil
			})
		},
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"filmtrack/internal/inventory"
)

func newItemsCommand(ctx *commandContext) *cobra.Command {
	itemsCmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Manage film items",
	}

	itemsCmd.AddCommand(newItemsPurchaseCommand(ctx))
	itemsCmd.AddCommand(newItemsListCommand(ctx))
	itemsCmd.AddCommand(newItemsShowCommand(ctx))
	itemsCmd.AddCommand(newItemsUpdateCommand(ctx))
	itemsCmd.AddCommand(newItemsLinkCommand(ctx))
	itemsCmd.AddCommand(newItemsDeleteCommand(ctx))
	itemsCmd.AddCommand(newItemsShotsCommand(ctx))
	itemsCmd.AddCommand(newItemsStatsCommand(ctx))

	return itemsCmd
}

func newItemsPurchaseCommand(ctx *commandContext) *cobra.Command {
	var (
		file  string
		batch inventory.Batch
		line  inventory.BatchLine
		price float64
	)

	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Record a purchase as in-stock film items",
		Long: "Record a purchase. Pass a JSON batch with --file (use - for stdin), " +
			"or describe a single line with --film and --quantity.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) != "" {
				data, err := readInput(cmd, file)
				if err != nil {
					return err
				}
				batch = inventory.Batch{}
				if err := json.Unmarshal(data, &batch); err != nil {
					return fmt.Errorf("parse purchase batch: %w", err)
				}
			} else {
				if cmd.Flags().Changed("unit-price") {
					line.UnitPrice = &price
				}
				batch.Items = []inventory.BatchLine{line}
			}

			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				created, err := m.CreateFromPurchaseBatch(c, batch)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, created)
				}
				ids := make([]string, 0, len(created))
				for _, item := range created {
					ids = append(ids, strconv.FormatInt(item.ID, 10))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %d film item(s): %s\n", len(created), strings.Join(ids, ", "))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON purchase batch (- for stdin)")
	cmd.Flags().Int64Var(&line.FilmID, "film", 0, "Film catalog id")
	cmd.Flags().IntVarP(&line.Quantity, "quantity", "n", 1, "Number of rolls purchased")
	cmd.Flags().Float64Var(&price, "unit-price", 0, "Price per roll")
	cmd.Flags().StringVar(&line.Label, "label", "", "Label for each item")
	cmd.Flags().StringVar(&line.ExpiryDate, "expiry", "", "Expiry date")
	cmd.Flags().StringVar(&line.BatchNumber, "batch-number", "", "Emulsion batch number")
	cmd.Flags().Float64Var(&batch.TotalShipping, "shipping", 0, "Total shipping for the purchase")
	cmd.Flags().StringVar(&batch.PurchaseDate, "date", "", "Purchase date")
	cmd.Flags().StringVar(&batch.PurchaseChannel, "channel", "", "Purchase channel")
	cmd.Flags().StringVar(&batch.PurchaseVendor, "vendor", "", "Vendor")
	cmd.Flags().StringVar(&batch.PurchaseOrderID, "order", "", "Order id")
	cmd.Flags().StringVar(&batch.PurchaseCurrency, "currency", "", "Currency code")
	cmd.Flags().StringVar(&batch.Note, "note", "", "Purchase note")
	return cmd
}

func newItemsListCommand(ctx *commandContext) *cobra.Command {
	var (
		statuses       []string
		filmID         int64
		includeDeleted bool
		limit          int
		offset         int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List film items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := inventory.Filter{
				FilmID:         filmID,
				IncludeDeleted: includeDeleted,
				Limit:          limit,
				Offset:         offset,
			}
			for _, value := range statuses {
				status, err := inventory.ParseStatus(value)
				if err != nil {
					return err
				}
				filter.Statuses = append(filter.Statuses, status)
			}

			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				items, err := m.List(c, filter)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, items)
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No film items")
					return nil
				}
				fmt.Fprint(out, renderTable(out, []string{"ID", "Film", "Status", "Label", "Roll", "Price", "Created"},
					buildItemRows(items),
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by status (repeatable)")
	cmd.Flags().Int64Var(&filmID, "film", 0, "Filter by film catalog id")
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "Include soft-deleted items")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (0 uses the configured default)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	return cmd
}

func buildItemRows(items []*inventory.FilmItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		status := statusLabel(item.Status)
		if item.Deleted() {
			status += " (deleted)"
		}
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			strconv.FormatInt(item.FilmID, 10),
			status,
			fallback(item.Label, "-"),
			formatRollID(item.RollID),
			formatAmount(item.PurchasePrice),
			item.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func newItemsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one film item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "film item")
			if err != nil {
				return err
			}
			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				item, err := m.Get(c, id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("film item %d not found", id)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, item)
				}
				printItem(cmd, item)
				return nil
			})
		},
	}
}

func printItem(cmd *cobra.Command, item *inventory.FilmItem) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Film item %d\n", item.ID)
	fmt.Fprintf(out, "  Film:        %d\n", item.FilmID)
	fmt.Fprintf(out, "  Status:      %s\n", statusLabel(item.Status))
	fmt.Fprintf(out, "  Label:       %s\n", fallback(item.Label, "-"))
	fmt.Fprintf(out, "  Roll:        %s\n", formatRollID(item.RollID))
	fmt.Fprintf(out, "  Purchased:   %s %s from %s\n",
		formatAmount(item.PurchasePrice), fallback(item.PurchaseCurrency, ""), fallback(item.PurchaseVendor, "-"))
	fmt.Fprintf(out, "  Shipping:    %.2f\n", item.PurchaseShippingShare)
	fmt.Fprintf(out, "  Expires:     %s\n", fallback(item.ExpiryDate, "-"))
	fmt.Fprintf(out, "  Camera:      %s\n", fallback(item.LoadedCamera, "-"))
	fmt.Fprintf(out, "  Loaded:      %s\n", formatOptionalTime(item.LoadedAt))
	fmt.Fprintf(out, "  Shot:        %s\n", formatOptionalTime(item.ShotAt))
	fmt.Fprintf(out, "  Sent to lab: %s\n", formatOptionalTime(item.SentToLabAt))
	fmt.Fprintf(out, "  Developed:   %s\n", formatOptionalTime(item.DevelopedAt))
	fmt.Fprintf(out, "  Archived:    %s\n", formatOptionalTime(item.ArchivedAt))
	fmt.Fprintf(out, "  Frames:      %d\n", item.ShotLogs.Total())
	fmt.Fprintf(out, "  Deleted:     %s\n", yesNo(item.Deleted()))
}

func newItemsUpdateCommand(ctx *commandContext) *cobra.Command {
	var patchJSON string
	var file string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Apply a JSON patch to a film item",
		Long: "Apply a JSON object of whitelisted fields to a film item. Unknown keys are " +
			"ignored and null clears a field. roll_id cannot be changed here; use `items link`.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "film item")
			if err != nil {
				return err
			}
			var data []byte
			switch {
			case strings.TrimSpace(patchJSON) != "" && strings.TrimSpace(file) != "":
				return errors.New("use either --patch or --file, not both")
			case strings.TrimSpace(patchJSON) != "":
				data = []byte(patchJSON)
			case strings.TrimSpace(file) != "":
				if data, err = readInput(cmd, file); err != nil {
					return err
				}
			default:
				return errors.New("a patch is required (--patch or --file)")
			}
			patch, err := inventory.ParsePatch(data)
			if err != nil {
				return err
			}
			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				if err := m.Update(c, id, patch); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated film item %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&patchJSON, "patch", "p", "", "JSON patch object")
	cmd.Flags().StringVarP(&file, "file", "f", "", "File holding the JSON patch (- for stdin)")
	return cmd
}

func newItemsLinkCommand(ctx *commandContext) *cobra.Command {
	var camera string
	var target string

	cmd := &cobra.Command{
		Use:   "link <item-id> <roll-id>",
		Short: "Bind a film item to a roll",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0], "film item")
			if err != nil {
				return err
			}
			rollID, err := parseID(args[1], "roll")
			if err != nil {
				return err
			}
			req := inventory.LinkRequest{FilmItemID: itemID, RollID: rollID, LoadedCamera: camera}
			if strings.TrimSpace(target) != "" {
				status, err := inventory.ParseStatus(target)
				if err != nil {
					return err
				}
				req.TargetStatus = status
			}
			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				result, err := m.LinkToRoll(c, req)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Linked film item %d to roll %d\n", result.FilmItemID, result.RollID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&camera, "camera", "", "Camera the film was loaded into")
	cmd.Flags().StringVar(&target, "status", "", "Status after linking (default shot)")
	return cmd
}

func newItemsDeleteCommand(ctx *commandContext) *cobra.Command {
	var hard bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a film item that is not linked to a roll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "film item")
			if err != nil {
				return err
			}
			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				if hard {
					if err := m.HardDelete(c, id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed film item %d\n", id)
					return nil
				}
				if err := m.SoftDelete(c, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted film item %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "Remove the row instead of marking it deleted")
	return cmd
}

func newItemsShotsCommand(ctx *commandContext) *cobra.Command {
	shotsCmd := &cobra.Command{
		Use:   "shots",
		Short: "Record frames exposed on a film item",
	}
	shotsCmd.AddCommand(newItemsShotsAddCommand(ctx))
	shotsCmd.AddCommand(newItemsShotsListCommand(ctx))
	return shotsCmd
}

func newItemsShotsAddCommand(ctx *commandContext) *cobra.Command {
	var entry inventory.ShotLog

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add frames to an item's shot log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "film item")
			if err != nil {
				return err
			}
			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				item, err := m.Get(c, id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("film item %d not found", id)
				}
				logs := item.ShotLogs.Add(entry)
				if err := m.Update(c, id, inventory.Patch{ShotLogs: inventory.Value(logs)}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Film item %d now has %d frame(s) logged\n", id, logs.Total())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&entry.Date, "date", "", "Shooting date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&entry.Count, "count", 1, "Frames exposed")
	cmd.Flags().StringVar(&entry.Lens, "lens", "", "Lens used")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newItemsShotsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <id>",
		Short: "Show an item's shot log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "film item")
			if err != nil {
				return err
			}
			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				item, err := m.Get(c, id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("film item %d not found", id)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, item.ShotLogs)
				}
				out := cmd.OutOrStdout()
				if len(item.ShotLogs) == 0 {
					fmt.Fprintln(out, "No frames logged")
					return nil
				}
				rows := make([][]string, 0, len(item.ShotLogs))
				for _, entry := range item.ShotLogs {
					rows = append(rows, []string{entry.Date, strconv.Itoa(entry.Count), fallback(entry.Lens, "-")})
				}
				fmt.Fprint(out, renderTable(out, []string{"Date", "Frames", "Lens"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft}))
				return nil
			})
		},
	}
}

func newItemsStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count film items by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withInventory(cmd, func(c context.Context, m *inventory.Manager) error {
				stats, err := m.Stats(c)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderTable(out, []string{"Status", "Count"}, buildStatusRows(stats),
					[]columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func buildStatusRows(stats map[inventory.Status]int) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, status := range inventory.Statuses() {
		rows = append(rows, []string{statusLabel(status), strconv.Itoa(stats[status])})
	}
	return rows
}

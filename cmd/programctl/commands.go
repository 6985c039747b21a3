package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/noah-isme/program-cycles-api/internal/app"
	"github.com/noah-isme/program-cycles-api/internal/catalog"
	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/models"
	"github.com/noah-isme/program-cycles-api/pkg/config"
	"github.com/noah-isme/program-cycles-api/pkg/database"
	"github.com/noah-isme/program-cycles-api/pkg/logger"
)

func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer logr.Sync() //nolint:errcheck

	a, err := app.New(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			applied, err := database.Migrate(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) on %s\n", applied, db.DriverName())
			return nil
		},
	}
}

func cyclesCmd() *cobra.Command {
	cycles := &cobra.Command{Use: "cycles", Short: "Manage the cycle calendar"}
	cycles.AddCommand(cyclesImportCmd())
	cycles.AddCommand(cyclesListCmd())
	return cycles
}

func cyclesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog.yaml>",
		Short: "Upsert cycles from a YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				result, err := a.Services.Cycles.Import(ctx, entries)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(cmd.OutOrStdout(), result)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d\n", result.Created, result.Updated)
				return printCycles(cmd.OutOrStdout(), result.Cycles)
			})
		},
	}
}

func cyclesListCmd() *cobra.Command {
	var req dto.ListCyclesRequest
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cycles with their calendar status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				views, err := a.Services.Cycles.List(ctx, req)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(cmd.OutOrStdout(), views)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"ID", "Level", "Start", "End", "Month", "Status", "Enrolled", "Seats left"})
				for _, v := range views {
					tw.AppendRow(table.Row{v.ID, v.Level, v.StartDate.Format("2006-01-02"), v.EndDate.Format("2006-01-02"),
						fmt.Sprintf("%s %d", v.Month, v.Year), v.Status, fmt.Sprintf("%d/%d", v.EnrolledCount, v.Capacity), v.SeatsLeft})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&req.Search, "query", "q", "", "free text: date, month or level")
	cmd.Flags().StringVar(&req.Level, "level", "", "tier")
	cmd.Flags().StringVar(&req.Status, "status", "", "UPCOMING, IN_PROGRESS or COMPLETED")
	cmd.Flags().StringVar(&req.From, "from", "", "start on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&req.To, "to", "", "start on or before YYYY-MM-DD")
	return cmd
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the coordinator overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				overview, _, err := a.Services.Dashboard.Overview(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(cmd.OutOrStdout(), overview)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"Active", "Conflict", "Graduated", "Dropped", "Pending review", "Pending payment"})
				p := overview.Participants
				tw.AppendRow(table.Row{p.Active, p.Conflict, p.Graduated, p.Dropped, overview.PendingReview, overview.PendingPayment})
				tw.Render()
				fmt.Fprintln(cmd.OutOrStdout())
				openCycles := make([]models.Cycle, 0, len(overview.OpenCycles))
				for _, v := range overview.OpenCycles {
					openCycles = append(openCycles, v.Cycle)
				}
				return printCycles(cmd.OutOrStdout(), openCycles)
			})
		},
	}
}

func rosterCmd() *cobra.Command {
	var req dto.RosterExportRequest
	var out string
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Export a cycle roster as CSV or PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				file, err := a.Services.Exports.Roster(ctx, req)
				if err != nil {
					return err
				}
				if out == "" {
					out = file.Filename
				}
				if out == "-" {
					_, err = cmd.OutOrStdout().Write(file.Payload)
					return err
				}
				if err := os.WriteFile(out, file.Payload, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(file.Payload))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.CycleID, "cycle", "", "cycle id")
	cmd.Flags().StringVar(&req.Format, "format", "csv", "csv or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path, - for stdout")
	_ = cmd.MarkFlagRequired("cycle")
	return cmd
}

func printCycles(w io.Writer, cycles []models.Cycle) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Level", "Start", "Capacity", "Enrolled"})
	for _, c := range cycles {
		tw.AppendRow(table.Row{c.ID, c.Level, c.StartDate.Format("2006-01-02"), c.Capacity, c.EnrolledCount})
	}
	tw.Render()
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

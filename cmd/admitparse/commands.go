package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dgallion1/eternals/internal/admission"
	"github.com/dgallion1/eternals/internal/compare"
	"github.com/dgallion1/eternals/internal/config"
	"github.com/dgallion1/eternals/internal/export"
	"github.com/dgallion1/eternals/internal/fees"
	"github.com/dgallion1/eternals/internal/parser"
	"github.com/dgallion1/eternals/internal/pipeline"
	"github.com/dgallion1/eternals/internal/ranking"
	"github.com/dgallion1/eternals/internal/report"
	"github.com/dgallion1/eternals/internal/sheet"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "admitparse",
		Short: "Parse admission lists and work with master spreadsheets",
		Long: `admitparse turns ranked admission lists (PDF, text, HTML, DOCX,
Markdown, CSV) into tables, and runs the dashboard operations on local
spreadsheets: master browsing, ranked shortlists, MAIN CODE comparison
and average fee charts.

Defaults come from the same environment variables as the server, read
from .env when present.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv()
		},
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every skipped line to stderr")
	rootCmd.PersistentFlags().String("rules", "", "YAML rules file overriding the built-in extraction rules")

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(masterCmd())
	rootCmd.AddCommand(shortlistCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(feesCmd())
	return rootCmd
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func loadRules(cmd *cobra.Command) (*admission.Rules, error) {
	path, _ := cmd.Flags().GetString("rules")
	if path == "" {
		path = config.Load().RulesFile
	}
	return admission.LoadRules(path)
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Extract candidate rows from an admission list",
		Long: `Extract candidate rows from an admission list and write them as a table.

The output format follows the --out extension (.csv or .xlsx). Without
--out the table is written to stdout as CSV.

Example:
  admitparse parse allotment.pdf --out allotment.xlsx
  admitparse parse allotment.txt --mode positional --buffering --report run.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			mode, _ := cmd.Flags().GetString("mode")
			pre, _ := cmd.Flags().GetString("precondition")
			buffering, _ := cmd.Flags().GetBool("buffering")
			resetCourse, _ := cmd.Flags().GetBool("reset-course")
			reportPath, _ := cmd.Flags().GetString("report")
			pdftotext, _ := cmd.Flags().GetBool("pdftotext")

			cfg := config.Load()
			if !cmd.Flags().Changed("mode") {
				mode = cfg.ExtractionMode
			}
			if !cmd.Flags().Changed("precondition") {
				pre = cfg.Precondition
			}
			if !cmd.Flags().Changed("buffering") {
				buffering = cfg.Buffering
			}
			if !cmd.Flags().Changed("reset-course") {
				resetCourse = cfg.ResetCourseOnCollege
			}

			opts := admission.Options{Buffering: buffering, ResetCourseOnCollege: resetCourse}
			var err error
			if opts.Mode, err = admission.ParseMode(mode); err != nil {
				return err
			}
			if opts.Precondition, err = admission.ParsePrecondition(pre); err != nil {
				return err
			}
			rules, err := loadRules(cmd)
			if err != nil {
				return err
			}

			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			log := newLogger(cmd)
			doc, res, err := pipeline.ParseDocument(f, filepath.Base(path), parser.Options{FallbackPdftotext: pdftotext}, rules, opts, log)
			if err != nil {
				return err
			}

			tbl := res.Table
			if err := writeOutput(cmd, out, doc.Title, tbl.Header(), tbl.Rows()); err != nil {
				return err
			}

			if reportPath != "" {
				if err := writeReport(reportPath, report.Summary{
					Title: doc.Title, Options: opts, Pages: len(doc.Pages), Result: res,
				}); err != nil {
					return err
				}
			}

			st := res.Stats
			fmt.Fprintf(cmd.ErrOrStderr(), "%d pages, %d lines: %d rows accepted (%d merged), %d rejected, %d header rows removed\n",
				len(doc.Pages), st.Lines, st.Accepted, st.Merged, st.Rejected, st.Filtered)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "Output table file (.csv or .xlsx)")
	cmd.Flags().StringP("mode", "m", string(admission.ModePattern), "Extraction mode (pattern, positional)")
	cmd.Flags().String("precondition", string(admission.RequireAnyHeader), "When rows become eligible (any-header, course, college-and-course)")
	cmd.Flags().Bool("buffering", false, "Merge a broken candidate row with the following line")
	cmd.Flags().Bool("reset-course", false, "Clear the course on every college header")
	cmd.Flags().String("report", "", "Write a run summary (.md or .html)")
	cmd.Flags().Bool("pdftotext", true, "Fall back to the pdftotext binary for unreadable PDFs")
	return cmd
}

// writeOutput writes a table to path, choosing the format by extension,
// or to stdout as CSV when path is empty.
func writeOutput(cmd *cobra.Command, path, sheetName string, header []string, rows [][]string) error {
	if path == "" {
		return export.WriteCSV(cmd.OutOrStdout(), header, rows)
	}
	format, err := export.ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, format, sheetName, header, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(rows), path)
	return nil
}

func writeReport(path string, s report.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	render := report.Markdown
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".html" || ext == ".htm" {
		render = report.HTML
	}
	if err := render(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

// masterFlags registers the shared --master and --sheet flags.
func masterFlags(cmd *cobra.Command) {
	cmd.Flags().String("master", "", "Master spreadsheet (default MASTER_FILE)")
	cmd.Flags().String("sheet", "", "Worksheet name (default MASTER_SHEET)")
}

func loadMaster(cmd *cobra.Command) (*sheet.Table, error) {
	path, _ := cmd.Flags().GetString("master")
	sheetName, _ := cmd.Flags().GetString("sheet")
	cfg := config.Load()
	if path == "" {
		path = cfg.MasterFile
	}
	if sheetName == "" && strings.EqualFold(filepath.Ext(path), ".xlsx") {
		sheetName = cfg.MasterSheet
	}
	tbl, err := sheet.LoadFile(path, sheetName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("master file not found: %s", path)
		}
		return nil, err
	}
	return tbl, nil
}

func masterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "master",
		Short: "Show or export the master spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			tbl, err := loadMaster(cmd)
			if err != nil {
				return err
			}
			if out != "" {
				return writeOutput(cmd, out, tbl.Name, tbl.Headers, tbl.Rows)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %d rows\n", tbl.Name, tbl.Len())
			for i, h := range tbl.Headers {
				fmt.Fprintf(w, "  %2d. %s\n", i+1, h)
			}
			return nil
		},
	}
	masterFlags(cmd)
	cmd.Flags().StringP("out", "o", "", "Export to a .csv or .xlsx file")
	return cmd
}

func shortlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shortlist",
		Short: "Order master rows by state and program ranks",
		Long: `Order master rows by explicit state and program ranks.

Ranks come either from flags or from a rank sheet with Item, Rank and
Kind (state or program) columns.

Example:
  admitparse shortlist --state TS=1 --state AP=2 --program CSE=1 --out shortlist.xlsx
  admitparse shortlist --ranks ranks.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stateCol, _ := cmd.Flags().GetString("state-column")
			programCol, _ := cmd.Flags().GetString("program-column")
			states, _ := cmd.Flags().GetStringToInt("state")
			programs, _ := cmd.Flags().GetStringToInt("program")
			ranksPath, _ := cmd.Flags().GetString("ranks")
			out, _ := cmd.Flags().GetString("out")

			req := ranking.Request{
				StateColumn:   stateCol,
				ProgramColumn: programCol,
				StateRanks:    ranking.Assignment(states),
				ProgramRanks:  ranking.Assignment(programs),
			}
			if ranksPath != "" {
				rt, err := sheet.LoadFile(ranksPath, "")
				if err != nil {
					return err
				}
				if req.StateRanks, req.ProgramRanks, err = ranking.FromSheet(rt); err != nil {
					return err
				}
			}

			master, err := loadMaster(cmd)
			if err != nil {
				return err
			}
			tbl, err := ranking.Shortlist(master, req)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, "Shortlist", tbl.Headers, tbl.Rows)
		},
	}
	masterFlags(cmd)
	cmd.Flags().String("state-column", "State", "Master column holding the state")
	cmd.Flags().String("program-column", "Program", "Master column holding the program")
	cmd.Flags().StringToInt("state", nil, "State rank as NAME=RANK (repeatable)")
	cmd.Flags().StringToInt("program", nil, "Program rank as NAME=RANK (repeatable)")
	cmd.Flags().String("ranks", "", "Rank sheet (.csv or .xlsx) with Item, Rank and Kind columns")
	cmd.Flags().StringP("out", "o", "", "Output table file (.csv or .xlsx)")
	return cmd
}

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare LEFT RIGHT",
		Short: "Diff two sheets on MAIN CODE",
		Long: `Diff two sheets on MAIN CODE, the concatenation of the trimmed
--key1 and --key2 column values.

Example:
  admitparse compare 2023.xlsx 2024.xlsx --key1 "College Code" --key2 "Course Code"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key1, _ := cmd.Flags().GetString("key1")
			key2, _ := cmd.Flags().GetString("key2")
			format, _ := cmd.Flags().GetString("format")
			if key1 == "" || key2 == "" {
				return fmt.Errorf("--key1 and --key2 are required")
			}

			left, err := sheet.LoadFile(args[0], "")
			if err != nil {
				return err
			}
			right, err := sheet.LoadFile(args[1], "")
			if err != nil {
				return err
			}
			res, err := compare.Diff(left, right, key1, key2)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintf(w, "in both: %d\n", res.Common)
			printRows(w, "only in "+args[0], res.OnlyLeft)
			printRows(w, "only in "+args[1], res.OnlyRight)
			return nil
		},
	}
	cmd.Flags().String("key1", "", "First key column")
	cmd.Flags().String("key2", "", "Second key column")
	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	return cmd
}

func printRows(w io.Writer, title string, t *sheet.Table) {
	fmt.Fprintf(w, "%s: %d\n", title, t.Len())
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range t.Rows {
		fmt.Fprintf(tw, "  %s\n", strings.Join(row, "\t"))
	}
	tw.Flush()
}

func feesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees FILE",
		Short: "Average a fee column per group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, _ := cmd.Flags().GetString("group")
			fee, _ := cmd.Flags().GetString("fee")
			format, _ := cmd.Flags().GetString("format")
			sheetName, _ := cmd.Flags().GetString("sheet")

			tbl, err := sheet.LoadFile(args[0], sheetName)
			if err != nil {
				return err
			}
			chart, err := fees.Average(tbl, group, fee)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(chart)
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(tw, "%s\taverage %s\trows\t\n", group, fee)
			for _, b := range chart.Bars {
				fmt.Fprintf(tw, "%s\t%.2f\t%d\t\n", b.Group, b.Average, b.Count)
			}
			tw.Flush()
			if chart.Skipped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d rows with no group or an unreadable fee\n", chart.Skipped)
			}
			return nil
		},
	}
	cmd.Flags().String("group", "State", "Column to group by")
	cmd.Flags().String("fee", "Fee", "Fee column to average")
	cmd.Flags().String("sheet", "", "Worksheet name for .xlsx input")
	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	return cmd
}

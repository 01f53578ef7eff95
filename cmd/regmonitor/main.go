package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"GameRegMonitor/internal/app"
	"GameRegMonitor/internal/config"
	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/logging"
)

const usage = `usage: regmonitor <command> [flags]

commands:
  run       fetch, classify and store one batch of news
  report    list stored items
  stats     summarize the store
  schedule  run the pipeline at the configured interval
  classify  label a single title for rule debugging
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}

	err = dispatch(ctx, application, os.Args[1], os.Args[2:], os.Stdout)
	if cerr := application.Close(); cerr != nil {
		logger.Warn("close storage", "error", cerr)
	}
	if err != nil {
		logger.Error("application stopped", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, application *app.Application, command string, args []string, out io.Writer) error {
	switch command {
	case "run":
		report, err := application.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "run %s: fetched=%d unique=%d relevant=%d recent=%d classified=%d inserted=%d\n",
			report.RunID, report.Fetched, report.Unique, report.Relevant, report.Recent, report.Classified, report.Inserted)
		return nil
	case "report":
		return runReport(ctx, application, args, out)
	case "stats":
		stats, err := application.Stats(ctx)
		if err != nil {
			return err
		}
		printStats(out, stats)
		return nil
	case "schedule":
		return application.Schedule(ctx)
	case "classify":
		return runClassify(application, args, out)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func runReport(ctx context.Context, application *app.Application, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	period := fs.String("period", domain.PeriodWeek, "week, month or all")
	var q domain.Query
	fs.StringVar(&q.Region, "region", "", "region label")
	fs.StringVar(&q.Category, "category", "", "level-1 category label")
	fs.StringVar(&q.Status, "status", "", "status label")
	fs.StringVar(&q.Keyword, "keyword", "", "substring of title, summary or translation")
	fs.IntVar(&q.Limit, "limit", 50, "maximum rows")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := application.Report(ctx, *period, q)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IMPACT\tDATE\tREGION\tCATEGORY\tSTATUS\tTITLE")
	for _, item := range items {
		category := item.CategoryL1
		if item.CategoryL2 != "" {
			category += "/" + item.CategoryL2
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			item.ImpactScore, item.Date, item.Region, category, item.Status, domain.TruncateRunes(item.Title, 80))
	}
	return tw.Flush()
}

func printStats(out io.Writer, stats domain.Stats) {
	fmt.Fprintf(out, "total: %d\nlatest: %s\n", stats.Total, stats.LatestDate)
	printCounts(out, "by region", stats.ByRegion)
	printCounts(out, "by category", stats.ByCategory)

	fmt.Fprintln(out, "by impact:")
	for impact := 3; impact >= 1; impact-- {
		fmt.Fprintf(out, "  %d: %d\n", impact, stats.ByImpact[impact])
	}
}

func printCounts(out io.Writer, title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Fprintf(out, "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %d\n", k, counts[k])
	}
}

func runClassify(application *app.Application, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	var item domain.RawItem
	fs.StringVar(&item.Title, "title", "", "headline")
	fs.StringVar(&item.Summary, "summary", "", "summary text")
	fs.StringVar(&item.Source, "source", "", "publisher name")
	fs.StringVar(&item.RegionHint, "hint", "", "region hint")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if item.Title == "" && item.Summary == "" {
		return fmt.Errorf("classify: -title or -summary is required")
	}

	verdict, labeled := application.Classify(item)
	fmt.Fprintf(out, "relevant: %t (%s)\n", verdict.Relevant, verdict.Reason)
	if verdict.Pattern != "" {
		fmt.Fprintf(out, "pattern:  %s\n", verdict.Pattern)
	}
	fmt.Fprintf(out, "region:   %s\n", labeled.Region)
	fmt.Fprintf(out, "category: %s / %s\n", labeled.CategoryL1, labeled.CategoryL2)
	fmt.Fprintf(out, "status:   %s\n", labeled.Status)
	fmt.Fprintf(out, "tier:     %s\n", labeled.Tier)
	fmt.Fprintf(out, "impact:   %d\n", labeled.ImpactScore)
	return nil
}

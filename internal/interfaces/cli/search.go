package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/application/browse"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
)

type searchOptions struct {
	term          string
	destinationID string
	pages         int
	pageSize      int
}

func newSearchCmd(flags *globalFlags) *cobra.Command {
	var opts searchOptions
	c := &cobra.Command{
		Use:   "search <term>",
		Short: "Search products, loading pages until --pages or the last page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.term = args[0]
			svc, err := loadServices(flags)
			if err != nil {
				return err
			}
			defer func() { _ = svc.log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()
			return runSearch(ctx, cmd.OutOrStdout(), svc.search, svc.locale, opts, svc.log)
		},
	}
	c.Flags().StringVar(&opts.destinationID, "destination", "", "restrict to a destination ID")
	c.Flags().IntVar(&opts.pages, "pages", 1, "maximum number of pages to load")
	c.Flags().IntVar(&opts.pageSize, "page-size", excursion.DefaultPageSize, "products per page")
	return c
}

// runSearch drives an Aggregator page by page and prints the merged list
func runSearch(ctx context.Context, out io.Writer, searcher browse.Searcher, locale excursion.Locale, opts searchOptions, log *zap.Logger) error {
	agg := browse.New(searcher,
		browse.WithPageSize(opts.pageSize),
		browse.WithLocale(locale),
		browse.WithFilters(excursion.SearchFilters{DestinationID: opts.destinationID}),
		browse.WithLogger(log),
	)

	if !agg.SearchChanged(ctx, opts.term) {
		return fmt.Errorf("search term is required")
	}
	for loaded := 1; loaded < opts.pages; loaded++ {
		if !agg.LoadMore(ctx) {
			break
		}
	}

	state := agg.Snapshot()
	if state.Status == browse.StatusError {
		return fmt.Errorf("search %q: %s", state.Term, state.Err)
	}
	return printProducts(out, state)
}

func printProducts(out io.Writer, state browse.State) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tTITLE\tRATING\tPRICE")
	for _, p := range state.Items {
		fmt.Fprintf(w, "%s\t%s\t%.1f (%d)\t%s %s\n",
			p.ProductCode, p.Title, p.Rating, p.ReviewCount, p.LeadPrice.StringFixed(2), p.Currency)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	more := ""
	if state.HasMore {
		more = ", more available"
	}
	_, err := fmt.Fprintf(out, "\n%d shown of %d (page %d%s)\n", len(state.Items), state.TotalCount, state.Page, more)
	return err
}

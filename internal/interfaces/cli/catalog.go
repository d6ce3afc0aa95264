package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
)

// catalogReader is the part of the catalog service the commands use
type catalogReader interface {
	GetProduct(ctx context.Context, code string, locale excursion.Locale) (*excursion.ProductDetail, error)
	GetDestinations(ctx context.Context, locale excursion.Locale) (*excursion.DestinationList, error)
}

func newProductCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "product <code>",
		Short: "Show product detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(flags)
			if err != nil {
				return err
			}
			defer func() { _ = svc.log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()
			return runProduct(ctx, cmd.OutOrStdout(), svc.catalog, svc.locale, args[0])
		},
	}
}

func runProduct(ctx context.Context, out io.Writer, catalog catalogReader, locale excursion.Locale, code string) error {
	p, err := catalog.GetProduct(ctx, code, locale)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s  %s\n", p.ProductCode, p.Title)
	if p.DestinationName != "" {
		fmt.Fprintf(out, "Destination: %s\n", p.DestinationName)
	}
	fmt.Fprintf(out, "Rating: %.1f (%d reviews)\n", p.Rating, p.ReviewCount)
	fmt.Fprintf(out, "From: %s %s\n", p.LeadPrice.StringFixed(2), p.Currency)
	if p.Duration != "" {
		fmt.Fprintf(out, "Duration: %s\n", p.Duration)
	}
	if p.Description != "" {
		fmt.Fprintf(out, "\n%s\n", strings.TrimSpace(p.Description))
	}
	if len(p.Options) > 0 {
		fmt.Fprintln(out, "\nOptions:")
		for _, o := range p.Options {
			fmt.Fprintf(out, "  %s  %s\n", o.Code, o.Title)
		}
	}
	return nil
}

func newDestinationsCmd(flags *globalFlags) *cobra.Command {
	var match string
	c := &cobra.Command{
		Use:   "destinations",
		Short: "List destinations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(flags)
			if err != nil {
				return err
			}
			defer func() { _ = svc.log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()
			return runDestinations(ctx, cmd.OutOrStdout(), svc.catalog, svc.locale, match)
		},
	}
	c.Flags().StringVar(&match, "match", "", "only destinations whose name contains this text")
	return c
}

func runDestinations(ctx context.Context, out io.Writer, catalog catalogReader, locale excursion.Locale, match string) error {
	list, err := catalog.GetDestinations(ctx, locale)
	if err != nil {
		return err
	}

	match = strings.ToLower(strings.TrimSpace(match))
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE")
	for _, d := range list.Destinations {
		if match != "" && !strings.Contains(strings.ToLower(d.Name), match) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Name, d.Type)
	}
	return w.Flush()
}

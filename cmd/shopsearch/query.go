package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Print the engine query for a search without running it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Free-text query"},
			&cli.StringFlag{Name: "sort", Usage: "Sort field"},
			&cli.StringFlag{Name: "sort-dir", Usage: "Sort direction: asc or desc"},
			&cli.StringFlag{
				Name:  "filters",
				Usage: `Applied-filters fragment, e.g. "&filter.name=department&department.type=terms&department.key=TV"`,
			},
			&cli.IntFlag{Name: "size", Usage: "Result size", Value: query.DefaultSize},
			&cli.IntFlag{Name: "phrase-slop", Usage: "Phrase slop", Value: query.DefaultPhraseSlop},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			builder := query.NewBuilder().
				WithSize(c.Int("size")).
				WithPhraseSlop(c.Int("phrase-slop"))
			return printQuery(c.Root().Writer, builder,
				c.String("query"), c.String("sort"), c.String("sort-dir"), c.String("filters"))
		},
	}
}

// queryPlan is the printed output: the engine request plus the translated facets.
type queryPlan struct {
	Request        *query.Request `json:"request"`
	DisplayFilters []string       `json:"display_filters"`
	AppliedFilters string         `json:"applied_filters"`
}

func printQuery(w io.Writer, builder *query.Builder, text, sort, sortDir, fragment string) error {
	names, params, err := filter.ParseApplied(fragment)
	if err != nil {
		return fmt.Errorf("parse filters: %w", err)
	}

	req := request.New(text, sort, sortDir, filter.ParseSpecs(names, params))
	q, tr := searchuc.Plan(builder, req)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(queryPlan{Request: q, DisplayFilters: tr.Display, AppliedFilters: tr.Applied}); err != nil {
		return fmt.Errorf("encode query: %w", err)
	}
	return nil
}

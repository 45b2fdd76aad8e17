// Package shopsearch embeds the faceted product search in a Go program.
//
// The client talks to Elasticsearch (WithElasticsearch) or OpenSearch
// (WithOpenSearch) directly, builds the same queries as the HTTP server and can
// share its Valkey/Redis response cache (WithCache, WithCacheAuth).
//
//	client, _ := shopsearch.New(ctx,
//	    shopsearch.WithOpenSearch("http://localhost:9200"),
//	    shopsearch.WithIndex("bbuy_products"),
//	)
//	res, _ := client.Search(ctx, shopsearch.Query{
//	    Text: "hdmi cable",
//	    Filters: []shopsearch.Filter{
//	        shopsearch.RangeFilter("regularPrice", "Price", "0", "100"),
//	        shopsearch.TermFilter("department", "Department", "VIDEO/COMPACT DISC"),
//	    },
//	})
//	for _, h := range res.Hits {
//	    fmt.Println(h.ID, h.Name)
//	}
package shopsearch

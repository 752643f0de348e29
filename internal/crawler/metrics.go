package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pagesFetched tracks URLs popped and fetched from the frontier.
	pagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_fetched_total",
		Help: "The total number of frontier URLs fetched.",
	})
	// fetchFailures tracks transfers that produced an empty body.
	fetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_fetch_failures_total",
		Help: "The total number of fetches yielding no content.",
	})
	// pagesIndexed tracks documents added to the index.
	pagesIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_indexed_total",
		Help: "The total number of pages added to the index.",
	})
	// linksEnqueued tracks outbound links pushed onto the frontier.
	linksEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_links_enqueued_total",
		Help: "The total number of outbound links enqueued.",
	})
)

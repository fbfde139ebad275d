package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onecoffee_messages_sent_total",
		Help: "Messages appended to the ledger.",
	})
	ReadMarks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onecoffee_read_marks_total",
		Help: "Messages flipped to read.",
	})
	FeedDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onecoffee_feed_dropped_total",
		Help: "Feed events dropped on slow subscribers.",
	})
	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onecoffee_notification_emails_total",
		Help: "New-message notification emails sent.",
	})
)

// Handler returns an http.Handler for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

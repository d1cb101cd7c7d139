package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resto_orders_created_total",
		Help: "Total number of created orders.",
	})

	orderItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resto_order_items_added_total",
		Help: "Total number of items added to existing orders.",
	})

	dispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resto_push_dispatches_total",
			Help: "Total number of dispatcher invocations by outcome.",
		},
		[]string{"outcome"},
	)

	pushRecipientsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resto_push_recipients_total",
		Help: "Total number of push messages handed to the gateway.",
	})

	tokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resto_token_verifications_total",
			Help: "Total number of token verification attempts by type and status.",
		},
		[]string{"type", "status"},
	)
)

package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes.
const (
	loginSuccess  = "success"
	loginFailure  = "failure"
	loginInactive = "inactive"
)

var (
	ordersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crm_orders_created_total",
		Help: "Total number of orders created",
	})

	ordersDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crm_orders_deleted_total",
		Help: "Total number of orders deleted",
	})

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crm_registrations_total",
		Help: "Total number of accounts registered",
	})
)

package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatMessagesAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusloop",
			Subsystem: "chat",
			Name:      "messages_appended_total",
			Help:      "Messages appended to conversation logs",
		},
		[]string{"sender"},
	)

	chatAutoReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusloop",
			Subsystem: "chat",
			Name:      "auto_replies_total",
			Help:      "Synthetic replies by outcome (sent, cancelled, failed)",
		},
		[]string{"outcome"},
	)

	chatSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "campusloop",
			Subsystem: "chat",
			Name:      "sessions_active",
			Help:      "Number of open chat sessions",
		},
	)
)

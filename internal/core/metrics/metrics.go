// Package metrics holds the process-wide Prometheus collectors for outbound
// dependencies. HTTP metrics live in the transport middleware.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	KeycloakRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "keycloak_requests_total", Help: "Calls made to the identity provider"},
		[]string{"op", "outcome"},
	)
	MailDispatch = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "mail_dispatch_total", Help: "Best-effort mail sends by outcome"},
		[]string{"outcome"},
	)
)

func init() { prometheus.MustRegister(KeycloakRequests, MailDispatch) }

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Gate outcomes.
const (
	GateAllowed = "allowed"
	GateDenied  = "denied"
)

// AuthMetrics counts access-gate decisions, validation failures and login outcomes.
type AuthMetrics struct {
	gate       *prometheus.CounterVec
	validation *prometheus.CounterVec
	login      *prometheus.CounterVec
	session    *prometheus.CounterVec
}

// NewAuthMetrics registers the auth metrics on the provided registerer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	gate := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "access_gate_decisions_total",
		Help: "Access gate decisions by gate, outcome and reason.",
	}, []string{"gate", "outcome", "reason"})
	validation := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "form_validation_failures_total",
		Help: "Form submissions rejected by the validation pipeline.",
	}, []string{"form"})
	login := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
	session := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_token_decodes_total",
		Help: "Identity cookie decode results.",
	}, []string{"result"})
	reg.MustRegister(gate, validation, login, session)
	return &AuthMetrics{gate: gate, validation: validation, login: login, session: session}
}

// Gate records one access-gate decision.
func (m *AuthMetrics) Gate(gate, outcome, reason string) {
	if m == nil || m.gate == nil {
		return
	}
	m.gate.WithLabelValues(normalizeLabel(gate), normalizeLabel(outcome), normalizeLabel(reason)).Inc()
}

// ValidationFailed records a rejected submission of the named form.
func (m *AuthMetrics) ValidationFailed(form string) {
	if m == nil || m.validation == nil {
		return
	}
	m.validation.WithLabelValues(normalizeLabel(form)).Inc()
}

// Login records a login outcome ("success", "invalid_credentials", "error").
func (m *AuthMetrics) Login(outcome string) {
	if m == nil || m.login == nil {
		return
	}
	m.login.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// TokenDecoded records the session middleware's view of the identity cookie.
func (m *AuthMetrics) TokenDecoded(result string) {
	if m == nil || m.session == nil {
		return
	}
	m.session.WithLabelValues(normalizeLabel(result)).Inc()
}

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var joinsProcessed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bouncer_joins_processed",
	Help: "Number of member-join events evaluated",
})

var joinErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bouncer_join_errors",
	Help: "Number of member-join events which failed processing",
})

var quarantineCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bouncer_quarantines",
	Help: "Number of members quarantined pending verification",
})

var redeemCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bouncer_redeem_attempts",
	Help: "Number of verification redemption attempts, by outcome",
}, []string{"result"})

var commandCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bouncer_commands_dispatched",
	Help: "Number of commands dispatched, by command name",
}, []string{"command"})

var commandErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bouncer_command_errors",
	Help: "Number of command handler failures, by command name",
}, []string{"command"})

var profileFetchCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bouncer_profile_fetches",
	Help: "Number of profile reads against the platform (cache misses)",
})

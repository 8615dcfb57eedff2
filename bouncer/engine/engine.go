package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bouncer-bot/bouncer/bouncer/keystore"
	"github.com/bouncer-bot/bouncer/bouncer/platform"
)

const (
	// command prefix expected on every inbound command message
	DefaultCommandPrefix = "!bb"
	// minimum score at which a joining member is quarantined, and the
	// default roster threshold when prepare is called without one
	DefaultQuarantineThreshold = 3

	defaultProfileCacheSize = 5_000
	profileCacheTTL         = 30 * time.Minute
)

type Config struct {
	// Prefix for text commands; DefaultCommandPrefix when empty.
	CommandPrefix string
	// Base URL of the external verification web server; the ban notice
	// embeds <VerifyBaseURL>/verify/<token>.
	VerifyBaseURL string
	// Score at or above which joins are quarantined; DefaultQuarantineThreshold
	// when zero.
	QuarantineThreshold int
	// Optional expiry for pending verification records; zero means pending
	// forever.
	RecordTTL time.Duration
	// Profile cache capacity; defaulted when zero.
	ProfileCacheSize int
}

// Runtime for the moderation workflow: join scoring and quarantine, roster
// triage commands, and verification redemption.
type Engine struct {
	Logger   *slog.Logger
	Platform platform.Client
	Rules    RuleSet
	Ledger   *Ledger
	Config   Config

	rosters       *rosterSet
	profiles      *expirable.LRU[string, platform.Profile]
	guildCommands *Router
	dmCommands    *Router
}

func NewEngine(logger *slog.Logger, client platform.Client, rules RuleSet, store keystore.KeyStore, config Config) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if config.CommandPrefix == "" {
		config.CommandPrefix = DefaultCommandPrefix
	}
	if config.QuarantineThreshold == 0 {
		config.QuarantineThreshold = DefaultQuarantineThreshold
	}
	if config.ProfileCacheSize == 0 {
		config.ProfileCacheSize = defaultProfileCacheSize
	}
	eng := &Engine{
		Logger:   logger,
		Platform: client,
		Rules:    rules,
		Ledger: &Ledger{
			Store: store,
			TTL:   config.RecordTTL,
		},
		Config:        config,
		rosters:       newRosterSet(),
		profiles:      expirable.NewLRU[string, platform.Profile](config.ProfileCacheSize, nil, profileCacheTTL),
		guildCommands: NewRouter(),
		dmCommands:    NewRouter(),
	}

	eng.guildCommands.Register("ping", eng.handlePing)
	eng.guildCommands.Register("prepare", eng.handlePrepare)
	eng.guildCommands.Register("list", eng.handleList)
	eng.guildCommands.Register("spare", eng.handleSpare)
	eng.guildCommands.Register("kick", eng.handleKick)

	eng.dmCommands.Register("ping", eng.handlePing)
	eng.dmCommands.Register("verify", eng.handleVerify)

	return eng
}

// ProcessMemberJoin scores a freshly joined member and quarantines them when
// the score reaches the configured threshold. Callers log and drop the
// returned error; one failed evaluation must never block future joins.
func (e *Engine) ProcessMemberJoin(ctx context.Context, member platform.Member) error {
	// recover any panics from rule execution, same as an HTTP server would
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("member join processing panic", "r", r, "user", member.UserID, "guild", member.GuildID)
		}
	}()
	joinsProcessed.Inc()

	logger := e.Logger.With("user", member.UserID, "guild", member.GuildID)

	whitelisted, err := e.Ledger.IsWhitelisted(ctx, member.UserID)
	if err != nil {
		joinErrorCount.Inc()
		return fmt.Errorf("checking whitelist: %w", err)
	}
	if whitelisted {
		logger.Debug("member is whitelisted, skipping evaluation")
		return nil
	}

	profile, err := e.fetchProfile(ctx, member.UserID)
	if err != nil {
		joinErrorCount.Inc()
		return fmt.Errorf("fetching profile: %w", err)
	}
	if profile.Bot {
		// bots are added by admins; not subject to join heuristics
		return nil
	}

	flags, score, err := e.scoreProfile(ctx, *profile)
	if err != nil {
		joinErrorCount.Inc()
		return fmt.Errorf("evaluating profile: %w", err)
	}
	logger.Info("evaluated joining member", "tag", profile.Tag(), "score", score, "flags", flags)

	if score < e.Config.QuarantineThreshold {
		return nil
	}
	return e.quarantine(ctx, member, profile)
}

func (e *Engine) quarantine(ctx context.Context, member platform.Member, profile *platform.Profile) error {
	rec, err := e.Ledger.Issue(ctx, member.UserID, profile.Tag(), member.GuildID)
	if err != nil {
		joinErrorCount.Inc()
		return fmt.Errorf("issuing verification record: %w", err)
	}

	// notify before restricting: some platforms refuse DMs to users who no
	// longer share a guild with the bot
	notice := fmt.Sprintf(
		"You've been flagged as a suspicious account. To rejoin, verify yourself at %s",
		e.verifyURL(rec.Token),
	)
	if err := e.Platform.SendDirectMessage(ctx, member.UserID, notice); err != nil {
		e.Logger.Warn("failed to deliver verification notice", "err", err, "user", member.UserID)
	}

	if err := e.Platform.Restrict(ctx, member.GuildID, member.UserID, "flagged as suspicious on join"); err != nil {
		joinErrorCount.Inc()
		return fmt.Errorf("restricting member: %w", err)
	}
	quarantineCount.Inc()
	e.Logger.Info("member quarantined", "user", member.UserID, "guild", member.GuildID, "token", rec.Token)
	return nil
}

// ProcessMessage handles one inbound chat message. Non-command messages and
// unknown commands are ignored. Handler errors are reported back to the
// invoking user and swallowed; the event loop never dies on a bad command.
func (e *Engine) ProcessMessage(ctx context.Context, msg *platform.Message) {
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("message processing panic", "r", r, "author", msg.AuthorID)
		}
	}()

	content := strings.TrimSpace(msg.Content)
	if !strings.HasPrefix(content, e.Config.CommandPrefix) {
		return
	}
	tokens := strings.Fields(strings.TrimPrefix(content, e.Config.CommandPrefix))
	if len(tokens) == 0 {
		return
	}

	router := e.guildCommands
	if msg.Direct {
		router = e.dmCommands
	}
	handler, ok := router.Lookup(tokens[0])
	if !ok {
		return
	}
	commandCount.WithLabelValues(tokens[0]).Inc()

	c := &CommandContext{
		Ctx:     ctx,
		Logger:  e.Logger.With("command", tokens[0], "author", msg.AuthorID),
		Message: msg,
		Args:    tokens,
		engine:  e,
	}
	if err := handler(c); err != nil {
		commandErrorCount.WithLabelValues(tokens[0]).Inc()
		c.Logger.Error("command handler failed", "err", err)
		if rerr := c.Reply(fmt.Sprintf("Something went wrong: %s", err)); rerr != nil {
			c.Logger.Error("failed to deliver error reply", "err", rerr)
		}
	}
}

// PrepareRoster rebuilds the suspect roster for a guild: pre-screen the full
// member list, score survivors, keep those at or above the threshold, sort by
// display name (case-insensitive, ascending), and replace any prior roster.
func (e *Engine) PrepareRoster(ctx context.Context, guildID string, threshold int) ([]Candidate, error) {
	members, err := e.Platform.ListMembers(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("fetching member list: %w", err)
	}

	out := []Candidate{}
	for _, m := range members {
		if e.Rules.PreScreen != nil && !e.Rules.PreScreen(m) {
			continue
		}
		whitelisted, err := e.Ledger.IsWhitelisted(ctx, m.UserID)
		if err != nil {
			return nil, fmt.Errorf("checking whitelist: %w", err)
		}
		if whitelisted {
			continue
		}
		profile, err := e.fetchProfile(ctx, m.UserID)
		if err != nil {
			e.Logger.Warn("skipping member, profile fetch failed", "err", err, "user", m.UserID)
			continue
		}
		if profile.Bot {
			continue
		}
		flags, score, err := e.scoreProfile(ctx, *profile)
		if err != nil {
			e.Logger.Warn("skipping member, rule evaluation failed", "err", err, "user", m.UserID)
			continue
		}
		if score < threshold {
			continue
		}
		out = append(out, Candidate{
			UserID: m.UserID,
			Tag:    profile.Tag(),
			Flags:  flags,
			Score:  score,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Tag) < strings.ToLower(out[j].Tag)
	})
	for i := range out {
		out[i].Index = i
	}
	e.rosters.replace(guildID, out)
	return out, nil
}

// ShowRoster returns a read-only snapshot of the current roster for a guild.
func (e *Engine) ShowRoster(guildID string) []Candidate {
	return e.rosters.show(guildID)
}

func (e *Engine) scoreProfile(ctx context.Context, profile platform.Profile) ([]string, int, error) {
	c := NewProfileContext(ctx, e.Logger, profile)
	if err := e.Rules.CallProfileRules(c); err != nil {
		return nil, 0, err
	}
	flags := c.effects.Flags()
	return flags, e.Rules.Score(flags), nil
}

func (e *Engine) fetchProfile(ctx context.Context, userID string) (*platform.Profile, error) {
	if p, ok := e.profiles.Get(userID); ok {
		return &p, nil
	}
	profileFetchCount.Inc()
	p, err := e.Platform.FetchProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	e.profiles.Add(userID, *p)
	return p, nil
}

func (e *Engine) verifyURL(token string) string {
	return strings.TrimSuffix(e.Config.VerifyBaseURL, "/") + "/verify/" + token
}

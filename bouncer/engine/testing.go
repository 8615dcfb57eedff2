package engine

import (
	"log/slog"
	"strings"
	"time"

	"github.com/bouncer-bot/bouncer/bouncer/keystore"
	"github.com/bouncer-bot/bouncer/bouncer/platform"
)

// no-op by default; fixtures that want a pre-screen can set RuleSet.PreScreen
func testRuleSet() RuleSet {
	return RuleSet{
		ProfileRules: []ProfileRuleFunc{
			func(c *ProfileContext, p *platform.Profile) error {
				if p.HasDefaultAvatar() {
					c.AddFlag("default-avatar")
				}
				return nil
			},
			func(c *ProfileContext, p *platform.Profile) error {
				if len(p.RoleIDs) == 0 {
					c.AddFlag("no-roles")
				}
				return nil
			},
			func(c *ProfileContext, p *platform.Profile) error {
				if !p.CreatedAt.IsZero() && time.Since(p.CreatedAt) < 7*24*time.Hour {
					c.AddFlag("new-account")
				}
				return nil
			},
			func(c *ProfileContext, p *platform.Profile) error {
				if strings.ContainsAny(p.Username, "0123456789") {
					c.AddFlag("digit-username")
				}
				return nil
			},
		},
		Weights: map[string]int{
			"default-avatar": 1,
			"no-roles":       1,
			"new-account":    1,
			"digit-username": 1,
		},
	}
}

func EngineTestFixture() (*Engine, *platform.MockClient) {
	client := platform.NewMockClient()
	eng := NewEngine(
		slog.Default(),
		client,
		testRuleSet(),
		keystore.NewMemKeyStore(),
		Config{
			VerifyBaseURL: "https://verify.example.com",
		},
	)
	return eng, client
}

// suspiciousProfile trips every fixture rule (score 4 with testRuleSet).
func suspiciousProfile(userID, username string) platform.Profile {
	return platform.Profile{
		UserID:    userID,
		Username:  username,
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
}

// trustedProfile trips none of the fixture rules.
func trustedProfile(userID, username string) platform.Profile {
	return platform.Profile{
		UserID:     userID,
		Username:   username,
		AvatarHash: "a1b2c3",
		RoleIDs:    []string{"role-member"},
		CreatedAt:  time.Now().Add(-365 * 24 * time.Hour),
	}
}

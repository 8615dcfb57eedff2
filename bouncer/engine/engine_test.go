package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bouncer-bot/bouncer/bouncer/keystore"
	"github.com/bouncer-bot/bouncer/bouncer/platform"
)

func guildMsg(content string) *platform.Message {
	return &platform.Message{
		GuildID:   "g1",
		ChannelID: "chan-mod",
		AuthorID:  "mod-1",
		AuthorTag: "Moderator#0001",
		Content:   content,
	}
}

func directMsg(authorID, content string) *platform.Message {
	return &platform.Message{
		AuthorID: authorID,
		Content:  content,
		Direct:   true,
	}
}

func TestJoinBelowThresholdIsSilent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	client.AddMember("g1", trustedProfile("u1", "alice"))
	member := platform.Member{UserID: "u1", GuildID: "g1", Username: "alice", Tag: "alice"}
	assert.NoError(eng.ProcessMemberJoin(ctx, member))

	_, err := eng.Ledger.LookupByUser(ctx, "u1")
	assert.ErrorIs(err, keystore.ErrNotFound)
	assert.Empty(client.Restricted)
	assert.Empty(client.DirectMessages)
}

func TestJoinQuarantineEndToEnd(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	// fresh account, default avatar, no roles, digits in the name: score 4
	client.AddMember("g1", suspiciousProfile("u1", "SpamBot1234"))
	member := platform.Member{UserID: "u1", GuildID: "g1", Username: "SpamBot1234", Tag: "SpamBot1234"}
	require.NoError(eng.ProcessMemberJoin(ctx, member))

	// exactly one record issued
	rec, err := eng.Ledger.LookupByUser(ctx, "u1")
	require.NoError(err)
	assert.Equal("g1", rec.GuildID)

	// exactly one DM, embedding the verification URL
	require.Len(client.DirectMessages["u1"], 1)
	assert.Contains(client.DirectMessages["u1"][0], "https://verify.example.com/verify/"+rec.Token)

	// member restricted
	assert.Equal([]string{"g1/u1"}, client.Restricted)

	// subsequent correct-code verify DM completes the flow
	eng.ProcessMessage(ctx, directMsg("u1", "!bb verify "+rec.Code))
	_, err = eng.Ledger.LookupByUser(ctx, "u1")
	assert.ErrorIs(err, keystore.ErrNotFound)
	ok, err := eng.Ledger.IsWhitelisted(ctx, "u1")
	assert.NoError(err)
	assert.True(ok)
	assert.Equal([]string{"g1/u1"}, client.Unrestricted)

	replies := client.DirectMessages["u1"]
	require.Len(replies, 2)
	assert.Equal(RedeemSuccess.Reply(), replies[1])
}

func TestJoinWhitelistedSkipsEvaluation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	client.AddMember("g1", suspiciousProfile("u1", "SpamBot1234"))
	assert.NoError(eng.Ledger.Whitelist(ctx, "u1"))

	member := platform.Member{UserID: "u1", GuildID: "g1", Username: "SpamBot1234", Tag: "SpamBot1234"}
	assert.NoError(eng.ProcessMemberJoin(ctx, member))
	assert.Empty(client.Restricted)
	assert.Empty(client.DirectMessages)
}

func TestJoinProfileFetchFailureIsReported(t *testing.T) {
	eng, _ := EngineTestFixture()
	member := platform.Member{UserID: "ghost", GuildID: "g1", Username: "ghost", Tag: "ghost"}
	assert.Error(t, eng.ProcessMemberJoin(context.Background(), member))
}

func TestPrepareThresholdAndOrdering(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	// exactly 2 of 5 members score at or above 3
	client.AddMember("g1", suspiciousProfile("u1", "Zeta999"))
	client.AddMember("g1", suspiciousProfile("u2", "alpha111"))
	client.AddMember("g1", trustedProfile("u3", "bob"))
	client.AddMember("g1", trustedProfile("u4", "carol"))
	client.AddMember("g1", trustedProfile("u5", "dave"))

	roster, err := eng.PrepareRoster(ctx, "g1", 3)
	require.NoError(err)
	require.Len(roster, 2)

	// sorted by display name, case-insensitive ascending
	assert.Equal("alpha111", roster[0].Tag)
	assert.Equal("Zeta999", roster[1].Tag)
	assert.Equal(0, roster[0].Index)
	assert.Equal(1, roster[1].Index)
	assert.GreaterOrEqual(roster[0].Score, 3)
}

func TestPrepareSkipsWhitelisted(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	client.AddMember("g1", suspiciousProfile("u1", "SpamBot1234"))
	require.NoError(eng.Ledger.Whitelist(ctx, "u1"))

	roster, err := eng.PrepareRoster(ctx, "g1", 3)
	require.NoError(err)
	require.Empty(roster)
}

func TestPrepareReplacesPriorRoster(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	client.AddMember("g1", suspiciousProfile("u1", "SpamBot1234"))
	_, err := eng.PrepareRoster(ctx, "g1", 3)
	require.NoError(err)
	require.Len(eng.ShowRoster("g1"), 1)

	// raising the threshold beyond reach empties the roster wholesale
	_, err = eng.PrepareRoster(ctx, "g1", 99)
	require.NoError(err)
	assert.Empty(eng.ShowRoster("g1"))
}

func TestCommandFlowPrepareListSpareKick(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	client.AddMember("g1", suspiciousProfile("u1", "Bot111"))
	client.AddMember("g1", suspiciousProfile("u2", "Bot222"))
	client.AddMember("g1", suspiciousProfile("u3", "Bot333"))
	client.AddMember("g1", trustedProfile("mod-1", "Moderator"))

	eng.ProcessMessage(ctx, guildMsg("!bb prepare"))
	require.Len(eng.ShowRoster("g1"), 3)

	eng.ProcessMessage(ctx, guildMsg("!bb list"))
	replies := client.ChannelMessages["chan-mod"]
	require.NotEmpty(replies)
	assert.Contains(replies[len(replies)-1], "Bot111")

	eng.ProcessMessage(ctx, guildMsg("!bb spare 0"))
	require.Len(eng.ShowRoster("g1"), 2)

	eng.ProcessMessage(ctx, guildMsg("!bb kick"))
	assert.Len(client.Removed, 2)
	assert.Empty(eng.ShowRoster("g1"))

	replies = client.ChannelMessages["chan-mod"]
	assert.Contains(replies[len(replies)-1], "Kicked 2 of 2")
}

func TestKickEmptyRoster(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()
	client.AddMember("g1", trustedProfile("mod-1", "Moderator"))

	eng.ProcessMessage(ctx, guildMsg("!bb kick"))
	assert.Empty(client.Removed)

	replies := client.ChannelMessages["chan-mod"]
	assert.Len(replies, 1)
	assert.Contains(replies[0], "empty")
}

func TestSpareEmptyRoster(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()
	client.AddMember("g1", trustedProfile("mod-1", "Moderator"))

	eng.ProcessMessage(ctx, guildMsg("!bb spare 0,1"))
	replies := client.ChannelMessages["chan-mod"]
	assert.Len(replies, 1)
	assert.Contains(replies[0], "Nothing to spare")
}

func TestUnknownCommandIsIgnored(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	eng.ProcessMessage(ctx, guildMsg("!bb frobnicate"))
	eng.ProcessMessage(ctx, guildMsg("just chatting, not a command"))
	eng.ProcessMessage(ctx, guildMsg("!bb"))
	assert.Empty(client.ChannelMessages)
}

func TestCommandTablesAreContextSpecific(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	// verify is DM-only; in a guild channel it must not dispatch
	eng.ProcessMessage(ctx, guildMsg("!bb verify abc123"))
	assert.Empty(client.ChannelMessages)

	// kick is guild-only; in a DM it must not dispatch
	eng.ProcessMessage(ctx, directMsg("u1", "!bb kick"))
	assert.Empty(client.DirectMessages)

	// ping works in both
	eng.ProcessMessage(ctx, guildMsg("!bb ping"))
	eng.ProcessMessage(ctx, directMsg("u1", "!bb ping"))
	assert.Equal([]string{"pong"}, client.ChannelMessages["chan-mod"])
	assert.Equal([]string{"pong"}, client.DirectMessages["u1"])
}

func TestDispatchIsExactMatch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	// no prefix completion and no case folding across command names
	eng.ProcessMessage(ctx, guildMsg("!bb pin"))
	eng.ProcessMessage(ctx, guildMsg("!bb pingpong"))
	eng.ProcessMessage(ctx, guildMsg("!bb PING"))
	assert.Empty(client.ChannelMessages)
}

func TestHandlerPanicDoesNotKillLoop(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	eng.guildCommands.Register("boom", func(c *CommandContext) error {
		panic("kaboom")
	})
	eng.ProcessMessage(ctx, guildMsg("!bb boom"))

	// the loop survives and the next command still works
	eng.ProcessMessage(ctx, guildMsg("!bb ping"))
	assert.Equal([]string{"pong"}, client.ChannelMessages["chan-mod"])
}

func TestHandlerErrorIsReportedToUser(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	// prepare against a guild the bot cannot see fails with a reply, not a crash
	client.SetGuildUnavailable("g1")
	eng.ProcessMessage(ctx, guildMsg("!bb prepare"))

	replies := client.ChannelMessages["chan-mod"]
	assert.Len(replies, 1)
	assert.Contains(replies[0], "Something went wrong")
}

func TestPrepareCustomThresholdArgument(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	eng, client := EngineTestFixture()

	// score 4 suspects: a threshold of 5 excludes them
	client.AddMember("g1", suspiciousProfile("u1", "Bot111"))
	eng.ProcessMessage(ctx, guildMsg("!bb prepare 5"))
	require.Empty(eng.ShowRoster("g1"))

	eng.ProcessMessage(ctx, guildMsg("!bb prepare 2"))
	require.Len(eng.ShowRoster("g1"), 1)
}

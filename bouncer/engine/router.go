package engine

import (
	"context"
	"log/slog"

	"github.com/bouncer-bot/bouncer/bouncer/platform"
)

// Per-invocation context handed to command handlers.
type CommandContext struct {
	Ctx    context.Context
	Logger *slog.Logger

	Message *platform.Message
	// full token list, Args[0] is the command name itself
	Args []string

	engine *Engine
}

// Reply sends text back to where the command came from: the originating
// channel for guild commands, a direct message otherwise.
func (c *CommandContext) Reply(text string) error {
	if c.Message.Direct {
		return c.engine.Platform.SendDirectMessage(c.Ctx, c.Message.AuthorID, text)
	}
	return c.engine.Platform.SendChannelMessage(c.Ctx, c.Message.ChannelID, text)
}

type CommandHandlerFunc func(c *CommandContext) error

// Exact-match dispatch table keyed by the leading command token. Lookup is
// case-sensitive and whole-token only; there is no prefix completion across
// command names. A miss is silence, not an error.
type Router struct {
	handlers map[string]CommandHandlerFunc
}

func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]CommandHandlerFunc),
	}
}

func (r *Router) Register(name string, h CommandHandlerFunc) {
	r.handlers[name] = h
}

func (r *Router) Lookup(name string) (CommandHandlerFunc, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

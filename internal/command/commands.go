package command

import (
	"context"
	"strconv"

	"github.com/couchcryptid/chat-utility-bot/internal/bot"
	"github.com/couchcryptid/chat-utility-bot/internal/domain"
)

// RegisterBot adds the bot's commands to r. The movie command is skipped when
// h has no movie catalog.
func RegisterBot(r *Router, h *bot.Handlers) {
	r.Register(Command{
		Name:        "meme",
		Description: "Get a random meme",
		Deferred:    true,
		Handler: func(ctx context.Context, _ Invocation) (string, error) {
			return h.Meme(ctx)
		},
	})
	r.Register(Command{
		Name:        "quote",
		Description: "Get an inspirational quote",
		Deferred:    true,
		Handler: func(ctx context.Context, _ Invocation) (string, error) {
			return h.Quote(ctx)
		},
	})
	r.Register(Command{
		Name:        "weather",
		Description: "Get weather information",
		Options: []Option{
			{Name: "location", Description: "City or address; omit to use your saved location", Kind: KindString},
			{Name: "save", Description: "Save this location as your default", Kind: KindBool},
		},
		Deferred: true,
		Handler: func(ctx context.Context, inv Invocation) (string, error) {
			save, _ := parseBool(inv.Option("save"))
			return h.Weather(ctx, bot.WeatherRequest{
				Location: inv.Option("location"),
				UserID:   inv.UserID,
				Save:     save,
			})
		},
	})
	r.Register(Command{
		Name:        "setlocation",
		Description: "Set your default weather location",
		Options: []Option{
			{Name: "location", Description: "City or address", Kind: KindString, Required: true},
		},
		Deferred: true,
		Handler: func(ctx context.Context, inv Invocation) (string, error) {
			return h.SetLocation(ctx, inv.UserID, inv.Option("location"))
		},
	})
	r.Register(Command{
		Name:        "mylocation",
		Description: "Show your saved weather location",
		Handler: func(_ context.Context, inv Invocation) (string, error) {
			return h.MyLocation(inv.UserID), nil
		},
	})
	if h.MoviesEnabled() {
		r.Register(Command{
			Name:        "movie",
			Description: "Get a movie recommendation based on mood",
			Options: []Option{
				{Name: "mood", Description: "How are you feeling?", Kind: KindString, Choices: domain.Moods},
			},
			Deferred: true,
			Handler: func(ctx context.Context, inv Invocation) (string, error) {
				mood := inv.Option("mood")
				if mood == "" {
					mood = domain.MoodRandom
				}
				return h.Movie(ctx, mood)
			},
		})
	}
	r.Register(Command{
		Name:        "help",
		Description: "Show all available commands",
		Handler: func(context.Context, Invocation) (string, error) {
			return h.Help(), nil
		},
	})
}

func parseBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

package notificationservice

import (
	"log/slog"

	"openknesset/contexts/civic-data/notification-service/adapters/memory"
	"openknesset/contexts/civic-data/notification-service/adapters/templates"
	"openknesset/contexts/civic-data/notification-service/application/commands"
	"openknesset/contexts/civic-data/notification-service/ports"
)

type Module struct {
	Digest commands.DigestUseCase
	Store  *memory.Store
}

type Dependencies struct {
	Users    ports.UserDirectory
	Profiles ports.ProfileChecker
	Follows  ports.FollowRepository
	Actions  ports.ActionRepository
	LastSent ports.LastSentRepository
	Renderer ports.DigestRenderer
	Mailer   ports.Mailer
	Clock    ports.Clock
	DaysBack int
	Subject  string
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Digest: commands.DigestUseCase{
			Users:    deps.Users,
			Profiles: deps.Profiles,
			Follows:  deps.Follows,
			Actions:  deps.Actions,
			LastSent: deps.LastSent,
			Renderer: deps.Renderer,
			Mailer:   deps.Mailer,
			Clock:    deps.Clock,
			DaysBack: deps.DaysBack,
			Subject:  deps.Subject,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Users:    store,
		Profiles: store,
		Follows:  store,
		Actions:  store,
		LastSent: store,
		Renderer: templates.NewRenderer("oknesset.org"),
		Mailer:   store,
		Clock:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}

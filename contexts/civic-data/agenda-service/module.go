package agendaservice

import (
	"log/slog"

	httpadapter "openknesset/contexts/civic-data/agenda-service/adapters/http"
	"openknesset/contexts/civic-data/agenda-service/adapters/memory"
	"openknesset/contexts/civic-data/agenda-service/application/commands"
	"openknesset/contexts/civic-data/agenda-service/application/queries"
	"openknesset/contexts/civic-data/agenda-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Agendas     ports.AgendaRepository
	AgendaVotes ports.AgendaVoteRepository
	Profiles    ports.ProfileRepository
	Votes       ports.VoteCatalog
	Rankings    ports.RankingSource
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Agendas: commands.AgendaUseCase{
				Agendas:  deps.Agendas,
				Profiles: deps.Profiles,
				Clock:    deps.Clock,
				IDGen:    deps.IDGenerator,
				Logger:   deps.Logger,
			},
			AgendaVotes: commands.AgendaVoteUseCase{
				Agendas:     deps.Agendas,
				AgendaVotes: deps.AgendaVotes,
				Votes:       deps.Votes,
				Clock:       deps.Clock,
				IDGen:       deps.IDGenerator,
				Logger:      deps.Logger,
			},
			Queries: queries.AgendaQueries{
				Agendas:     deps.Agendas,
				AgendaVotes: deps.AgendaVotes,
				Profiles:    deps.Profiles,
				Rankings:    deps.Rankings,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Agendas:     store,
		AgendaVotes: store,
		Profiles:    store,
		Votes:       store,
		Rankings:    store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}

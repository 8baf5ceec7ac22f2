package certificateservice

import (
	"log/slog"

	httpadapter "ugnayan/contexts/community-engagement/certificate-service/adapters/http"
	"ugnayan/contexts/community-engagement/certificate-service/adapters/memory"
	"ugnayan/contexts/community-engagement/certificate-service/adapters/render"
	"ugnayan/contexts/community-engagement/certificate-service/application/commands"
	"ugnayan/contexts/community-engagement/certificate-service/application/queries"
	"ugnayan/contexts/community-engagement/certificate-service/application/workers"
	"ugnayan/contexts/community-engagement/certificate-service/domain/entities"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Commands commands.UseCase
	Runner   *workers.LocalRunner
	Store    *memory.Store
}

type Dependencies struct {
	Records     ports.Repository
	Respondents ports.RespondentSource
	Jobs        ports.BatchJobQueue
	Outbox      ports.OutboxWriter
	Blobs       ports.BlobStore
	Encoder     ports.CodeEncoder
	Renderer    ports.Renderer
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	QueueSize   int
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	commandUseCase := commands.UseCase{
		Records:     deps.Records,
		Respondents: deps.Respondents,
		Jobs:        deps.Jobs,
		Outbox:      deps.Outbox,
		Blobs:       deps.Blobs,
		Encoder:     deps.Encoder,
		Renderer:    deps.Renderer,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	queryUseCase := queries.UseCase{
		Records: deps.Records,
		Logger:  deps.Logger,
	}
	runner := workers.NewLocalRunner(commandUseCase, deps.QueueSize, deps.Logger)
	return Module{
		Handler: httpadapter.Handler{
			Commands: commandUseCase,
			Queries:  queryUseCase,
			Runner:   runner,
			Logger:   deps.Logger,
		},
		Commands: commandUseCase,
		Runner:   runner,
	}
}

func NewInMemoryModule(seed []entities.Respondent, verificationHost string, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Records:     store,
		Respondents: store,
		Jobs:        store,
		Outbox:      store,
		Blobs:       store,
		Encoder:     render.QREncoder{Host: verificationHost},
		Renderer:    render.Renderer{Logger: logger},
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}

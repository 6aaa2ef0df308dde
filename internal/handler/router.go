package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/hamzasiddiq/dost-ai/backend/internal/handler/chat"
	knowledgeHandler "github.com/hamzasiddiq/dost-ai/backend/internal/handler/knowledge"
	settingsHandler "github.com/hamzasiddiq/dost-ai/backend/internal/handler/settings"
	speechHandler "github.com/hamzasiddiq/dost-ai/backend/internal/handler/speech"
	knowledgeService "github.com/hamzasiddiq/dost-ai/backend/internal/knowledge"
	middlewarePkg "github.com/hamzasiddiq/dost-ai/backend/internal/middleware"
	conversationService "github.com/hamzasiddiq/dost-ai/backend/internal/service/conversation"
	"github.com/hamzasiddiq/dost-ai/backend/internal/service/recognition"
	speechService "github.com/hamzasiddiq/dost-ai/backend/internal/service/speech"
	"github.com/hamzasiddiq/dost-ai/backend/internal/session"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(
	state *session.State,
	conversationSvc *conversationService.Service,
	knowledgeSvc *knowledgeService.Service,
	pipeline *speechService.Pipeline,
	recognizer recognition.Recognizer,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		chatHandler.New(conversationSvc).RegisterRoutes(api)
		knowledgeHandler.New(knowledgeSvc, state).RegisterRoutes(api)
		settingsHandler.New(state).RegisterRoutes(api)

		if pipeline != nil {
			speechHandler.New(pipeline, state).RegisterRoutes(api)
		}
		speechHandler.NewWebSocketHandler(recognizer).RegisterWebSocketRoutes(api)
	})

	return r
}

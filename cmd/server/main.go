// cmd/server/main.go
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/studiovx/outreach-backend/internal/config"
	"github.com/studiovx/outreach-backend/internal/controller"
	"github.com/studiovx/outreach-backend/internal/db"
	"github.com/studiovx/outreach-backend/internal/logger"
	"github.com/studiovx/outreach-backend/internal/queue"
	"github.com/studiovx/outreach-backend/internal/repository"
	"github.com/studiovx/outreach-backend/internal/service"
)

func main() {
	cfg, err := config.NewLoadedConfig()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	conn, err := db.Open(cfg.DSN())
	if err != nil {
		log.Fatal("failed to connect to DB", zap.Error(err))
	}
	log.Info("✅ Connected to database")

	q := queue.NewInMemoryQueue(log)

	scriptRepo := &repository.ScriptRepository{DB: conn}
	messageRepo := &repository.MessageRepository{DB: conn}
	assignmentRepo := &repository.AssignmentRepository{DB: conn}
	siteRepo := &repository.SiteRepository{DB: conn}

	queue.StartSendEventSubscriber(q, assignmentRepo, log)

	scriptService := &service.ScriptService{
		ScriptRepo:     scriptRepo,
		MessageRepo:    messageRepo,
		AssignmentRepo: assignmentRepo,
		SiteRepo:       siteRepo,
		Queue:          q,
		Log:            log,
	}

	scriptController := &controller.ScriptController{
		ScriptService: scriptService,
	}

	r := chi.NewRouter()

	// Script routes
	r.Post("/scripts", scriptController.CreateScript)
	r.Get("/scripts", scriptController.ListScripts)
	r.Get("/scripts/{id}", scriptController.GetScriptDetails)
	r.Get("/scripts/{id}/mindmap", scriptController.GetMindMap)
	r.Put("/scripts/{id}/layout", scriptController.SaveLayout)
	r.Get("/scripts/{id}/preview", scriptController.GetPreview)
	r.Post("/scripts/{id}/personalized-preview", scriptController.PersonalizedPreview)

	// Site routes
	r.Post("/sites/{siteID}/assignments", scriptController.AssignScript)
	r.Get("/sites/{siteID}/variables", scriptController.GetVariables)
	r.Post("/sites/{siteID}/messages/{messageID}/sent", scriptController.MarkMessageSent)
	r.Get("/sites/{siteID}/messages/{messageID}/resolved", scriptController.GetResolvedMessage)

	log.Info("🚀 Server running", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

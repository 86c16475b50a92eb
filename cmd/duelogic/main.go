package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/duelogic/duelogic/internal/adjudication"
	"github.com/duelogic/duelogic/internal/config"
	"github.com/duelogic/duelogic/internal/database"
	"github.com/duelogic/duelogic/internal/llm"
	"github.com/duelogic/duelogic/internal/models"
	"github.com/duelogic/duelogic/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("DUELOGIC_LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	configPath := os.Getenv("DUELOGIC_CONFIG")
	if configPath == "" {
		configPath = "duelogic.yaml"
	}

	cfg, err := config.NewLoader(configPath).Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load debate configuration")
	}

	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	collector.Register(registry)

	var evalStore adjudication.EvaluationStore
	var interruptStore adjudication.InterruptionStore
	if cfg.EnablePersistence {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := database.Connect(ctx, cfg.DatabaseURL, database.DefaultPoolOptions())
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		defer pool.Close()

		evalRepo := database.NewEvaluationRepository(pool, log)
		interruptRepo := database.NewInterruptionRepository(pool, log)
		if err := evalRepo.CreateTable(ctx); err != nil {
			log.WithError(err).Fatal("Failed to create evaluations table")
		}
		if err := interruptRepo.CreateTable(ctx); err != nil {
			log.WithError(err).Fatal("Failed to create interruptions table")
		}
		evalStore = evalRepo
		interruptStore = interruptRepo
	}

	judges := llm.NewRegistry()
	chatClient := llm.NewChatClient(cfg.Judge.APIKey, cfg.Judge.BaseURL, cfg.Judge.Model)
	chatClient.SetModelParams(cfg.Judge.Temperature, cfg.Judge.MaxTokens)
	judges.Register(cfg.Judge.Model, chatClient)

	judgeClient, err := judges.Get(cfg.Judge.Model)
	if err != nil {
		log.WithError(err).Fatal("Judge client not registered")
	}

	evaluator := adjudication.NewResponseEvaluator(
		adjudication.EvaluatorConfig{
			Accountability:    cfg.AccountabilityLevel(),
			EnablePersistence: cfg.EnablePersistence,
		},
		judgeClient,
		evalStore,
		collector,
		log,
	)

	engine := adjudication.NewChairInterruptEngine(
		adjudication.InterruptConfig{
			InterruptionsEnabled:   cfg.AllowChairInterrupts || cfg.AllowArbiterInterrupts,
			ChairInterruptsEnabled: cfg.AllowChairInterrupts,
			Aggressiveness:         cfg.Aggressiveness,
			Cooldown:               time.Duration(cfg.CooldownSeconds) * time.Second,
			EnablePersistence:      cfg.EnablePersistence,
		},
		judgeClient,
		interruptStore,
		collector,
		log,
	)

	log.WithFields(logrus.Fields{
		"debate_id":      cfg.DebateID,
		"chairs":         len(cfg.Chairs),
		"accountability": cfg.Accountability,
		"aggressiveness": cfg.Aggressiveness,
	}).Info("Duelogic adjudication core initialized")

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	// Inspection endpoint: run the heuristic pre-filter without touching
	// any judge or cooldown state.
	r.POST("/v1/adjudication/quick-check", func(c *gin.Context) {
		var req struct {
			Text string `json:"text"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		check := engine.QuickInterruptCheck(req.Text)
		c.JSON(http.StatusOK, gin.H{
			"potential_trigger": check.PotentialTrigger,
			"likely_reason":     check.LikelyReason,
			"confidence":        check.Confidence,
		})
	})

	// Inspection endpoint: zero-cost heuristic evaluation of a span.
	r.POST("/v1/adjudication/quick-evaluate", func(c *gin.Context) {
		var req struct {
			Position string `json:"position"`
			Content  string `json:"content"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		chair, ok := findConfiguredChair(cfg, req.Position)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown chair position"})
			return
		}
		evaluation := evaluator.PerformQuickEvaluation(adjudication.EvaluationContext{
			DebateID:        cfg.DebateID,
			Chair:           chair,
			ResponseContent: req.Content,
		})
		c.JSON(http.StatusOK, evaluation)
	})

	addr := os.Getenv("DUELOGIC_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func findConfiguredChair(cfg *config.DebateConfig, position string) (models.Chair, bool) {
	for _, chair := range cfg.ChairList() {
		if chair.Position == position {
			return chair, true
		}
	}
	return models.Chair{}, false
}

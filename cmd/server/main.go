package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/auth"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/config"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/duel"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/profile"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/quiz"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/ranking"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/social"
	"github.com/diogo-fc/quiz-copa-do-mundo/pkg/cache"
	"github.com/diogo-fc/quiz-copa-do-mundo/pkg/database"
	"github.com/diogo-fc/quiz-copa-do-mundo/pkg/websocket"

	"github.com/gorilla/mux"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using environment as-is")
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo})))

	cfg := config.Load()

	db, err := database.NewPostgresDB(&database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		slog.Error("connecting to database failed", "err", err)
		os.Exit(1)
	}

	err = db.AutoMigrate(
		&models.Profile{},
		&models.Question{},
		&models.GameSession{},
		&models.Duel{},
		&models.Friendship{},
		&models.UserAchievement{},
	)
	if err != nil {
		slog.Error("migrating database failed", "err", err)
		os.Exit(1)
	}

	redisCache := cache.NewRedisCache(cfg.RedisAddr)
	defer redisCache.Close()
	if err := redisCache.Ping(context.Background()); err != nil {
		slog.Warn("redis not reachable, caching degraded", "addr", cfg.RedisAddr, "err", err)
	}

	// repositories
	authRepo := auth.NewRepository(db)
	quizRepo := quiz.NewRepository(db)
	profileRepo := profile.NewRepository(db)
	duelRepo := duel.NewRepository(db)
	rankingRepo := ranking.NewRepository(db)
	socialRepo := social.NewRepository(db)

	// services
	authService := auth.NewService(authRepo, cfg.JWTSecret)
	profileService := profile.NewService(profileRepo)
	quizService := quiz.NewService(quizRepo, redisCache, profileService, cfg.StrictScore)

	var verifier duel.ScoreVerifier
	if cfg.StrictScore {
		verifier = quizService
	}
	duelService := duel.NewService(duelRepo, quizRepo, profileRepo, verifier)
	rankingService := ranking.NewService(rankingRepo, redisCache)
	socialService := social.NewService(socialRepo)

	duelWatcher := duel.NewWatcher(duelRepo, cfg.DuelPoll)
	wsHub := websocket.NewHub(duelWatcher)

	// handlers
	authHandler := auth.NewHandler(authService)
	quizHandler := quiz.NewHandler(quizService)
	profileHandler := profile.NewHandler(profileService)
	duelHandler := duel.NewHandler(duelService)
	rankingHandler := ranking.NewHandler(rankingService)
	socialHandler := social.NewHandler(socialService)

	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTMiddleware(cfg.JWTSecret))

	api.HandleFunc("/questions", quizHandler.GetQuestions).Methods("GET")
	api.HandleFunc("/questions/daily", quizHandler.GetDailyQuestions).Methods("GET")
	api.HandleFunc("/results", quizHandler.SubmitResult).Methods("POST", "OPTIONS")
	api.HandleFunc("/results/recent", quizHandler.GetRecentResults).Methods("GET")

	api.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	api.HandleFunc("/profile", profileHandler.UpdateProfile).Methods("PATCH", "OPTIONS")
	api.HandleFunc("/profile/achievements", profileHandler.GetAchievements).Methods("GET")
	api.HandleFunc("/streak", profileHandler.GetStreak).Methods("GET")
	api.HandleFunc("/streak", profileHandler.TouchStreak).Methods("POST", "OPTIONS")

	api.HandleFunc("/ranking", rankingHandler.GetRanking).Methods("GET")

	api.HandleFunc("/friends", socialHandler.GetFriends).Methods("GET")
	api.HandleFunc("/friends", socialHandler.AddFriend).Methods("POST", "OPTIONS")
	api.HandleFunc("/friends/{friendID}", socialHandler.RemoveFriend).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/feed", socialHandler.GetFeed).Methods("GET")

	api.HandleFunc("/duels", duelHandler.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/duels/{duelID}", duelHandler.Get).Methods("GET")
	api.HandleFunc("/duels/{duelID}/join", duelHandler.Join).Methods("POST", "OPTIONS")
	api.HandleFunc("/duels/{duelID}/score", duelHandler.SubmitScore).Methods("POST", "OPTIONS")

	router.HandleFunc("/ws/duels/{duelID}", wsHub.HandleWebSocket)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsMiddleware.Handler(router),
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port, "strict_score", cfg.StrictScore)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
}

package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"truevail/cache"
	"truevail/config"
	"truevail/database"
	"truevail/handlers"
	"truevail/logger"
	"truevail/models"
	"truevail/services"
)

func main() {
	log.SetOutput(logger.GetWriter())
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("🚀 Запуск TrueVail...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Ошибка загрузки конфигурации:", err)
	}

	log.Printf("✓ Конфигурация загружена")
	log.Printf("  - Порт: %s", cfg.Port)
	log.Printf("  - Бэкенд анализа: %s", cfg.BackendURL)

	database.InitDB(cfg.DbUrl)
	cache.InitRedis(cfg.RedisUrl)

	// Persistence-возможность резолвится один раз: nil = standalone,
	// дальше никто не проверяет наличие базы точечно.
	var store *database.Store
	var persist services.PersistenceClient
	var sources services.SourceRecorder
	var shareStore handlers.ShareStore
	if database.DB != nil {
		store = database.NewStore(database.DB)
		persist = store
		sources = store
		shareStore = store
		store.OnAuthStateChange(func(session *models.Session, signedIn bool) {
			if signedIn {
				log.Printf("[AUTH] 🔓 Активная сессия: %s", session.Email)
			} else {
				log.Printf("[AUTH] 🔒 Сессия завершена: %s", session.Email)
			}
		})
		log.Printf("  - Режим: полный (аккаунты и история включены)")
	} else {
		log.Printf("  - Режим: standalone (без аккаунтов и истории)")
	}

	backend := services.NewBackendClient(cfg.BackendURL)
	controller := services.NewAnalysisController(backend, persist, sources)

	analyzerHandler := handlers.NewAnalyzerHandler(controller, persist, cfg.Standalone())
	trendingHandler := handlers.NewTrendingHandler(backend)
	authHandler := handlers.NewAuthHandler(persist)
	historyHandler := handlers.NewHistoryHandler(persist)
	shareHandler := handlers.NewShareHandler(shareStore, cfg.APIBase)
	sourcesHandler := handlers.NewSourcesHandler(store)
	adminHandler := handlers.NewAdminHandler(cfg, store, controller)
	log.Println("✓ Сервисы инициализированы")

	http.HandleFunc("/api/analyze", analyzerHandler.Analyze)
	http.HandleFunc("/api/health", analyzerHandler.Health)
	http.HandleFunc("/api/trending-news", trendingHandler.Get)

	http.HandleFunc("/api/auth/register", authHandler.Register)
	http.HandleFunc("/api/auth/login", authHandler.Login)
	http.HandleFunc("/api/auth/logout", authHandler.Logout)
	http.HandleFunc("/api/auth/me", authHandler.Me)

	http.HandleFunc("/api/history", historyHandler.List)
	http.HandleFunc("/api/history/", historyHandler.Delete)

	http.HandleFunc("/api/share", shareHandler.Create)
	http.HandleFunc("/api/share/", shareHandler.GetResult)
	http.HandleFunc("/s/", shareHandler.ShowPage)

	http.HandleFunc("/api/sources/top", sourcesHandler.Top)

	// Admin API
	http.HandleFunc("/api/admin/stats", adminHandler.AuthMiddleware(adminHandler.GetStats))
	http.HandleFunc("/api/admin/logs", adminHandler.StreamLogs)
	http.HandleFunc("/api/admin/pause", adminHandler.AuthMiddleware(adminHandler.Pause))
	http.HandleFunc("/api/admin/resume", adminHandler.AuthMiddleware(adminHandler.Resume))
	http.HandleFunc("/api/admin/status", adminHandler.AuthMiddleware(adminHandler.GetStatus))
	http.HandleFunc("/api/admin/refresh-trending", adminHandler.AuthMiddleware(adminHandler.RefreshTrending))

	// Статика дашборда
	fs := http.FileServer(http.Dir("frontend"))
	http.Handle("/", fs)

	addr := ":" + cfg.Port
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Printf("🎯 TrueVail запущен на http://localhost%s\n", addr)
	fmt.Printf("🔗 Бэкенд анализа: %s\n", cfg.BackendURL)
	if cfg.Standalone() {
		fmt.Println("📦 Режим: standalone")
	} else {
		fmt.Println("🗄 Режим: полный (PostgreSQL)")
	}
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("\n📝 Примеры:")
	fmt.Printf(`   curl -X POST http://localhost%s/api/analyze -H "Content-Type: application/json" -d '{"call_site": "news", "text": "текст новости"}'`+"\n", addr)
	fmt.Printf(`   curl http://localhost%s/api/trending-news`+"\n", addr)
	fmt.Println("\n" + strings.Repeat("=", 50) + "\n")

	log.Println("✓ Сервер готов к приёму запросов...")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal("❌ Ошибка запуска сервера:", err)
	}
}

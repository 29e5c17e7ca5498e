package database

import (
	"database/sql"
	"log"

	_ "github.com/lib/pq"
)

var DB *sql.DB

func InitDB(url string) {
	if url == "" {
		log.Println("⚠️ DB_URL не установлен, работа в standalone режиме (без аккаунтов и истории)")
		return
	}

	var err error
	DB, err = sql.Open("postgres", url)
	if err != nil {
		log.Fatalf("❌ Ошибка подключения к базе данных: %v", err)
	}

	err = DB.Ping()
	if err != nil {
		log.Fatalf("❌ База данных недоступна: %v", err)
	}

	log.Println("✓ Подключение к PostgreSQL установлено")

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token      TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS analysis_results (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			type       TEXT NOT NULL,
			content    TEXT,
			result     JSONB,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS analysis_results_user_idx
			ON analysis_results (user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS shared_results (
			id         TEXT PRIMARY KEY,
			result     JSONB NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			expires_at TIMESTAMPTZ DEFAULT NOW() + INTERVAL '30 days'
		)`,
		`CREATE TABLE IF NOT EXISTS source_stats (
			source           TEXT PRIMARY KEY,
			total_analyses   INTEGER DEFAULT 0,
			fake_count       INTEGER DEFAULT 0,
			sum_confidence   FLOAT   DEFAULT 0,
			last_analyzed_at TIMESTAMPTZ DEFAULT NOW()
		)`,
	}

	for _, m := range migrations {
		if _, err := DB.Exec(m); err != nil {
			log.Fatalf("❌ Ошибка создания таблицы: %v", err)
		}
	}
}

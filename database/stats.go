package database

import (
	"time"
)

// SourceStat — накопленная репутация источника новостей
// (домен из анализов по ссылке).
type SourceStat struct {
	Source         string    `json:"source"`
	TotalAnalyses  int       `json:"total_analyses"`
	FakeCount      int       `json:"fake_count"`
	AvgConfidence  float64   `json:"avg_confidence"`
	LastAnalyzedAt time.Time `json:"last_analyzed_at"`
}

// UpsertSourceStats обновляет репутацию источника после анализа по ссылке.
func (s *Store) UpsertSourceStats(source string, isFake bool, confidence float64) error {
	fake := 0
	if isFake {
		fake = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO source_stats (source, total_analyses, fake_count, sum_confidence, last_analyzed_at)
		VALUES ($1, 1, $2, $3, NOW())
		ON CONFLICT (source) DO UPDATE SET
			total_analyses   = source_stats.total_analyses + 1,
			fake_count       = source_stats.fake_count + $2,
			sum_confidence   = source_stats.sum_confidence + $3,
			last_analyzed_at = NOW()
	`, source, fake, confidence)
	return err
}

// TopSources — самые проверяемые источники, по числу анализов.
func (s *Store) TopSources(limit int) ([]SourceStat, error) {
	rows, err := s.db.Query(`
		SELECT source, total_analyses, fake_count,
		       CASE WHEN total_analyses > 0 THEN sum_confidence / total_analyses ELSE 0 END,
		       last_analyzed_at
		FROM source_stats
		ORDER BY total_analyses DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []SourceStat
	for rows.Next() {
		var st SourceStat
		if err := rows.Scan(&st.Source, &st.TotalAnalyses, &st.FakeCount, &st.AvgConfidence, &st.LastAnalyzedAt); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// AdminStats — сводка по сохранённым результатам для админки.
type AdminStats struct {
	TotalResults int            `json:"total_results"`
	FakeCount    int            `json:"fake_count"`
	ByType       map[string]int `json:"by_type"`
	Recent       []AdminRecent  `json:"recent"`
}

type AdminRecent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func (s *Store) Stats() (*AdminStats, error) {
	stats := &AdminStats{ByType: map[string]int{}}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM analysis_results`).Scan(&stats.TotalResults); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM analysis_results WHERE LOWER(result->>'status') LIKE '%fake%'`,
	).Scan(&stats.FakeCount); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT type, COUNT(*) FROM analysis_results GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		stats.ByType[t] = n
	}

	recent, err := s.db.Query(`
		SELECT id, type, LEFT(content, 100), COALESCE(result->>'status', ''), created_at
		FROM analysis_results
		ORDER BY created_at DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer recent.Close()
	for recent.Next() {
		var item AdminRecent
		var created time.Time
		if err := recent.Scan(&item.ID, &item.Type, &item.Content, &item.Status, &created); err != nil {
			return nil, err
		}
		item.CreatedAt = created.Format(time.RFC3339)
		stats.Recent = append(stats.Recent, item)
	}
	return stats, recent.Err()
}

package models

// TrendingResponse — ответ GET /trending-news внешнего бэкенда,
// отдаётся фронтенду без изменений.
type TrendingResponse struct {
	Status       string            `json:"status"`
	Message      string            `json:"message,omitempty"`
	TrendingNews []TrendingArticle `json:"trending_news"`
	Trends       Trends            `json:"trends"`
	Preferences  Preferences       `json:"preferences"`
}

type TrendingArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

type Trends struct {
	Categories []string  `json:"categories"`
	Popularity []float64 `json:"popularity"`
}

type Preferences struct {
	MostReadCategories      []string  `json:"most_read_categories"`
	ReadingTimeDistribution []float64 `json:"reading_time_distribution"`
}

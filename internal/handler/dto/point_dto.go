package dto

import (
	"time"

	"github.com/yourusername/community-api/internal/domain/entity"
	"github.com/yourusername/community-api/internal/domain/repository"
)

// PointsResponse представляет баланс очков пользователя
type PointsResponse struct {
	UserID            string     `json:"user_id"`
	Points            int        `json:"points"`
	LastAccumulatedAt *time.Time `json:"last_accumulated_at,omitempty"`
}

// RankingEntryResponse представляет строку рейтинга
type RankingEntryResponse struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Points int    `json:"points"`
}

// RankingResponse представляет рейтинг по очкам
type RankingResponse struct {
	Ranking []RankingEntryResponse `json:"ranking"`
	Total   int                    `json:"total"`
}

// ActivityTypeTotalResponse представляет сумму начислений по типу активности
type ActivityTypeTotalResponse struct {
	ActivityType string `json:"activity_type"`
	TotalPoints  int    `json:"total_points"`
}

// ActivityTypeConfigResponse представляет конфигурацию типа активности
type ActivityTypeConfigResponse struct {
	ActivityType    string `json:"activity_type"`
	Points          int    `json:"points"`
	CooldownMinutes int    `json:"cooldown_minutes"`
	DailyCap        *int   `json:"daily_cap,omitempty"`
	Enabled         bool   `json:"enabled"`
}

// NewPointsResponse создает DTO баланса очков
func NewPointsResponse(p *entity.ActivityPoint) *PointsResponse {
	if p == nil {
		return nil
	}
	return &PointsResponse{
		UserID:            p.UserID,
		Points:            p.Points,
		LastAccumulatedAt: p.LastAccumulatedAt,
	}
}

// NewRankingResponse создает DTO рейтинга.
// Ранги присваиваются по позиции в уже отсортированном списке.
func NewRankingResponse(points []entity.ActivityPoint) *RankingResponse {
	ranking := make([]RankingEntryResponse, len(points))
	for i, p := range points {
		ranking[i] = RankingEntryResponse{
			Rank:   i + 1,
			UserID: p.UserID,
			Points: p.Points,
		}
	}
	return &RankingResponse{Ranking: ranking, Total: len(ranking)}
}

// NewListActivityTypeTotalResponse создает слайс DTO сумм по типам активности
func NewListActivityTypeTotalResponse(totals []repository.ActivityTypeTotal) []ActivityTypeTotalResponse {
	list := make([]ActivityTypeTotalResponse, len(totals))
	for i, t := range totals {
		list[i] = ActivityTypeTotalResponse{
			ActivityType: t.ActivityType,
			TotalPoints:  t.TotalPoints,
		}
	}
	return list
}

// NewActivityTypeConfigResponse создает DTO конфигурации типа активности
func NewActivityTypeConfigResponse(cfg *entity.ActivityTypeConfig) *ActivityTypeConfigResponse {
	if cfg == nil {
		return nil
	}
	return &ActivityTypeConfigResponse{
		ActivityType:    cfg.ActivityType,
		Points:          cfg.Points,
		CooldownMinutes: cfg.CooldownMinutes,
		DailyCap:        cfg.DailyCap,
		Enabled:         cfg.Enabled,
	}
}

// NewListActivityTypeConfigResponse создает слайс DTO конфигураций типов активности
func NewListActivityTypeConfigResponse(configs []entity.ActivityTypeConfig) []*ActivityTypeConfigResponse {
	list := make([]*ActivityTypeConfigResponse, len(configs))
	for i := range configs {
		list[i] = NewActivityTypeConfigResponse(&configs[i])
	}
	return list
}

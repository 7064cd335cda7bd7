package entity

import (
	"time"
)

// ActivityPoint представляет накопленный баланс очков активности пользователя
type ActivityPoint struct {
	UserID            string     `gorm:"primaryKey;size:32" json:"user_id"`
	Points            int        `gorm:"not null;default:0" json:"points"`
	LastAccumulatedAt *time.Time `json:"last_accumulated_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (ActivityPoint) TableName() string {
	return "activity_points"
}

// Apply прибавляет delta к балансу, не давая итогу уйти ниже нуля.
// Возвращает фактически применённую дельту (может отличаться от delta
// при отрицательном начислении около нуля).
func (p *ActivityPoint) Apply(delta int, now time.Time) int {
	next := p.Points + delta
	if next < 0 {
		next = 0
	}
	applied := next - p.Points
	p.Points = next

	// LastAccumulatedAt обновляется только при успешном начислении
	if applied != 0 {
		t := now
		p.LastAccumulatedAt = &t
	}
	return applied
}

// SetBalance выставляет баланс напрямую (админская операция), не ниже нуля
func (p *ActivityPoint) SetBalance(value int) {
	if value < 0 {
		value = 0
	}
	p.Points = value
}

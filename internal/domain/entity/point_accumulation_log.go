package entity

import (
	"time"
)

// DateLayout — формат календарного ключа для суточных счётчиков и публикаций
const DateLayout = "2006-01-02"

// DateKey возвращает календарный ключ даты в настроенной таймзоне
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// PointAccumulationLog хранит состояние rate-limit для пары (пользователь, тип активности):
// время последнего начисления и суточный счётчик
type PointAccumulationLog struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            string     `gorm:"size:32;not null;uniqueIndex:idx_accumulation_log_user_type,priority:1" json:"user_id"`
	ActivityType      string     `gorm:"size:50;not null;uniqueIndex:idx_accumulation_log_user_type,priority:2" json:"activity_type"`
	LastAccumulatedAt *time.Time `json:"last_accumulated_at,omitempty"`
	DailyCount        int        `gorm:"not null;default:0" json:"daily_count"`
	DailyDate         string     `gorm:"size:10;not null;default:''" json:"daily_date"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (PointAccumulationLog) TableName() string {
	return "point_accumulation_logs"
}

// CooldownActive проверяет, не истек ли кулдаун с момента последнего начисления
func (l *PointAccumulationLog) CooldownActive(cooldown time.Duration, now time.Time) bool {
	if l.LastAccumulatedAt == nil || cooldown <= 0 {
		return false
	}
	return now.Sub(*l.LastAccumulatedAt) < cooldown
}

// DailyCapReached проверяет, исчерпан ли суточный лимит начислений.
// Счётчик за прошлые дни не учитывается: он сбрасывается при первом
// начислении нового дня (см. Advance).
func (l *PointAccumulationLog) DailyCapReached(dailyCap *int, today string) bool {
	if dailyCap == nil {
		return false
	}
	return l.DailyDate == today && l.DailyCount >= *dailyCap
}

// Advance переводит журнал в состояние после успешного начисления:
// инкремент суточного счётчика (или сброс на 1 при смене дня)
// и обновление времени последнего начисления
func (l *PointAccumulationLog) Advance(now time.Time, today string) {
	if l.DailyDate == today {
		l.DailyCount++
	} else {
		l.DailyDate = today
		l.DailyCount = 1
	}
	t := now
	l.LastAccumulatedAt = &t
}

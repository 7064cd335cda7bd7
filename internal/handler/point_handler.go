package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/community-api/internal/domain/entity"
	"github.com/yourusername/community-api/internal/handler/dto"
	apperrors "github.com/yourusername/community-api/internal/pkg/errors"
	"github.com/yourusername/community-api/internal/service"
)

// PointHandler обрабатывает запросы, связанные с очками активности
type PointHandler struct {
	pointService *service.PointService
}

// NewPointHandler создает новый обработчик очков активности
func NewPointHandler(pointService *service.PointService) *PointHandler {
	return &PointHandler{pointService: pointService}
}

// AccumulateRequest представляет событие активности от gateway
type AccumulateRequest struct {
	UserID       string `json:"user_id" binding:"required,max=32"`
	ActivityType string `json:"activity_type" binding:"required,max=32"`
}

// Accumulate обрабатывает событие активности пользователя
// POST /api/points/accumulate
func (h *PointHandler) Accumulate(c *gin.Context) {
	var req AccumulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.pointService.TryAccumulate(req.UserID, req.ActivityType)
	if err != nil {
		h.handlePointError(c, err)
		return
	}

	// nil-результат — штатный отказ ворот (кулдаун, дневной лимит,
	// тип выключен). Для gateway это не ошибка.
	if result == nil {
		c.JSON(http.StatusOK, gin.H{"accumulated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accumulated":  true,
		"points_added": result.PointsAdded,
		"new_points":   result.NewPoints,
	})
}

// GetUserPoints возвращает баланс пользователя
// GET /api/points/users/:user_id
func (h *PointHandler) GetUserPoints(c *gin.Context) {
	userID := c.Param("user_id")

	point, err := h.pointService.GetUserPoints(userID)
	if err != nil {
		h.handlePointError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPointsResponse(point))
}

// AdjustPointsRequest представляет запрос на ручную корректировку баланса
type AdjustPointsRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// AdjustPoints изменяет баланс пользователя на указанную величину (админ)
// POST /api/points/users/:user_id/adjust
func (h *PointHandler) AdjustPoints(c *gin.Context) {
	userID := c.Param("user_id")

	var req AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	point, err := h.pointService.AdjustPoints(userID, req.Delta)
	if err != nil {
		h.handlePointError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPointsResponse(point))
}

// SetPointsRequest представляет запрос на прямую установку баланса
type SetPointsRequest struct {
	Points *int `json:"points" binding:"required,min=0"`
}

// SetPoints выставляет баланс пользователя напрямую (админ)
// PUT /api/points/users/:user_id
func (h *PointHandler) SetPoints(c *gin.Context) {
	userID := c.Param("user_id")

	var req SetPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	point, err := h.pointService.SetPoints(userID, *req.Points)
	if err != nil {
		h.handlePointError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPointsResponse(point))
}

// ResetUserPoints обнуляет очки пользователя (админ)
// DELETE /api/points/users/:user_id
func (h *PointHandler) ResetUserPoints(c *gin.Context) {
	userID := c.Param("user_id")

	if err := h.pointService.ResetUserPoints(userID); err != nil {
		h.handlePointError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User points reset successfully"})
}

// ResetAllPoints обнуляет очки всех пользователей (админ)
// DELETE /api/points
func (h *PointHandler) ResetAllPoints(c *gin.Context) {
	if err := h.pointService.ResetAllPoints(); err != nil {
		h.handlePointError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All points reset successfully"})
}

// GetRanking возвращает рейтинг по очкам
// GET /api/points/ranking?limit=10
func (h *PointHandler) GetRanking(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 10
	}

	points, err := h.pointService.GetRanking(limit)
	if err != nil {
		h.handlePointError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRankingResponse(points))
}

// ExportRanking экспортирует рейтинг в CSV или Excel формате
// GET /api/points/ranking/export?format=csv|xlsx
func (h *PointHandler) ExportRanking(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")

	// Для выгрузки берем полный рейтинг, а не верхушку
	points, err := h.pointService.GetRanking(100)
	if err != nil {
		h.handlePointError(c, err)
		return
	}

	filename := fmt.Sprintf("points_ranking_%s", time.Now().Format("2006-01-02"))

	switch format {
	case "csv":
		h.exportCSV(c, points, filename)
	default:
		h.exportXLSX(c, points, filename)
	}
}

// exportCSV экспортирует рейтинг в CSV с правильным экранированием спецсимволов
func (h *PointHandler) exportCSV(c *gin.Context, points []entity.ActivityPoint, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Место", "Пользователь", "Очки", "Последнее начисление"})

	for i, p := range points {
		last := ""
		if p.LastAccumulatedAt != nil {
			last = p.LastAccumulatedAt.Format(time.RFC3339)
		}
		writer.Write([]string{
			strconv.Itoa(i + 1),
			sanitizeForExcel(p.UserID),
			strconv.Itoa(p.Points),
			last,
		})
	}
}

// exportXLSX экспортирует рейтинг в Excel с использованием StreamWriter
func (h *PointHandler) exportXLSX(c *gin.Context, points []entity.ActivityPoint, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Рейтинг"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[PointHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Место", "Пользователь", "Очки", "Последнее начисление"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[PointHandler] Ошибка записи заголовков: %v", err)
	}

	for i, p := range points {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		last := ""
		if p.LastAccumulatedAt != nil {
			last = p.LastAccumulatedAt.Format(time.RFC3339)
		}

		row := []interface{}{i + 1, sanitizeForExcel(p.UserID), p.Points, last}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[PointHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[PointHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[PointHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// GetPointHistory возвращает суммы начислений пользователя по типам активности
// GET /api/points/users/:user_id/history?from=...&to=...
func (h *PointHandler) GetPointHistory(c *gin.Context) {
	userID := c.Param("user_id")

	var from, to *time.Time
	if fromStr := c.Query("from"); fromStr != "" {
		if t, err := time.Parse(time.RFC3339, fromStr); err == nil {
			from = &t
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if t, err := time.Parse(time.RFC3339, toStr); err == nil {
			to = &t
		}
	}

	totals, err := h.pointService.GetPointHistory(userID, from, to)
	if err != nil {
		h.handlePointError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"totals":  dto.NewListActivityTypeTotalResponse(totals),
	})
}

// GetActivityTypes возвращает все типы активности
// GET /api/points/activity-types
func (h *PointHandler) GetActivityTypes(c *gin.Context) {
	configs, err := h.pointService.GetActivityTypeConfigs()
	if err != nil {
		h.handlePointError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity_types": dto.NewListActivityTypeConfigResponse(configs)})
}

// SetActivityTypeRequest представляет запрос на настройку типа активности
type SetActivityTypeRequest struct {
	Points          int  `json:"points"`
	CooldownMinutes int  `json:"cooldown_minutes"`
	DailyCap        *int `json:"daily_cap"`
	Enabled         bool `json:"enabled"`
}

// SetActivityType создает или обновляет конфигурацию типа активности (админ)
// PUT /api/points/activity-types/:type
func (h *PointHandler) SetActivityType(c *gin.Context) {
	activityType := c.Param("type")

	var req SetActivityTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := &entity.ActivityTypeConfig{
		ActivityType:    activityType,
		Points:          req.Points,
		CooldownMinutes: req.CooldownMinutes,
		DailyCap:        req.DailyCap,
		Enabled:         req.Enabled,
	}

	if err := h.pointService.SetActivityTypeConfig(cfg); err != nil {
		h.handlePointError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewActivityTypeConfigResponse(cfg))
}

// handlePointError обрабатывает ошибки сервиса очков и отправляет соответствующий HTTP ответ
func (h *PointHandler) handlePointError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in PointHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

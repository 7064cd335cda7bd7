package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizQuestion_IsCorrect(t *testing.T) {
	// Arrange
	question := &QuizQuestion{
		ID:       1,
		Question: "Какая планета ближе всего к Солнцу?",
		Options:  StringArray{"Венера", "Меркурий", "Марс", "Земля", "Юпитер"},
		Answer:   2,
	}

	// Act & Assert
	assert.True(t, question.IsCorrect(2), "IsCorrect должен вернуть true для правильного варианта")
	assert.False(t, question.IsCorrect(1))
	assert.False(t, question.IsCorrect(5))
}

func TestValidOption(t *testing.T) {
	// Валидные номера: 1..5
	for opt := 1; opt <= QuizOptionCount; opt++ {
		assert.True(t, ValidOption(opt), "Вариант %d должен быть валидным", opt)
	}

	assert.False(t, ValidOption(0), "Нумерация вариантов 1-based, 0 невалиден")
	assert.False(t, ValidOption(-1))
	assert.False(t, ValidOption(6))
}

func TestQuizAnswer_AwardPoints_Once(t *testing.T) {
	// Arrange
	answer := &QuizAnswer{QuestionID: 1, UserID: "111", IsCorrect: true}

	// Act & Assert: первое начисление фиксируется
	require.True(t, answer.AwardPoints(100))
	assert.Equal(t, 100, answer.PointsAwarded)

	// Повторное начисление запрещено
	assert.False(t, answer.AwardPoints(100), "Повторное начисление должно быть отклонено")
	assert.Equal(t, 100, answer.PointsAwarded, "Сумма не должна измениться")
}

func TestQuizAnswer_Revise(t *testing.T) {
	// Arrange
	answer := &QuizAnswer{SelectedOption: 1, IsCorrect: false}

	// Act
	answer.Revise(3, true)

	// Assert
	assert.Equal(t, 3, answer.SelectedOption)
	assert.True(t, answer.IsCorrect)
}

func TestQuizPublishHistory_AnswerWindowOpen(t *testing.T) {
	history := &QuizPublishHistory{PublishedDate: "2026-08-31"}
	assert.True(t, history.AnswerWindowOpen(), "До раскрытия окно приёма открыто")

	history.ExplanationRevealed = true
	assert.False(t, history.AnswerWindowOpen(), "После раскрытия окно приёма закрыто")
}

func TestQuizConfig_ReadyToPublish(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      QuizConfig
		expected bool
	}{
		{"включен и канал настроен", QuizConfig{Enabled: true, QuizChannelID: "123456"}, true},
		{"выключен", QuizConfig{Enabled: false, QuizChannelID: "123456"}, false},
		{"канал не настроен", QuizConfig{Enabled: true, QuizChannelID: ""}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.cfg.ReadyToPublish())
		})
	}
}

// Тесты для StringArray (JSONB сериализация)

func TestStringArray_Scan_ValidJSON(t *testing.T) {
	// Arrange
	jsonBytes := []byte(`["Венера", "Меркурий", "Марс"]`)
	var arr StringArray

	// Act
	err := arr.Scan(jsonBytes)

	// Assert
	require.NoError(t, err, "Scan не должен возвращать ошибку для валидного JSON")
	assert.Len(t, arr, 3)
	assert.Equal(t, "Меркурий", arr[1])
}

func TestStringArray_Scan_StringValue(t *testing.T) {
	// Arrange: sqlite возвращает текстовые колонки как string
	var arr StringArray

	// Act
	err := arr.Scan(`["A","B"]`)

	// Assert
	require.NoError(t, err, "Scan должен принимать string")
	assert.Equal(t, StringArray{"A", "B"}, arr)
}

func TestStringArray_Scan_NullValue(t *testing.T) {
	var arr StringArray

	err := arr.Scan(nil)

	require.NoError(t, err, "Scan не должен возвращать ошибку для nil")
	assert.Len(t, arr, 0, "Для nil должен вернуться пустой массив")
}

func TestStringArray_Scan_InvalidType(t *testing.T) {
	var arr StringArray

	err := arr.Scan(12345)

	assert.Error(t, err, "Scan должен возвращать ошибку для неподдерживаемого типа")
}

func TestStringArray_Value(t *testing.T) {
	// Непустой массив
	val, err := StringArray{"A", "B", "C"}.Value()
	require.NoError(t, err)
	bytes, ok := val.([]byte)
	require.True(t, ok, "Value должен возвращать []byte")
	assert.Equal(t, `["A","B","C"]`, string(bytes))

	// Пустой массив сериализуется в [] вместо null
	val, err = StringArray{}.Value()
	require.NoError(t, err)
	bytes, ok = val.([]byte)
	require.True(t, ok)
	assert.Equal(t, "[]", string(bytes))
}

package mixer

import (
	"fmt"
	"math"
)

const (
	// UnityPosition - позиция слайдера, на которой усиление равно 1.0
	UnityPosition = 60.0
	// MaxPosition - верхняя граница слайдера
	MaxPosition = 100.0
	// MaxGain - усиление в верхней точке слайдера
	MaxGain = 3.0

	boostSteepness = 1.5
)

// boostNorm нормирует экспоненту так, чтобы позиция 100 давала ровно MaxGain
var boostNorm = math.Expm1(boostSteepness)

// Gain переводит позицию слайдера (0..100) в линейный множитель.
//
// Участок 0..60 линейный (0..1), участок 60..100 экспоненциальный (1..3).
// Значение не ограничивается: вызывающая сторона обязана передать
// позицию, уже проверенную через ValidatePosition.
func Gain(position float64) float64 {
	if position <= UnityPosition {
		return position / UnityPosition
	}
	t := (position - UnityPosition) / (MaxPosition - UnityPosition)
	return 1.0 + math.Expm1(boostSteepness*t)/boostNorm*(MaxGain-1.0)
}

// ValidatePosition проверяет, что позиция слайдера лежит в диапазоне 0..100
func ValidatePosition(position float64) error {
	if math.IsNaN(position) || position < 0 || position > MaxPosition {
		return fmt.Errorf("%w: %v", ErrInvalidSliderValue, position)
	}
	return nil
}

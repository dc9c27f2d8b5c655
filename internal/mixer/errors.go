package mixer

import "errors"

var (
	// ErrTrackUnavailable - поток трека не удалось открыть или декодировать
	ErrTrackUnavailable = errors.New("трек недоступен")
	// ErrNoNextTrack - в плейлисте деки нет следующего трека; жест ничего не меняет
	ErrNoNextTrack = errors.New("нет следующего трека")
	// ErrInvalidSliderValue - позиция слайдера вне диапазона 0..100
	ErrInvalidSliderValue = errors.New("недопустимое значение слайдера")
	// ErrInvalidFadeDuration - отрицательная или нечисловая длительность фейда
	ErrInvalidFadeDuration = errors.New("недопустимая длительность фейда")
	// ErrNoTrack - на деке нет ни выбранного, ни загруженного трека
	ErrNoTrack = errors.New("на деке нет трека")
	// ErrUnknownDeck - неизвестный идентификатор деки
	ErrUnknownDeck = errors.New("неизвестная дека")
	// ErrSameDeck - кроссфейд деки самой в себя
	ErrSameDeck = errors.New("кроссфейд требует две разные деки")
	// ErrEngineClosed - движок уже остановлен
	ErrEngineClosed = errors.New("движок остановлен")
)

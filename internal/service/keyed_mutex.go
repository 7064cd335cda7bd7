package service

import (
	"sync"
)

// keyedMutex сериализует операции по строковому ключу.
// Разные ключи обрабатываются полностью независимо.
// Мьютексы не освобождаются: множество пар (пользователь, тип активности)
// ограничено размером сообщества, утечка здесь не проблема.
type keyedMutex struct {
	mutexes sync.Map // map[string]*sync.Mutex
}

// Lock захватывает мьютекс ключа и возвращает функцию освобождения
func (k *keyedMutex) Lock(key string) func() {
	m, _ := k.mutexes.LoadOrStore(key, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

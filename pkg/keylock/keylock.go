package keylock

import (
	"sort"
	"sync"
)

// KeyLock набор мьютексов по строковому ключу.
// Неиспользуемые мьютексы удаляются, поэтому память не растет с количеством ключей
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New создает новый KeyLock
func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*entry)}
}

// Lock захватывает все ключи и возвращает функцию освобождения.
// Ключи захватываются в отсортированном порядке (без дублей), что исключает взаимную блокировку
func (k *KeyLock) Lock(keys ...string) (unlock func()) {
	keys = normalize(keys)

	acquired := make([]*entry, 0, len(keys))
	for _, key := range keys {
		e := k.acquire(key)
		e.mu.Lock()
		acquired = append(acquired, e)
	}

	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].mu.Unlock()
			k.release(keys[i])
		}
	}
}

func (k *KeyLock) acquire(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	return e
}

func (k *KeyLock) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}

func normalize(keys []string) []string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	result := sorted[:0]
	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue
		}
		result = append(result, key)
	}
	return result
}

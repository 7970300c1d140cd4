package runtime

import "sync"

// Value хранит последнее значение и синхронно уведомляет подписчиков после каждого изменения.
// Буфера нет: подписчик видит только актуальное значение.
type Value[T any] struct {
	mu  sync.RWMutex
	val T

	subs   []subscriber[T]
	nextID int

	// hold перехватывает уведомление, пока владелец проводит групповое изменение
	hold func(key any, publish func() func()) bool
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{val: initial}
}

func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.val
}

func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.val = val
	subs := v.snapshot()
	v.mu.Unlock()

	v.notify(val, subs)
}

// Update атомарно применяет fn к текущему значению
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	v.val = fn(v.val)
	val := v.val
	subs := v.snapshot()
	v.mu.Unlock()

	v.notify(val, subs)
}

// Subscribe регистрирует наблюдателя. Текущее значение не отправляется.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextID++
	id := v.nextID
	v.subs = append(v.subs, subscriber[T]{id: id, fn: fn})

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()

		for i, s := range v.subs {
			if s.id == id {
				v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
				return
			}
		}
	}
}

func (v *Value[T]) notify(val T, subs []subscriber[T]) {
	if len(subs) == 0 {
		return
	}

	if v.hold != nil && v.hold(v, v.publish) {
		return
	}

	for _, s := range subs {
		s.fn(val)
	}
}

// publish фиксирует текущее значение и подписчиков, вызов возвращенной функции их уведомляет
func (v *Value[T]) publish() func() {
	v.mu.RLock()
	val := v.val
	subs := v.snapshot()
	v.mu.RUnlock()

	return func() {
		for _, s := range subs {
			s.fn(val)
		}
	}
}

func (v *Value[T]) snapshot() []subscriber[T] {
	if len(v.subs) == 0 {
		return nil
	}

	subs := make([]subscriber[T], len(v.subs))
	copy(subs, v.subs)

	return subs
}

package logger

import (
	"io"
	"os"
	"sync"
)

const backlogSize = 200

// Broadcaster — io.Writer, который дублирует вывод в консоль,
// хранит последние строки для новых подписчиков и рассылает
// всё активным WebSocket подключениям админки.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[chan string]bool
	backlog     []string
}

var Instance = &Broadcaster{
	subscribers: make(map[chan string]bool),
}

func (b *Broadcaster) Write(p []byte) (n int, err error) {
	msg := string(p)

	os.Stdout.Write(p)

	b.mu.Lock()
	b.backlog = append(b.backlog, msg)
	if len(b.backlog) > backlogSize {
		b.backlog = b.backlog[len(b.backlog)-backlogSize:]
	}
	for ch := range b.subscribers {
		// select, чтобы не блокироваться на медленном клиенте
		select {
		case ch <- msg:
		default:
		}
	}
	b.mu.Unlock()

	return len(p), nil
}

// Subscribe создаёт канал для получения логов в реальном времени.
func (b *Broadcaster) Subscribe() chan string {
	ch := make(chan string, 100)
	b.mu.Lock()
	b.subscribers[ch] = true
	b.mu.Unlock()
	return ch
}

// Unsubscribe удаляет канал из рассылки.
func (b *Broadcaster) Unsubscribe(ch chan string) {
	b.mu.Lock()
	delete(b.subscribers, ch)
	b.mu.Unlock()
	close(ch)
}

// Recent возвращает копию последних строк лога — отдаётся новому
// подключению админки до живого потока.
func (b *Broadcaster) Recent() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.backlog))
	copy(out, b.backlog)
	return out
}

func GetWriter() io.Writer {
	return Instance
}

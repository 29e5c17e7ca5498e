package logger

import (
	"fmt"
	"testing"
)

func TestBroadcasterFanout(t *testing.T) {
	b := &Broadcaster{subscribers: make(map[chan string]bool)}
	ch := b.Subscribe()

	b.Write([]byte("line one\n"))

	select {
	case msg := <-ch:
		if msg != "line one\n" {
			t.Errorf("msg = %q", msg)
		}
	default:
		t.Fatal("subscriber did not receive the line")
	}

	b.Unsubscribe(ch)
	// после отписки запись не должна паниковать на закрытом канале
	b.Write([]byte("line two\n"))
}

func TestBroadcasterBacklog(t *testing.T) {
	b := &Broadcaster{subscribers: make(map[chan string]bool)}
	for i := 0; i < backlogSize+50; i++ {
		b.Write([]byte(fmt.Sprintf("line %d\n", i)))
	}

	recent := b.Recent()
	if len(recent) != backlogSize {
		t.Fatalf("backlog = %d, want %d", len(recent), backlogSize)
	}
	if recent[len(recent)-1] != fmt.Sprintf("line %d\n", backlogSize+49) {
		t.Errorf("last = %q", recent[len(recent)-1])
	}
}

func TestBroadcasterSlowSubscriberNotBlocking(t *testing.T) {
	b := &Broadcaster{subscribers: make(map[chan string]bool)}
	ch := b.Subscribe()
	// переполняем буфер канала: запись не должна заблокироваться
	for i := 0; i < 200; i++ {
		b.Write([]byte("x\n"))
	}
	b.Unsubscribe(ch)
}

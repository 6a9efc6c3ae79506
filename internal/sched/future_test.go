package sched

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFutureResolveOnce(t *testing.T) {
	f := NewFuture[int](nil)
	if _, ok := f.Result(); ok {
		t.Fatal("new future already resolved")
	}
	if !f.Resolve(1) {
		t.Error("first Resolve() = false")
	}
	if f.Resolve(2) {
		t.Error("second Resolve() = true")
	}
	if v, ok := f.Result(); !ok || v != 1 {
		t.Errorf("Result() = %d, %v; want 1, true", v, ok)
	}
	select {
	case <-f.Done():
	default:
		t.Error("Done() not closed")
	}
}

func TestFutureThenRunsOnScheduler(t *testing.T) {
	l := NewLoop()
	f := NewFuture[string](l)
	var got []string
	f.Then(func(v string) { got = append(got, "before:"+v) })
	f.Resolve("x")
	f.Then(func(v string) { got = append(got, "after:"+v) })

	if len(got) != 0 {
		t.Fatalf("continuations ran inline: %v", got)
	}
	l.Drain()
	if len(got) != 2 || got[0] != "before:x" || got[1] != "after:x" {
		t.Errorf("got %v", got)
	}
}

func TestFutureInlineWithoutScheduler(t *testing.T) {
	f := Resolved[int](nil, 7)
	ran := false
	f.Then(func(v int) { ran = v == 7 })
	if !ran {
		t.Error("continuation did not run inline")
	}
}

func TestMapAndChain(t *testing.T) {
	l := NewLoop()
	src := NewFuture[int](l)
	doubled := Map(src, func(v int) int { return v * 2 })
	chained := Chain(doubled, func(v int) *Future[string] {
		out := NewFuture[string](l)
		l.Post(func() { out.Resolve(time.Duration(v).String()) })
		return out
	})

	src.Resolve(21)
	l.Drain()
	if v, ok := chained.Result(); !ok || v != "42ns" {
		t.Errorf("Chain() = %q, %v; want 42ns, true", v, ok)
	}
}

func TestFutureWait(t *testing.T) {
	f := NewFuture[int](nil)
	go func() {
		time.Sleep(5 * time.Millisecond)
		f.Resolve(3)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if v, err := f.Wait(ctx); err != nil || v != 3 {
		t.Errorf("Wait() = %d, %v; want 3, nil", v, err)
	}

	pending := NewFuture[int](nil)
	short, cancelShort := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancelShort()
	if _, err := pending.Wait(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}
}

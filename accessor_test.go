package xferbuf

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAccessor(t *testing.T) {
	m, _ := NewTestManager(t, 1, 0)
	key := testKey(7)
	a := NewAccessor(m, key)
	if a.Key() != key {
		t.Errorf("expected key %v, got %v", key, a.Key())
	}

	if _, ok := a.Access(); ok {
		t.Fatal("expected no buffer before create")
	}
	if _, err := a.WriteAt([]byte("x"), 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := a.ReadAt(make([]byte, 1), 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if _, err := a.Create(); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Access(); !ok {
		t.Fatal("expected buffer after create")
	}

	a.Remove()
	if _, ok := m.Access(key); ok {
		t.Error("expected buffer to be removed")
	}
	if a.Len() != 0 {
		t.Errorf("expected len 0 without a buffer, got %d", a.Len())
	}
}

func TestAccessorSurvivesMigration(t *testing.T) {
	m, _ := NewTestManager(t, 1, 0)
	mustCreate(t, m, testKey(1))
	a := NewAccessor(m, testKey(2))
	b, err := a.Create()
	if err != nil {
		t.Fatal(err)
	}
	if b.IsStatic() {
		t.Fatal("expected a dynamic buffer")
	}

	// Frames arrive in decreasing offset order, with a migration in between.
	if _, err := a.WriteAt([]byte("world"), 6); err != nil {
		t.Fatal(err)
	}
	m.Remove(testKey(1))
	if b.IsValid() {
		t.Fatal("expected the handle to be stale after migration")
	}
	if _, err := a.WriteAt([]byte("hello "), 0); err != nil {
		t.Fatal(err)
	}

	got, err := io.ReadAll(a.NewReader())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte("hello world"), got); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
	if a.Len() != len("hello world") {
		t.Errorf("expected len %d, got %d", len("hello world"), a.Len())
	}
}

func TestAccessorEmptyKeyPanics(t *testing.T) {
	m, _ := NewTestManager(t, 1, 0)
	defer func() {
		if recover() == nil {
			t.Error("expected NewAccessor to panic on an empty key")
		}
	}()
	NewAccessor(m, NewKey(NodeIDInvalid, MessageBroadcast))
}

package buffer

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStaticWriteAndRead(t *testing.T) {
	b := NewStatic(make([]byte, 32))
	if n, err := b.WriteAt([]byte("world"), 6); err != nil || n != 5 {
		t.Fatalf("failed to write: n=%d err=%v", n, err)
	}
	if n, err := b.WriteAt([]byte("hello "), 0); err != nil || n != 6 {
		t.Fatalf("failed to write: n=%d err=%v", n, err)
	}
	if b.Len() != 11 {
		t.Errorf("expected len 11, got %d", b.Len())
	}
	if got := string(readAll(t, b)); got != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", got)
	}

	got := make([]byte, 20)
	n, err := b.ReadAt(got, 6)
	if err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
	if string(got[:n]) != "world" {
		t.Errorf("expected %q, got %q", "world", got[:n])
	}
}

func TestStaticWriteCapacity(t *testing.T) {
	b := NewStatic(make([]byte, 8))

	n, err := b.WriteAt([]byte("0123456789"), 2)
	if !errors.Is(err, ErrSizeExceeded) {
		t.Fatalf("expected ErrSizeExceeded, got %v", err)
	}
	if n != 6 || b.Len() != 8 {
		t.Errorf("expected 6 bytes written and len 8, got n=%d len=%d", n, b.Len())
	}

	if n, err := b.WriteAt([]byte("x"), 8); !errors.Is(err, ErrSizeExceeded) || n != 0 {
		t.Errorf("expected write at capacity to fail, got n=%d err=%v", n, err)
	}
	if _, err := b.WriteAt([]byte("x"), -1); !errors.Is(err, ErrOffsetOutOfBounds) {
		t.Errorf("expected ErrOffsetOutOfBounds, got %v", err)
	}
}

func TestStaticReset(t *testing.T) {
	data := make([]byte, 8)
	b := NewStatic(data)
	b.WriteAt([]byte("abcd"), 0)

	b.Reset()
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("expected len 0 after reset, got %d", b.Len())
	}
	if diff := cmp.Diff(make([]byte, 8), data); diff != "" {
		t.Errorf("expected storage to be zeroed (-want +got):\n%s", diff)
	}

	// A write past a gap exposes zeros, not stale content, and reading the
	// gap is an error.
	b.WriteAt([]byte("z"), 3)
	if diff := cmp.Diff([]byte{0, 0, 0, 'z'}, b.Bytes()); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
	if n, err := b.ReadAt(make([]byte, 4), 0); !errors.Is(err, ErrUnwritten) || n != 0 {
		t.Errorf("expected 0 bytes and ErrUnwritten, got n=%d err=%v", n, err)
	}
}

func TestStaticMigrateFrom(t *testing.T) {
	t.Run("Dynamic source", func(t *testing.T) {
		src, p := SetupTestDynamicWithCleanup(t, 10*bs, 0)
		data := generateBytes(t, 2.5)
		src.WriteAt(data[bs:], bs) // Out of order.
		src.WriteAt(data[:bs], 0)

		b := NewStatic(make([]byte, 3*bs))
		b.WriteAt([]byte("stale content"), 0)
		if !b.MigrateFrom(src) {
			t.Fatal("expected migration to succeed")
		}
		if b.Len() != src.Len() {
			t.Errorf("expected len %d, got %d", src.Len(), b.Len())
		}
		if diff := cmp.Diff(data, b.Bytes()); diff != "" {
			t.Errorf("content mismatch (-want +got):\n%s", diff)
		}
		if p.PutCalls() != 0 {
			t.Error("expected migration to leave releasing the source to the caller")
		}
	})

	t.Run("Dynamic source with gap", func(t *testing.T) {
		src, _ := SetupTestDynamicWithCleanup(t, 10*bs, 0)
		src.WriteAt([]byte("a"), 0)
		src.WriteAt([]byte("b"), 2*bs)

		b := NewStatic(make([]byte, 3*bs))
		if !b.MigrateFrom(src) {
			t.Fatal("expected migration to succeed")
		}
		want := make([]byte, 2*bs+1)
		want[0], want[2*bs] = 'a', 'b'
		if diff := cmp.Diff(want, b.Bytes()); diff != "" {
			t.Errorf("content mismatch (-want +got):\n%s", diff)
		}

		// Reads see the same gaps before and after migration.
		for _, off := range []int64{0, 1, bs, 2 * bs} {
			want := make([]byte, 3)
			wantN, wantErr := src.ReadAt(want, off)
			got := make([]byte, 3)
			n, err := b.ReadAt(got, off)
			if n != wantN || !errors.Is(err, wantErr) {
				t.Errorf("read at %d: expected n=%d err=%v, got n=%d err=%v", off, wantN, wantErr, n, err)
			}
			if diff := cmp.Diff(want[:wantN], got[:n]); diff != "" {
				t.Errorf("read at %d: content mismatch (-want +got):\n%s", off, diff)
			}
		}
		if _, err := b.ReadAt(make([]byte, 2), 0); !errors.Is(err, ErrUnwritten) {
			t.Errorf("expected ErrUnwritten, got %v", err)
		}
	})

	t.Run("Source too large", func(t *testing.T) {
		src, _ := SetupTestDynamicWithCleanup(t, 10*bs, 0)
		src.WriteAt(generateBytes(t, 2), 0)

		b := NewStatic(make([]byte, 2*bs-1))
		b.WriteAt([]byte("keep"), 0)
		if b.MigrateFrom(src) {
			t.Fatal("expected migration to fail")
		}
		if string(b.Bytes()) != "keep" {
			t.Errorf("expected buffer to be untouched, got %q", b.Bytes())
		}
	})

	t.Run("Static source", func(t *testing.T) {
		src := NewStatic(make([]byte, 8))
		src.WriteAt([]byte("c"), 2)
		b := NewStatic(make([]byte, 8))
		if !b.MigrateFrom(src) {
			t.Fatal("expected migration to succeed")
		}
		if diff := cmp.Diff([]byte{0, 0, 'c'}, b.Bytes()); diff != "" {
			t.Errorf("content mismatch (-want +got):\n%s", diff)
		}
		if _, err := b.ReadAt(make([]byte, 1), 0); !errors.Is(err, ErrUnwritten) {
			t.Errorf("expected ErrUnwritten, got %v", err)
		}
	})
}

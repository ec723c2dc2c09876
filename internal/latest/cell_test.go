package latest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCell_LoadEmpty(t *testing.T) {
	c := New[int]()

	v, seq, ok := c.Load()
	if ok || v != 0 || seq != 0 {
		t.Errorf("Load() on empty cell = (%d, %d, %v), want (0, 0, false)", v, seq, ok)
	}
}

func TestCell_StoreOverwrites(t *testing.T) {
	c := New[string]()

	c.Store("a")
	c.Store("b")
	c.Store("c")

	v, seq, ok := c.Load()
	if !ok || v != "c" {
		t.Fatalf("Load() = (%q, %v), want (\"c\", true)", v, ok)
	}
	if seq != 3 {
		t.Errorf("seq = %d, want 3", seq)
	}

	stats := c.Stats()
	if stats.Drops != 2 {
		t.Errorf("drops = %d, want 2", stats.Drops)
	}
}

func TestCell_LoadKeepsValue(t *testing.T) {
	c := New[int]()
	c.Store(7)

	for i := 0; i < 3; i++ {
		v, _, ok := c.Load()
		if !ok || v != 7 {
			t.Fatalf("Load() #%d = (%d, %v), want (7, true)", i, v, ok)
		}
	}

	// Value was read, so overwriting it is not a drop.
	c.Store(8)
	if got := c.Stats().Drops; got != 0 {
		t.Errorf("drops = %d, want 0", got)
	}
}

func TestCell_Take(t *testing.T) {
	c := New[int]()
	c.Store(1)

	v, ok := c.Take()
	if !ok || v != 1 {
		t.Fatalf("Take() = (%d, %v), want (1, true)", v, ok)
	}
	if _, ok := c.Take(); ok {
		t.Error("second Take() should find the cell empty")
	}
	if _, _, ok := c.Load(); ok {
		t.Error("Load() after Take() should find the cell empty")
	}
}

func TestCell_ReleaseOnOverwrite(t *testing.T) {
	var released []int
	c := NewWithRelease(func(v int) { released = append(released, v) })

	c.Store(1)
	c.Store(2)
	taken, _ := c.Take()
	c.Store(3)
	c.Close()

	if taken != 2 {
		t.Errorf("taken = %d, want 2", taken)
	}
	if len(released) != 2 || released[0] != 1 || released[1] != 3 {
		t.Errorf("released = %v, want [1 3]", released)
	}

	c.Store(4)
	if len(released) != 3 || released[2] != 4 {
		t.Errorf("store after close should release the value, released = %v", released)
	}
}

func TestCell_Wait(t *testing.T) {
	t.Run("returns stored value", func(t *testing.T) {
		c := New[int]()

		done := make(chan int, 1)
		go func() {
			v, err := c.Wait(context.Background())
			if err != nil {
				t.Errorf("Wait() error = %v", err)
			}
			done <- v
		}()

		time.Sleep(10 * time.Millisecond)
		c.Store(42)

		select {
		case v := <-done:
			if v != 42 {
				t.Errorf("Wait() = %d, want 42", v)
			}
		case <-time.After(time.Second):
			t.Fatal("Wait() did not return")
		}
	})

	t.Run("value already present", func(t *testing.T) {
		c := New[int]()
		c.Store(5)

		v, err := c.Wait(context.Background())
		if err != nil || v != 5 {
			t.Errorf("Wait() = (%d, %v), want (5, nil)", v, err)
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		c := New[int]()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		if _, err := c.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
		}
	})

	t.Run("close wakes every waiter", func(t *testing.T) {
		c := New[int]()

		var wg sync.WaitGroup
		errs := make(chan error, 3)
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := c.Wait(context.Background())
				errs <- err
			}()
		}

		time.Sleep(10 * time.Millisecond)
		c.Close()
		c.Close()
		wg.Wait()
		close(errs)

		for err := range errs {
			if !errors.Is(err, ErrClosed) {
				t.Errorf("Wait() error = %v, want ErrClosed", err)
			}
		}
	})
}

func TestCell_ConcurrentStoreLoad(t *testing.T) {
	c := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 1000; i++ {
			c.Store(i)
		}
	}()

	last := 0
	for {
		v, _, ok := c.Load()
		if ok {
			if v < last {
				t.Fatalf("value went backwards: %d after %d", v, last)
			}
			last = v
		}
		if last == 1000 {
			break
		}
		select {
		case <-ctx.Done():
			t.Fatal("cancelled")
		default:
		}
	}
	wg.Wait()

	if got := c.Stats().Seq; got != 1000 {
		t.Errorf("seq = %d, want 1000", got)
	}
}

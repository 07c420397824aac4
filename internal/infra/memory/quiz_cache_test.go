package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"quizify-service/internal/domain"
)

type countingLoader struct {
	loads int64
	err   error
}

func (l *countingLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	atomic.AddInt64(&l.loads, 1)
	if l.err != nil {
		return domain.Quiz{}, l.err
	}
	return domain.Quiz{ID: quizID, Title: "Quick Math"}, nil
}

func TestQuizCacheLoadsOnce(t *testing.T) {
	loader := &countingLoader{}
	cache := NewQuizCache(loader, time.Minute)

	for i := 0; i < 5; i++ {
		quiz, err := cache.GetQuiz(context.Background(), "quiz-1")
		if err != nil {
			t.Fatalf("get quiz: %v", err)
		}
		if quiz.ID != "quiz-1" {
			t.Fatalf("unexpected quiz: %+v", quiz)
		}
	}
	if n := atomic.LoadInt64(&loader.loads); n != 1 {
		t.Fatalf("expected a single backing load, got %d", n)
	}
}

func TestQuizCacheConcurrentMissesCoalesce(t *testing.T) {
	loader := &countingLoader{}
	cache := NewQuizCache(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
				t.Errorf("get quiz: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := atomic.LoadInt64(&loader.loads); n != 1 {
		t.Fatalf("expected singleflight to coalesce to one load, got %d", n)
	}
}

func TestQuizCacheReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{}
	cache := NewQuizCache(loader, time.Minute)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}

	// Within TTL: served from cache.
	now = now.Add(30 * time.Second)
	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if n := atomic.LoadInt64(&loader.loads); n != 1 {
		t.Fatalf("expected cached read within ttl, got %d loads", n)
	}

	// Past TTL plus max jitter: reloaded.
	now = now.Add(2 * time.Minute)
	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if n := atomic.LoadInt64(&loader.loads); n != 2 {
		t.Fatalf("expected reload after expiry, got %d loads", n)
	}
}

func TestQuizCachePropagatesLoaderErrors(t *testing.T) {
	wantErr := errors.New("boom")
	cache := NewQuizCache(&countingLoader{err: wantErr}, time.Minute)
	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); !errors.Is(err, wantErr) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

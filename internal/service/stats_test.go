package service

import (
	"context"
	"testing"

	"github.com/shortlink/shortlink/internal/model"
	"github.com/shortlink/shortlink/internal/store"
	"github.com/shortlink/shortlink/internal/store/memory"
)

func TestStatsService_Summary(t *testing.T) {
	links := memory.NewLinkStore()
	clicks := memory.NewClickStore()
	svc := NewStatsService(links, clicks)
	ctx := context.Background()

	link := &model.Link{ID: "link-1", Code: "abc123", DomainID: 1, LongURL: "https://example.com", CreatedAt: clockNow()}
	if err := links.Create(ctx, link); err != nil {
		t.Fatalf("create link: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := clicks.Insert(ctx, &model.Click{ID: "click-" + string(rune('a'+i)), LinkID: link.ID, ClickedAt: clockNow()}); err != nil {
			t.Fatalf("insert click: %v", err)
		}
	}

	stats, total, err := svc.Summary(ctx, store.LinkFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 link, got %d", total)
	}
	if len(stats) != 1 || stats[0].ClickCount != 3 {
		t.Fatalf("expected 1 link with 3 clicks, got %+v", stats)
	}
}

func TestStatsService_History(t *testing.T) {
	links := memory.NewLinkStore()
	clicks := memory.NewClickStore()
	svc := NewStatsService(links, clicks)
	ctx := context.Background()

	link := &model.Link{ID: "link-1", Code: "abc123", DomainID: 1, LongURL: "https://example.com", CreatedAt: clockNow()}
	if err := links.Create(ctx, link); err != nil {
		t.Fatalf("create link: %v", err)
	}
	if err := clicks.Insert(ctx, &model.Click{ID: "click-1", LinkID: link.ID, ClickedAt: clockNow()}); err != nil {
		t.Fatalf("insert click: %v", err)
	}

	history, total, err := svc.History(ctx, 1, "abc123", store.ClickFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 1 || len(history) != 1 {
		t.Fatalf("expected 1 click, got total=%d len=%d", total, len(history))
	}
}

func TestStatsService_History_UnknownCode(t *testing.T) {
	svc := NewStatsService(memory.NewLinkStore(), memory.NewClickStore())

	_, _, err := svc.History(context.Background(), 1, "missing", store.ClickFilter{Page: 1, PageSize: 10})
	if err == nil {
		t.Fatal("expected error for unknown code")
	}
}

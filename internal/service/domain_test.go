package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/store/memory"
)

func TestDomainService_Create(t *testing.T) {
	svc := NewDomainService(memory.NewDomainStore())

	ctx := context.Background()
	d, err := svc.Create(ctx, "Example.com", true, "primary")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.Name != "example.com" {
		t.Fatalf("expected lowercased name, got %q", d.Name)
	}
	if !d.IsDefault {
		t.Fatal("expected domain to be default")
	}
}

func TestDomainService_Create_RejectsDuplicateName(t *testing.T) {
	svc := NewDomainService(memory.NewDomainStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "example.com", true, ""); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, "example.com", false, "")
	if !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDomainService_Create_SwitchesDefault(t *testing.T) {
	svc := NewDomainService(memory.NewDomainStore())
	ctx := context.Background()

	first, err := svc.Create(ctx, "a.example.com", true, "")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, "b.example.com", true, "")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	domains, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var defaults int
	for _, d := range domains {
		if d.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default domain, got %d", defaults)
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct domain IDs")
	}
}

func TestDomainService_Patch_RejectsUnsettingCurrentDefault(t *testing.T) {
	svc := NewDomainService(memory.NewDomainStore())
	ctx := context.Background()

	d, err := svc.Create(ctx, "example.com", true, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	isDefault := false
	_, err = svc.Patch(ctx, d.ID, PatchDomainInput{IsDefault: &isDefault})
	if !apperr.Is(err, apperr.CodeBadRequest) {
		t.Fatalf("expected bad_request, got %v", err)
	}
}

func TestDomainService_Patch_RenameUniqueness(t *testing.T) {
	svc := NewDomainService(memory.NewDomainStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "taken.example.com", true, ""); err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, "free.example.com", false, "")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	taken := "taken.example.com"
	_, err = svc.Patch(ctx, second.ID, PatchDomainInput{Name: &taken})
	if !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDomainService_SoftDelete_RejectsCurrentDefault(t *testing.T) {
	svc := NewDomainService(memory.NewDomainStore())
	ctx := context.Background()

	d, err := svc.Create(ctx, "example.com", true, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.SoftDelete(ctx, d.ID)
	if !apperr.Is(err, apperr.CodeBadRequest) {
		t.Fatalf("expected bad_request, got %v", err)
	}
}

func TestDomainService_ResolveHost(t *testing.T) {
	svc := NewDomainService(memory.NewDomainStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "example.com", true, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	d, err := svc.ResolveHost(ctx, "EXAMPLE.com")
	if err != nil {
		t.Fatalf("resolve host: %v", err)
	}
	if d.Name != "example.com" {
		t.Fatalf("unexpected domain: %+v", d)
	}

	_, err = svc.ResolveHost(ctx, "unknown.example.com")
	if !errors.Is(err, apperr.ErrGone) {
		t.Fatalf("expected gone for unknown host, got %v", err)
	}
}

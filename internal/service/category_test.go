package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"reportdesk/internal/apperr"
	"reportdesk/internal/registry"
)

func TestCategoryCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "   "})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("blank name: got %v, want validation_error", err)
	}

	_, err = env.categories.Create(ctx, env.ownerID, CreateCategoryInput{
		Name: strings.Repeat("x", 51),
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("overlong name: got %v, want validation_error", err)
	}

	// Names are trimmed before storage.
	created, err := env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "  Padded  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Name != "Padded" {
		t.Errorf("name: got %q, want trimmed", created.Name)
	}
}

func TestCategoryCreateForeignParent(t *testing.T) {
	env := newTestEnv(t)
	other := newTestEnv(t)
	ctx := context.Background()

	theirs, err := other.categories.Create(ctx, other.ownerID, CreateCategoryInput{Name: "Theirs"})
	if err != nil {
		t.Fatalf("create foreign category: %v", err)
	}

	// Another owner's category is indistinguishable from a missing one.
	_, err = env.categories.Create(ctx, env.ownerID, CreateCategoryInput{
		Name: "Mine", ParentID: &theirs.ID,
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("foreign parent: got %v, want not_found", err)
	}
}

func TestCategoryCreateConcurrentDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// All workers race for the same root name; the unique index picks the
	// winner and everyone else gets duplicate_name.
	const workers = 6
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "Research"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, dups int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case apperr.KindOf(err) == apperr.KindDuplicateName:
			dups++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || dups != workers-1 {
		t.Errorf("got %d successes and %d duplicates, want 1 and %d", wins, dups, workers-1)
	}
}

func TestCategoryUpdateProtectedFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.reconciler.Reconcile(env.ownerID)

	// Rename is forbidden.
	_, err := env.categories.Update(ctx, env.ownerID, registry.UncategorizedID, CategoryPatch{
		Name: strPtr("Misc"),
	})
	if apperr.KindOf(err) != apperr.KindProtectedCategory {
		t.Errorf("rename fallback: got %v, want protected_category", err)
	}

	// Moving is forbidden.
	parent, _ := env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "Home"})
	_, err = env.categories.Update(ctx, env.ownerID, registry.UncategorizedID, CategoryPatch{
		ParentID: &parent.ID, SetParent: true,
	})
	if apperr.KindOf(err) != apperr.KindProtectedCategory {
		t.Errorf("move fallback: got %v, want protected_category", err)
	}

	// Cosmetic fields stay editable.
	updated, err := env.categories.Update(ctx, env.ownerID, registry.UncategorizedID, CategoryPatch{
		Color: strPtr("#123456"),
	})
	if err != nil {
		t.Fatalf("recolor fallback: %v", err)
	}
	if updated.Color != "#123456" {
		t.Errorf("color: got %q", updated.Color)
	}
}

func TestCategoryDeleteProtectedFallback(t *testing.T) {
	env := newTestEnv(t)
	env.reconciler.Reconcile(env.ownerID)

	err := env.categories.Delete(context.Background(), env.ownerID, registry.UncategorizedID)
	if apperr.KindOf(err) != apperr.KindProtectedCategory {
		t.Errorf("delete fallback: got %v, want protected_category", err)
	}
}

func TestCategoryMoveCycleRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, _ := env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "Cycle A"})
	b, _ := env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "Cycle B", ParentID: &a.ID})
	c, _ := env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "Cycle C", ParentID: &b.ID})

	// Self-parenting.
	_, err := env.categories.Update(ctx, env.ownerID, a.ID, CategoryPatch{
		ParentID: &a.ID, SetParent: true,
	})
	if apperr.KindOf(err) != apperr.KindCyclicMove {
		t.Errorf("self parent: got %v, want cyclic_move", err)
	}

	// Moving a node under its own descendant.
	_, err = env.categories.Update(ctx, env.ownerID, a.ID, CategoryPatch{
		ParentID: &c.ID, SetParent: true,
	})
	if apperr.KindOf(err) != apperr.KindCyclicMove {
		t.Errorf("descendant parent: got %v, want cyclic_move", err)
	}

	// A legal sideways move still works.
	d, _ := env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "Cycle D"})
	moved, err := env.categories.Update(ctx, env.ownerID, c.ID, CategoryPatch{
		ParentID: &d.ID, SetParent: true,
	})
	if err != nil {
		t.Fatalf("legal move: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != d.ID {
		t.Errorf("parent after move: got %v", moved.ParentID)
	}
}

func TestCategoryMoveToRoot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, _ := env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "Root A"})
	b, _ := env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "Root B", ParentID: &a.ID})

	moved, err := env.categories.Update(ctx, env.ownerID, b.ID, CategoryPatch{SetParent: true})
	if err != nil {
		t.Fatalf("move to root: %v", err)
	}
	if moved.ParentID != nil {
		t.Errorf("expected nil parent, got %v", *moved.ParentID)
	}
}

func TestCategoryDeleteMaterializesFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// No reconcile ran for this owner; deleting a category with reports must
	// still find a reassign target.
	doomed, err := env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "Doomed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rep, err := env.reports.Create(env.ownerID, CreateReportInput{
		Title: "Survivor", CategoryID: &doomed.ID,
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}

	if err := env.categories.Delete(ctx, env.ownerID, doomed.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	fb, err := env.catStore.FindByID(registry.UncategorizedID)
	if err != nil {
		t.Fatalf("FindByID fallback: %v", err)
	}
	if fb == nil {
		t.Fatal("fallback must be materialized by delete")
	}

	got, err := env.reports.Get(env.ownerID, rep.ID)
	if err != nil {
		t.Fatalf("Get report: %v", err)
	}
	if got.CategoryID == nil || *got.CategoryID != registry.UncategorizedID {
		t.Errorf("report category: got %v, want uncategorized", got.CategoryID)
	}
}

func TestCategoryListTree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, _ := env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "Tree A"})
	env.categories.Create(ctx, env.ownerID, CreateCategoryInput{Name: "Tree B", ParentID: &a.ID})

	flat, err := env.categories.List(env.ownerID, false)
	if err != nil {
		t.Fatalf("List flat: %v", err)
	}
	if len(flat) != 2 {
		t.Errorf("flat: got %d, want 2", len(flat))
	}

	tree, err := env.categories.List(env.ownerID, true)
	if err != nil {
		t.Fatalf("List tree: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("tree roots: got %d, want 1", len(tree))
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].Name != "Tree B" {
		t.Errorf("tree children: got %+v", tree[0].Children)
	}
}

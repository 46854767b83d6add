package service

import (
	"testing"

	"reportdesk/internal/registry"
)

func TestReconcileCreatesAllEntries(t *testing.T) {
	env := newTestEnv(t)

	result := env.reconciler.Reconcile(env.ownerID)
	if !result.OK {
		t.Fatalf("reconcile failed: %+v", result.Failed)
	}
	if len(result.Created) != len(registry.Entries()) {
		t.Errorf("created: got %d, want %d", len(result.Created), len(registry.Entries()))
	}

	// Every entry is now a row owned by the test owner.
	for _, entry := range registry.Entries() {
		cat, err := env.catStore.FindByID(entry.ID)
		if err != nil {
			t.Fatalf("FindByID %s: %v", entry.ID, err)
		}
		if cat == nil {
			t.Errorf("entry %s missing after reconcile", entry.ID)
			continue
		}
		if !cat.Predefined {
			t.Errorf("entry %s not marked predefined", entry.ID)
		}
		if cat.OwnerID != env.ownerID {
			t.Errorf("entry %s: wrong owner", entry.ID)
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	env := newTestEnv(t)

	first := env.reconciler.Reconcile(env.ownerID)
	if !first.OK {
		t.Fatalf("first run failed: %+v", first.Failed)
	}

	second := env.reconciler.Reconcile(env.ownerID)
	if !second.OK {
		t.Fatalf("second run failed: %+v", second.Failed)
	}
	if len(second.Created) != 0 {
		t.Errorf("second run created %d rows, want 0", len(second.Created))
	}
	if len(second.Existing) != len(registry.Entries()) {
		t.Errorf("second run existing: got %d, want %d", len(second.Existing), len(registry.Entries()))
	}
}

func TestReconcileRepairsMissingEntry(t *testing.T) {
	env := newTestEnv(t)

	env.reconciler.Reconcile(env.ownerID)

	// Drop one predefined row out from under the set.
	if _, err := env.db.Exec(`DELETE FROM categories WHERE id = 'product-review'`); err != nil {
		t.Fatalf("delete entry: %v", err)
	}

	result := env.reconciler.Reconcile(env.ownerID)
	if !result.OK {
		t.Fatalf("repair run failed: %+v", result.Failed)
	}
	if len(result.Created) != 1 || result.Created[0] != "product-review" {
		t.Errorf("repair created %v, want just product-review", result.Created)
	}
}

package tree

import (
	"testing"

	"github.com/hackerc/linkhub/internal/model"
)

func TestCache_GetMissing(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("nobody"); ok {
		t.Fatal("Get on an empty cache should report ok=false")
	}
}

func TestCache_PutGet(t *testing.T) {
	c := NewCache()
	c.Put("u1", []*model.TreeCategory{node("a", nil)})

	got, ok := c.Get("u1")
	if !ok {
		t.Fatal("Get should find the stored snapshot")
	}
	assertIDs(t, got, "a")
}

func TestCache_SnapshotsArePerUser(t *testing.T) {
	c := NewCache()
	c.Put("u1", []*model.TreeCategory{node("a", nil)})
	c.Put("u2", []*model.TreeCategory{node("b", nil)})

	got1, _ := c.Get("u1")
	got2, _ := c.Get("u2")
	assertIDs(t, got1, "a")
	assertIDs(t, got2, "b")

	c.Invalidate("u1")
	if _, ok := c.Get("u1"); ok {
		t.Error("u1 should be gone after Invalidate")
	}
	if _, ok := c.Get("u2"); !ok {
		t.Error("invalidating u1 must not touch u2")
	}
}

func TestCache_MutateWarm(t *testing.T) {
	c := NewCache()
	c.Put("u1", []*model.TreeCategory{node("a", nil)})

	c.Mutate("u1", node("b", nil), OpAdd)

	got, _ := c.Get("u1")
	assertIDs(t, got, "b", "a")
}

func TestCache_MutateCold_StaysCold(t *testing.T) {
	c := NewCache()

	// Cold does not mean empty: storage may hold any number of categories
	// this cache has never seen. Seeding from a single mutation would hand
	// out a partial snapshot, so every op on a cold slot is a no-op.
	c.Mutate("u1", node("a", nil), OpAdd)
	c.Mutate("u1", node("child", ptr("parent")), OpAdd)
	c.Mutate("u1", node("a", nil), OpDelete)
	c.Mutate("u1", node("a", nil), OpUpdate)
	c.Mutate("u1", node("a", nil), OpToggleActive)

	if _, ok := c.Get("u1"); ok {
		t.Fatal("mutations must not seed a cold cache")
	}
}

func TestCache_MutateAfterInvalidateStaysCold(t *testing.T) {
	c := NewCache()
	c.Put("u1", []*model.TreeCategory{node("old", nil)})
	c.Invalidate("u1")

	c.Mutate("u1", node("new", nil), OpAdd)

	if _, ok := c.Get("u1"); ok {
		t.Fatal("an invalidated slot must stay cold until the next Put")
	}
}

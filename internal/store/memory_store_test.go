package store

import (
	"errors"
	"testing"
	"time"

	"synapse/pkg/domain"
)

func testUser(id, email string) domain.User {
	now := time.Now().UTC()
	return domain.User{ID: id, Name: "User " + id, Email: email, PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
}

func testContent(id, ownerID, title string) domain.Content {
	return domain.Content{ID: id, OwnerID: ownerID, Title: title, Link: "https://example.com/" + id, CreatedAt: time.Now().UTC()}
}

func TestMemoryStoreUserUniqueness(t *testing.T) {
	m := NewMemoryStore()

	if err := m.SaveUser(testUser("u1", "a@example.com")); err != nil {
		t.Fatalf("save user: %v", err)
	}
	if err := m.SaveUser(testUser("u2", "a@example.com")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate email error = %v, want ErrDuplicate", err)
	}

	exists, err := m.HasUserEmail("a@example.com")
	if err != nil || !exists {
		t.Fatalf("HasUserEmail = %v, %v; want true", exists, err)
	}
	if _, ok, _ := m.GetUserByEmail("missing@example.com"); ok {
		t.Fatal("unexpected hit for unknown email")
	}
	user, ok, err := m.GetUserByID("u1")
	if err != nil || !ok || user.Email != "a@example.com" {
		t.Fatalf("GetUserByID = %+v, %v, %v", user, ok, err)
	}
}

func TestMemoryStoreContentOrderAndDelete(t *testing.T) {
	m := NewMemoryStore()

	for _, id := range []string{"c1", "c2", "c3"} {
		if err := m.SaveContent(testContent(id, "owner-1", "Item "+id)); err != nil {
			t.Fatalf("save content %s: %v", id, err)
		}
	}
	if err := m.SaveContent(testContent("c4", "owner-2", "Other")); err != nil {
		t.Fatalf("save content c4: %v", err)
	}

	items, err := m.ListContentByOwner("owner-1")
	if err != nil {
		t.Fatalf("list content: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	// Insertion order is preserved.
	for i, want := range []string{"c1", "c2", "c3"} {
		if items[i].ID != want {
			t.Fatalf("items[%d].ID = %q, want %q", i, items[i].ID, want)
		}
	}

	deleted, err := m.DeleteContentByOwner("owner-2", "c1")
	if err != nil || deleted {
		t.Fatalf("cross-owner delete = %v, %v; want false", deleted, err)
	}
	deleted, err = m.DeleteContentByOwner("owner-1", "c2")
	if err != nil || !deleted {
		t.Fatalf("owner delete = %v, %v; want true", deleted, err)
	}
	items, _ = m.ListContentByOwner("owner-1")
	if len(items) != 2 || items[0].ID != "c1" || items[1].ID != "c3" {
		t.Fatalf("unexpected items after delete: %+v", items)
	}
}

func TestMemoryStoreShareLinkConstraints(t *testing.T) {
	m := NewMemoryStore()

	link := domain.ShareLink{ID: "l1", OwnerID: "owner-1", Hash: "hash111111", CreatedAt: time.Now().UTC()}
	if err := m.CreateShareLink(link); err != nil {
		t.Fatalf("create share link: %v", err)
	}

	// One link per owner.
	if err := m.CreateShareLink(domain.ShareLink{ID: "l2", OwnerID: "owner-1", Hash: "hash222222"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("owner conflict error = %v, want ErrDuplicate", err)
	}
	// Hashes are globally unique.
	if err := m.CreateShareLink(domain.ShareLink{ID: "l3", OwnerID: "owner-2", Hash: "hash111111"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("hash conflict error = %v, want ErrDuplicate", err)
	}

	got, ok, err := m.GetShareLinkByOwner("owner-1")
	if err != nil || !ok || got.Hash != "hash111111" {
		t.Fatalf("GetShareLinkByOwner = %+v, %v, %v", got, ok, err)
	}
	got, ok, err = m.GetShareLinkByHash("hash111111")
	if err != nil || !ok || got.OwnerID != "owner-1" {
		t.Fatalf("GetShareLinkByHash = %+v, %v, %v", got, ok, err)
	}

	removed, err := m.DeleteShareLinkByOwner("owner-1")
	if err != nil || !removed {
		t.Fatalf("delete share link = %v, %v; want true", removed, err)
	}
	removed, err = m.DeleteShareLinkByOwner("owner-1")
	if err != nil || removed {
		t.Fatalf("repeat delete = %v, %v; want false", removed, err)
	}
	if _, ok, _ := m.GetShareLinkByHash("hash111111"); ok {
		t.Fatal("hash should be free after delete")
	}

	// The freed hash and owner slot can be reused.
	if err := m.CreateShareLink(domain.ShareLink{ID: "l4", OwnerID: "owner-1", Hash: "hash111111"}); err != nil {
		t.Fatalf("recreate share link: %v", err)
	}
}

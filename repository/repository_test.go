package repository

import (
	"context"
	"errors"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWidgetLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	owner, err := db.Users().Create(ctx, "ada", "correct horse")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	w := &Widget{Name: "gear", Color: "red", OwnerID: owner.ID}
	if err := db.Widgets().Create(ctx, w); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if w.ID == 0 {
		t.Fatal("Create() did not assign an id")
	}

	got, err := db.Widgets().FindByID(ctx, w.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Name != "gear" || got.OwnerID != owner.ID {
		t.Errorf("FindByID() = %+v", got)
	}

	got.Color = "blue"
	if err := db.Widgets().Save(ctx, got); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	all, err := db.Widgets().FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(all) != 1 || all[0].Color != "blue" {
		t.Errorf("FindAll() = %+v", all)
	}

	if err := db.Widgets().Remove(ctx, w.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := db.Widgets().FindByID(ctx, w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID() after Remove error = %v, want ErrNotFound", err)
	}
	if err := db.Widgets().Remove(ctx, w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove() error = %v, want ErrNotFound", err)
	}
}

func TestFindAllEmpty(t *testing.T) {
	all, err := testDB(t).Widgets().FindAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("FindAll() = %#v, want empty slice", all)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	users := testDB(t).Users()

	u, err := users.Create(ctx, "grace", "hopper1906")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.PasswordHash == "hopper1906" {
		t.Error("password stored in plain text")
	}

	if _, err := users.Create(ctx, "grace", "another-pass"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate Create() error = %v, want ErrDuplicate", err)
	}

	if _, err := users.Authenticate(ctx, "grace", "hopper1906"); err != nil {
		t.Errorf("Authenticate() error = %v", err)
	}
	if _, err := users.Authenticate(ctx, "grace", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate(wrong) error = %v", err)
	}
	if _, err := users.Authenticate(ctx, "nobody", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate(unknown) error = %v", err)
	}

	found, err := users.FindByID(ctx, u.ID)
	if err != nil || found.Name != "grace" {
		t.Errorf("FindByID() = %+v, %v", found, err)
	}
	if _, err := users.FindByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID(999) error = %v", err)
	}
}

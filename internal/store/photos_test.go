package store

import (
	"context"
	"testing"

	"github.com/erazemk/findersfee/internal/db"
)

func TestPhotoRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := mustUser(t, database, "u@example.com")

	id, err := CreatePhoto(ctx, database, []byte("jpeg bytes"), "image/jpeg", u.ID)
	if err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}

	data, mime, err := GetPhoto(ctx, database, id)
	if err != nil {
		t.Fatalf("GetPhoto: %v", err)
	}
	if string(data) != "jpeg bytes" || mime != "image/jpeg" {
		t.Errorf("unexpected photo %q %q", data, mime)
	}

	data, _, err = GetPhoto(ctx, database, id+1)
	if err != nil {
		t.Fatalf("GetPhoto missing: %v", err)
	}
	if data != nil {
		t.Error("expected nil data for missing photo")
	}
}

package relocate

import (
	"bytes"
	"context"
	"testing"

	"shadowcal/internal/database"
	"shadowcal/internal/logging"
	"shadowcal/internal/store"
)

func setupRunner(t *testing.T, dryRun bool) (*Runner, *store.ContentStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	content := store.NewContentStore(db)
	return &Runner{
		Content: content,
		DryRun:  dryRun,
		Logger:  logging.Setup("error", "text"),
	}, content
}

func seedLegacy(t *testing.T, content *store.ContentStore, key string, data []byte) {
	t.Helper()
	if err := content.PutLegacy(context.Background(), key, data); err != nil {
		t.Fatalf("seed legacy record: %v", err)
	}
}

func TestNewKey(t *testing.T) {
	got, err := NewKey("card/obj-1/description")
	if err != nil {
		t.Fatalf("map key: %v", err)
	}
	if got != "obj-1%description" {
		t.Errorf("new key = %q, want %q", got, "obj-1%description")
	}

	for _, bad := range []string{"", "obj-1", "card/obj-1", "card//description", "a/b/c/d"} {
		if _, err := NewKey(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestRunCopiesAllRecords(t *testing.T) {
	r, content := setupRunner(t, false)
	ctx := context.Background()

	seedLegacy(t, content, "card/obj-1/description", []byte("body one"))
	seedLegacy(t, content, "event/obj-2/notes", []byte("body two"))

	sum, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Scanned != 2 || sum.Copied != 2 || sum.Skipped != 0 || sum.Failed != 0 {
		t.Fatalf("summary = %+v, want 2 scanned and copied", sum)
	}

	data, err := content.Get(ctx, "obj-1%description")
	if err != nil {
		t.Fatalf("read relocated content: %v", err)
	}
	if !bytes.Equal(data, []byte("body one")) {
		t.Errorf("relocated data = %q, want original bytes", data)
	}
}

func TestRunSkipsMalformedKeys(t *testing.T) {
	r, content := setupRunner(t, false)
	ctx := context.Background()

	seedLegacy(t, content, "not-a-triple", []byte("junk"))
	seedLegacy(t, content, "card/obj-1/description", []byte("good"))

	sum, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Skipped != 1 || sum.Copied != 1 {
		t.Fatalf("summary = %+v, want 1 skipped and 1 copied", sum)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	r, content := setupRunner(t, true)
	ctx := context.Background()

	seedLegacy(t, content, "card/obj-1/description", []byte("body"))

	sum, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Copied != 1 {
		t.Fatalf("summary = %+v, want 1 would-copy", sum)
	}

	data, err := content.Get(ctx, "obj-1%description")
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if data != nil {
		t.Error("dry run wrote to the new layout")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	r, content := setupRunner(t, false)
	ctx := context.Background()

	seedLegacy(t, content, "card/obj-1/description", []byte("body"))

	if _, err := r.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	sum, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Failed != 0 || sum.Copied != 1 {
		t.Fatalf("second run summary = %+v, want clean re-copy", sum)
	}

	data, _ := content.Get(ctx, "obj-1%description")
	if !bytes.Equal(data, []byte("body")) {
		t.Errorf("data after re-run = %q, want unchanged", data)
	}
}

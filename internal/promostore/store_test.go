package promostore

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/promoforge/promoforge/internal/promo"
)

func TestBulkWriteErrorCount(t *testing.T) {
	t.Parallel()

	if got := bulkWriteErrorCount(errors.New("plain error")); got != 0 {
		t.Errorf("plain error: got %d, want 0", got)
	}

	bwe := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Index: 1}},
			{WriteError: mongo.WriteError{Index: 3}},
		},
	}
	if got := bulkWriteErrorCount(bwe); got != 2 {
		t.Errorf("bulk write exception: got %d, want 2", got)
	}
}

func TestSearchProjection(t *testing.T) {
	t.Parallel()

	proj := searchProjection()

	keys := make(map[string]bool, len(proj))
	for _, e := range proj {
		keys[e.Key] = true
	}

	for _, want := range []string{"_id", "promoText", "template", "translations", "score"} {
		if !keys[want] {
			t.Errorf("projection missing %q", want)
		}
	}
	for _, name := range promo.FieldNames {
		if !keys[name] {
			t.Errorf("projection missing structured field %q", name)
		}
	}
	if keys["embedding"] {
		t.Error("projection must not include the stored embedding")
	}
}

package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/isdelr/cms-be/internal/store"
)

// recordingStore fails CreateTable for the tables listed in fail and
// reports ErrTableExists for those already created.
type recordingStore struct {
	store.Store
	created map[string]bool
	fail    map[string]bool
}

func (r *recordingStore) CreateTable(_ context.Context, spec store.TableSpec) error {
	if r.fail[spec.Name] {
		return errors.New("disk full")
	}
	if r.created[spec.Name] {
		return store.ErrTableExists
	}
	r.created[spec.Name] = true
	return nil
}

func TestRun(t *testing.T) {
	st := &recordingStore{
		created: map[string]bool{"B": true},
		fail:    map[string]bool{"C": true},
	}
	specs := []store.TableSpec{{Name: "A", Key: "id"}, {Name: "B", Key: "id"}, {Name: "C", Key: "id"}, {Name: "D", Key: "id"}}

	outcomes, err := Run(context.Background(), st, specs)
	if err == nil {
		t.Fatalf("expected error for table C")
	}
	want := []Outcome{{Table: "A", Created: true}, {Table: "B"}, {Table: "D", Created: true}}
	if diff := cmp.Diff(want, outcomes); diff != "" {
		t.Fatalf("outcomes mismatch (-want +got):\n%s", diff)
	}
}

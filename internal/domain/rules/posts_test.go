package rules

import (
	"testing"

	"github.com/skipdm/edworking/internal/domain/enums"
	"github.com/skipdm/edworking/internal/domain/model"
)

func TestSplitByKindPreservesOrderAndSize(t *testing.T) {
	posts := []model.Post{
		{ID: 1, Kind: enums.PostKindUpdate},
		{ID: 2, Kind: enums.PostKindJobOffer},
		{ID: 3, Kind: enums.PostKindUpdate},
		{ID: 4, Kind: enums.PostKindJobOffer},
		{ID: 5, Kind: enums.PostKindJobOffer},
	}

	job, regular := SplitByKind(posts)

	if len(job)+len(regular) != len(posts) {
		t.Fatalf("partition lost posts: %d + %d != %d", len(job), len(regular), len(posts))
	}

	wantJob := []int64{2, 4, 5}
	for i, id := range wantJob {
		if job[i].ID != id {
			t.Fatalf("job partition order: got %d at %d want %d", job[i].ID, i, id)
		}
	}

	wantRegular := []int64{1, 3}
	for i, id := range wantRegular {
		if regular[i].ID != id {
			t.Fatalf("regular partition order: got %d at %d want %d", regular[i].ID, i, id)
		}
	}
}

func TestSplitByKindEmptyInput(t *testing.T) {
	job, regular := SplitByKind(nil)
	if len(job) != 0 || len(regular) != 0 {
		t.Fatalf("empty input must produce empty partitions")
	}
}

package rules

import (
	"github.com/skipdm/edworking/internal/domain/enums"
	"github.com/skipdm/edworking/internal/domain/model"
)

// SplitByKind partitions posts into job offers and regular updates,
// preserving relative order within each partition.
func SplitByKind(posts []model.Post) (job, regular []model.Post) {
	job = make([]model.Post, 0, len(posts))
	regular = make([]model.Post, 0, len(posts))

	for _, post := range posts {
		if post.Kind == enums.PostKindJobOffer {
			job = append(job, post)
		} else {
			regular = append(regular, post)
		}
	}

	return job, regular
}

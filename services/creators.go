package services

import (
	"context"

	"github.com/streamcart/streamcart_backend/models"
)

// CreatorLookup resolves polymorphic creator references, one query per kind.
type CreatorLookup interface {
	Summaries(ctx context.Context, refs []models.CreatorRef) (map[models.CreatorRef]models.CreatorSummary, error)
}

// AttachCreators fills Video.Creator for every video whose creator still exists.
func AttachCreators(ctx context.Context, lookup CreatorLookup, videos []models.Video) error {
	if len(videos) == 0 {
		return nil
	}
	refs := make([]models.CreatorRef, 0, len(videos))
	seen := make(map[models.CreatorRef]struct{}, len(videos))
	for i := range videos {
		ref := videos[i].Ref()
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}

	summaries, err := lookup.Summaries(ctx, refs)
	if err != nil {
		return err
	}
	for i := range videos {
		if s, ok := summaries[videos[i].Ref()]; ok {
			s := s
			videos[i].Creator = &s
		}
	}
	return nil
}

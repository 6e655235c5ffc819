package services

import (
	"context"
	"strings"

	"github.com/streamcart/streamcart_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	SearchLimit  = 50
	RelatedLimit = 10
)

// VideoStore is the read side of the video collection used for discovery.
// Every method except FindByID returns approved videos only.
type VideoStore interface {
	// FindByID returns an apperr NotFound error when the video does not exist.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	// TextSearch queries the title/description text index ordered by
	// relevance, then views, then recency.
	TextSearch(ctx context.Context, text string, exclude []primitive.ObjectID, limit int64) ([]models.Video, error)
	// PatternSearch matches any keyword as a case-insensitive substring of the
	// title, description or a tag, ordered by views then recency.
	PatternSearch(ctx context.Context, keywords []string, limit int64) ([]models.Video, error)
	// FindByContext matches the category or any overlapping tag, ordered by views.
	FindByContext(ctx context.Context, category *primitive.ObjectID, tags []string, exclude []primitive.ObjectID, limit int64) ([]models.Video, error)
	// Latest returns the newest videos not in exclude.
	Latest(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]models.Video, error)
}

type DiscoveryService struct {
	videos VideoStore
}

func NewDiscoveryService(videos VideoStore) *DiscoveryService {
	return &DiscoveryService{videos: videos}
}

// Search runs the indexed text match and the keyword pattern match
// concurrently and merges them, text matches first.
func (s *DiscoveryService) Search(ctx context.Context, query string) ([]models.Video, error) {
	text := strings.TrimSpace(query)
	if text == "" {
		return []models.Video{}, nil
	}
	keywords := strings.Fields(text)

	var byText, byPattern []models.Video
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byText, err = s.videos.TextSearch(gctx, text, nil, SearchLimit)
		return err
	})
	g.Go(func() error {
		var err error
		byPattern, err = s.videos.PatternSearch(gctx, keywords, SearchLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeUnique(SearchLimit, nil, byText, byPattern), nil
}

// Related returns up to RelatedLimit approved videos related to the seed,
// never including the seed itself. Context matches (category, tags) come
// before title matches; the remainder is filled with the newest videos.
func (s *DiscoveryService) Related(ctx context.Context, seedID primitive.ObjectID) ([]models.Video, error) {
	seed, err := s.videos.FindByID(ctx, seedID)
	if err != nil {
		return nil, err
	}
	exclude := []primitive.ObjectID{seed.ID}

	var byContext, byText []models.Video
	g, gctx := errgroup.WithContext(ctx)
	if seed.Category != nil || len(seed.Tags) > 0 {
		g.Go(func() error {
			var err error
			byContext, err = s.videos.FindByContext(gctx, seed.Category, seed.Tags, exclude, RelatedLimit)
			return err
		})
	}
	if strings.TrimSpace(seed.Title) != "" {
		g.Go(func() error {
			var err error
			byText, err = s.videos.TextSearch(gctx, seed.Title, exclude, RelatedLimit)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	related := mergeUnique(RelatedLimit, seed, byContext, byText)
	if len(related) >= RelatedLimit {
		return related, nil
	}

	taken := append(exclude, videoIDs(related)...)
	fill, err := s.videos.Latest(ctx, taken, int64(RelatedLimit-len(related)))
	if err != nil {
		return nil, err
	}
	return mergeUnique(RelatedLimit, seed, related, fill), nil
}

// mergeUnique concatenates lists, keeps the first occurrence of every id,
// drops the seed and anything not approved, and truncates to limit.
func mergeUnique(limit int, seed *models.Video, lists ...[]models.Video) []models.Video {
	seen := make(map[primitive.ObjectID]struct{})
	if seed != nil {
		seen[seed.ID] = struct{}{}
	}
	out := make([]models.Video, 0, limit)
	for _, list := range lists {
		for _, v := range list {
			if len(out) == limit {
				return out
			}
			if v.Status != models.VideoStatusApproved {
				continue
			}
			if _, dup := seen[v.ID]; dup {
				continue
			}
			seen[v.ID] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func videoIDs(videos []models.Video) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	return ids
}

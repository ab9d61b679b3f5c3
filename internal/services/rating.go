package services

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/dentaflow-api/internal/apperrors"
	"github.com/harentsoaR/dentaflow-api/internal/models"
	"github.com/harentsoaR/dentaflow-api/internal/store"
)

// DefaultAverage is shown until the first rating arrives.
const DefaultAverage models.Average = 4.9

const averageKey = "average"

type RatingService struct {
	store store.RatingStore
	cache *cache.Cache
	log   zerolog.Logger

	// gen counts submits; an average computed under an older gen is not cached.
	mu  sync.Mutex
	gen uint64
}

func NewRatingService(s store.RatingStore, log zerolog.Logger) *RatingService {
	return &RatingService{
		store: s,
		cache: cache.New(30*time.Second, time.Minute),
		log:   log,
	}
}

// Submit records a rating and returns the new average.
func (s *RatingService) Submit(ctx context.Context, patientID int64, stars int) (models.Average, error) {
	if stars < 1 || stars > 5 {
		return 0, apperrors.Validation("stars must be between 1 and 5")
	}
	r := models.Rating{PatientID: patientID, Stars: stars, CreatedAt: time.Now().UTC()}
	if err := s.store.Insert(ctx, &r); err != nil {
		return 0, apperrors.Internal(err)
	}
	s.mu.Lock()
	s.gen++
	s.cache.Delete(averageKey)
	s.mu.Unlock()
	s.log.Info().Int64("patientId", patientID).Int("stars", stars).Msg("rating submitted")
	return s.Average(ctx)
}

// Average returns the mean star value rounded to one decimal.
func (s *RatingService) Average(ctx context.Context) (models.Average, error) {
	if v, ok := s.cache.Get(averageKey); ok {
		return v.(models.Average), nil
	}

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	ratings, err := s.store.List(ctx)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	avg := average(ratings)

	s.mu.Lock()
	if s.gen == gen {
		s.cache.SetDefault(averageKey, avg)
	}
	s.mu.Unlock()
	return avg, nil
}

func average(ratings []models.Rating) models.Average {
	if len(ratings) == 0 {
		return DefaultAverage
	}
	total := 0
	for _, r := range ratings {
		total += r.Stars
	}
	mean := float64(total) / float64(len(ratings))
	return models.Average(math.Round(mean*10) / 10)
}

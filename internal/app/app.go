package app

import (
	"github.com/recallery/recallery-backend/internal/config"
	"github.com/recallery/recallery-backend/internal/data/db"
	"github.com/recallery/recallery-backend/internal/data/repos"
	"github.com/recallery/recallery-backend/internal/platform/logger"
	"github.com/recallery/recallery-backend/internal/services"
	"github.com/recallery/recallery-backend/internal/srs"
)

// App is the composition root: everything a transport layer needs, wired over
// one database handle.
type App struct {
	Log    *logger.Logger
	DB     *db.PostgresService
	Repos  *repos.All
	Tuning config.Tuning

	Reviews  *services.ReviewService
	Sessions *services.PracticeSessionService
}

func Compose(logg *logger.Logger) (*App, error) {
	tuning := config.Load(logg)

	pg, err := db.NewPostgresService(logg)
	if err != nil {
		return nil, err
	}
	all := repos.New(pg.DB(), logg)

	scheduler := srs.NewScheduler(tuning.SRS)
	updater := services.NewMasteryUpdater(all, tuning.Mastery, logg)

	return &App{
		Log:    logg,
		DB:     pg,
		Repos:  all,
		Tuning: tuning,

		Reviews:  services.NewReviewService(pg.DB(), logg, scheduler, updater, all.ReviewCard, all.ReviewLog),
		Sessions: services.NewPracticeSessionService(pg.DB(), logg, all.ReviewCard, all.TopicMastery, tuning.Scoring),
	}, nil
}

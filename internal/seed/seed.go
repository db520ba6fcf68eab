package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"codex/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers            int
	MythologiesPerUser  int
	FiguresPerMythology int
	NumCrossovers       int
	ShouldClean         bool
	// SkipBcrypt stores a plaintext password instead of hashing, for fast
	// repeated seeding during development. Never use outside dev.
	SkipBcrypt bool
	// MaxDays spreads generated created_at timestamps over this many days.
	MaxDays int
}

// DefaultOptions returns a classroom-sized data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:            25,
		MythologiesPerUser:  2,
		FiguresPerMythology: 5,
		NumCrossovers:       60,
		ShouldClean:         true,
		MaxDays:             90,
	}
}

// Seed populates the database with generated worlds, figures, and crossover
// history. Roughly half of the generated crossover requests are resolved so
// listings, alliances, and story drafts all have data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("seeding %d users, %d worlds each, %d crossovers...",
		opts.NumUsers, opts.MythologiesPerUser, opts.NumCrossovers)

	if opts.ShouldClean {
		if err := ClearAll(db); err != nil {
			return fmt.Errorf("clear existing data: %w", err)
		}
	}

	f := NewFactory(db, opts)
	// #nosec G404: acceptable for seeding
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	users := make([]*models.User, 0, opts.NumUsers)
	mythologies := make([]*models.Mythology, 0, opts.NumUsers*opts.MythologiesPerUser)

	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)

		for j := 0; j < opts.MythologiesPerUser; j++ {
			mythology, err := f.CreateMythology(user)
			if err != nil {
				return fmt.Errorf("create mythology: %w", err)
			}
			mythologies = append(mythologies, mythology)

			for k := 0; k < opts.FiguresPerMythology; k++ {
				if _, err := f.CreateFigure(mythology); err != nil {
					return fmt.Errorf("create figure: %w", err)
				}
			}
		}
	}
	log.Printf("created %d users, %d worlds", len(users), len(mythologies))

	requestTypes := []models.CrossoverRequestType{
		models.CrossoverRequestTypeAlliance,
		models.CrossoverRequestTypeConflict,
		models.CrossoverRequestTypeTrade,
		models.CrossoverRequestTypeStory,
	}

	var resolved, pending int
	for i := 0; i < opts.NumCrossovers && len(mythologies) >= 2; i++ {
		from := mythologies[rng.Intn(len(mythologies))]
		to := mythologies[rng.Intn(len(mythologies))]
		if from.UserID == to.UserID {
			continue
		}

		requestType := requestTypes[rng.Intn(len(requestTypes))]
		request, err := f.CreateCrossoverRequest(from, to, requestType)
		if err != nil {
			return fmt.Errorf("create crossover request: %w", err)
		}

		// Leave roughly half pending so incoming lists have content.
		if rng.Intn(2) == 0 {
			pending++
			continue
		}
		if err := resolveSeedRequest(db, rng, request, from, to); err != nil {
			return fmt.Errorf("resolve crossover request: %w", err)
		}
		resolved++
	}
	log.Printf("created %d resolved and %d pending crossover requests", resolved, pending)

	return nil
}

// resolveSeedRequest finalizes a seeded request the same way the resolver
// would: accepted relationship requests upsert the pair's alliance row,
// accepted story requests spawn a draft.
func resolveSeedRequest(db *gorm.DB, rng *rand.Rand, request *models.CrossoverRequest, from, to *models.Mythology) error {
	status := models.CrossoverRequestStatusAccepted
	switch rng.Intn(4) {
	case 0:
		status = models.CrossoverRequestStatusDeclined
	case 1:
		status = models.CrossoverRequestStatusCancelled
	}

	now := time.Now()
	request.Status = status
	request.ResponseMessage = gofakeit.Sentence(6)
	request.RespondedAt = &now
	if status != models.CrossoverRequestStatusAccepted {
		return db.Save(request).Error
	}
	request.CompletedAt = &now
	if err := db.Save(request).Error; err != nil {
		return err
	}

	if relationship, ok := models.RelationshipForRequestType(request.RequestType); ok {
		first, second := models.CanonicalPair(from.ID, to.ID)
		alliance := models.MythologyAlliance{
			Mythology1ID:        first,
			Mythology2ID:        second,
			RelationshipType:    relationship,
			IsActive:            true,
			FormedFromRequestID: request.ID,
		}
		// The pair may already be related from an earlier seeded request.
		return db.Where("mythology1_id = ? AND mythology2_id = ?", first, second).
			Assign(map[string]interface{}{"relationship_type": relationship, "is_active": true}).
			FirstOrCreate(&alliance).Error
	}

	story := models.CrossoverStory{
		Mythology1ID: from.ID,
		Mythology2ID: to.ID,
		Author1ID:    from.UserID,
		Author2ID:    to.UserID,
		Title:        models.DefaultCrossoverStoryTitle,
		StoryType:    "crossover",
		Status:       models.CrossoverStoryStatusDraft,
	}
	return db.Create(&story).Error
}

// ClearAll deletes all seeded rows in dependency order.
func ClearAll(db *gorm.DB) error {
	tables := []string{
		"crossover_stories",
		"mythology_alliances",
		"crossover_requests",
		"figures",
		"mythologies",
		"users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

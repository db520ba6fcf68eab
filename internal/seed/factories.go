// Package seed provides helpers to create demo data for the Mythology Codex
// database. These helpers are intended for development and classroom setup
// only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"codex/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and by development scripts.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

var (
	mythologyThemes = []string{
		"celestial", "oceanic", "volcanic", "forest", "underworld",
		"storm", "desert", "arctic", "dream", "clockwork",
	}

	figureDomains = []string{
		"sunrise", "tides", "harvest", "war", "memory", "rivers",
		"storms", "forges", "thresholds", "the hunt", "fate", "song",
	}

	figureTitles = []string{
		"Keeper of the Gate", "First of the Deep", "Warden of Ash",
		"Mother of Rivers", "The Unsleeping", "Bearer of the Last Light",
		"Sovereign of the Hollow", "Voice of the Storm",
	}
)

// CreateUser constructs and persists a sample account. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:    strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(10, 999)),
		Email:       gofakeit.Email(),
		DisplayName: gofakeit.Name(),
		Avatar:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildMythology constructs a mythology world for the given user without
// persisting it. Useful for batching.
func (f *Factory) BuildMythology(user *models.User, overrides ...func(*models.Mythology)) *models.Mythology {
	theme := mythologyThemes[f.rng.Intn(len(mythologyThemes))]
	mythology := &models.Mythology{
		UserID:      user.ID,
		Name:        fmt.Sprintf("The %s %s", strings.Title(theme), strings.Title(gofakeit.NounAbstract())),
		Slug:        generateSlug(theme),
		Description: gofakeit.Paragraph(1, 2, 8, "\n"),
		Theme:       theme,
		IsPublic:    f.rng.Intn(10) != 0, // roughly one in ten worlds is private
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	mythology.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(mythology)
	}
	return mythology
}

// CreateMythology constructs and persists a mythology world for the given user.
func (f *Factory) CreateMythology(user *models.User, overrides ...func(*models.Mythology)) (*models.Mythology, error) {
	mythology := f.BuildMythology(user, overrides...)
	if err := f.db.Create(mythology).Error; err != nil {
		return nil, err
	}
	return mythology, nil
}

// CreateFigure constructs and persists a figure in the given mythology.
// Roughly two thirds of generated figures are characters, the rest creatures.
func (f *Factory) CreateFigure(mythology *models.Mythology, overrides ...func(*models.Figure)) (*models.Figure, error) {
	kind := models.FigureKindCharacter
	if f.rng.Intn(3) == 0 {
		kind = models.FigureKindCreature
	}

	figure := &models.Figure{
		MythologyID: mythology.ID,
		Kind:        kind,
		Name:        gofakeit.FirstName() + " " + strings.Title(gofakeit.NounAbstract()),
		Title:       figureTitles[f.rng.Intn(len(figureTitles))],
		Domain:      figureDomains[f.rng.Intn(len(figureDomains))],
		Description: gofakeit.Sentence(12),
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/400/400", gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(figure)
	}

	if err := f.db.Create(figure).Error; err != nil {
		return nil, err
	}
	return figure, nil
}

// CreateCrossoverRequest constructs and persists a request between two worlds
// owned by different users. The request starts pending.
func (f *Factory) CreateCrossoverRequest(from, to *models.Mythology, requestType models.CrossoverRequestType, overrides ...func(*models.CrossoverRequest)) (*models.CrossoverRequest, error) {
	request := &models.CrossoverRequest{
		RequesterID:          from.UserID,
		TargetUserID:         to.UserID,
		RequesterMythologyID: from.ID,
		TargetMythologyID:    to.ID,
		RequestType:          requestType,
		Status:               models.CrossoverRequestStatusPending,
		Message:              gofakeit.Sentence(10),
	}

	for _, override := range overrides {
		override(request)
	}

	if err := f.db.Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// generateSlug produces a URL-safe slug that fits the 24 character column.
func generateSlug(theme string) string {
	slug := fmt.Sprintf("%s-%s-%d", theme, strings.ToLower(gofakeit.NounAbstract()), gofakeit.Number(10, 99))
	slug = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' {
			return r
		}
		return -1
	}, slug)
	if len(slug) > 24 {
		slug = strings.Trim(slug[:24], "-")
	}
	return slug
}

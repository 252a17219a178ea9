package migration

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalogrepository "github.com/cohortly/cohortly/internal/catalog/repository"
	notifyrepository "github.com/cohortly/cohortly/internal/notify/repository"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	phaserepository "github.com/cohortly/cohortly/internal/phase/repository"
	"github.com/cohortly/cohortly/internal/seed"
)

// openMigratedDB builds the schema from the shipped migration files, not
// from AutoMigrate, so column-name drift between the DDL and the models
// shows up here instead of in production.
func openMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	raw, err := fs.ReadFile(embeddedMigrations, "migrations/0001_init.up.sql")
	require.NoError(t, err)

	for _, stmt := range strings.Split(string(raw), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		require.NoError(t, db.Exec(stmt).Error, stmt)
	}
	return db
}

func TestShippedSchemaRoundTripsPhases(t *testing.T) {
	db := openMigratedDB(t)
	require.NoError(t, seed.EnsureDevData(db))

	phases, err := phaserepository.Provide().ListGlobal(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, phases, 4)

	// Descending starts_at, so the seeded closed phase comes first.
	require.Equal(t, phasedomain.Closed, phases[0].Name)

	byName := make(map[phasedomain.Name]phasedomain.Definition, len(phases))
	for _, p := range phases {
		byName[p.Name] = p
	}
	require.Contains(t, byName, phasedomain.BeforeLaunch)
	require.Contains(t, byName, phasedomain.PhaseOne)
	require.NotNil(t, byName[phasedomain.PhaseOne].NotificationTemplateID)
	require.Equal(t, 1, *byName[phasedomain.PhaseOne].NotificationTemplateID)
	require.False(t, byName[phasedomain.PhaseOne].StartsAt.IsZero())
}

func TestShippedSchemaRoundTripsVariantPrices(t *testing.T) {
	db := openMigratedDB(t)
	require.NoError(t, seed.EnsureDevData(db))

	ctx := context.Background()
	repo := catalogrepository.Provide()

	course, err := repo.FindCourseBySlug(ctx, db, "production-go")
	require.NoError(t, err)

	variants, err := repo.ListVariants(ctx, db, phasedomain.ParentCourse, course.ID)
	require.NoError(t, err)
	require.Len(t, variants, 2)

	// Cheapest first; both phase prices must survive the write/read cycle.
	require.Equal(t, "Standard", variants[0].Name)
	require.EqualValues(t, 80000, variants[0].PricePhaseOne)
	require.EqualValues(t, 100000, variants[0].PricePhaseTwo)
	require.EqualValues(t, 150000, variants[1].PricePhaseOne)
	require.EqualValues(t, 190000, variants[1].PricePhaseTwo)
}

func TestShippedSchemaRoundTripsTemplates(t *testing.T) {
	db := openMigratedDB(t)
	require.NoError(t, seed.EnsureDevData(db))

	template, err := notifyrepository.Provide().FindTemplate(context.Background(), db, 1)
	require.NoError(t, err)
	require.Equal(t, "Early enrollment is open", template.Subject)
	require.Equal(t, "Enroll now", template.CTALabel)
}

// Package seed bootstraps a development database with a launch schedule,
// announcement templates and a small demo catalog.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/cohortly/cohortly/internal/catalog/domain"
	notifydomain "github.com/cohortly/cohortly/internal/notify/domain"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// EnsureDevData seeds everything a fresh development instance needs. Safe to
// run repeatedly: phases are only created when none exist, the rest is
// conflict-guarded.
func EnsureDevData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureLaunchPhases(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureTemplates(ctx, tx); err != nil {
			return err
		}
		return ensureDemoCatalog(ctx, tx, node)
	})
}

func ensureLaunchPhases(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM phase_definitions WHERE parent_kind IS NULL`,
	).Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	templateOne, templateTwo := 1, 2
	phases := []phasedomain.Definition{
		{ID: node.Generate(), Name: phasedomain.BeforeLaunch, StartsAt: now.Add(-time.Hour)},
		{ID: node.Generate(), Name: phasedomain.PhaseOne, StartsAt: now.Add(24 * time.Hour), NotificationTemplateID: &templateOne},
		{ID: node.Generate(), Name: phasedomain.PhaseTwo, StartsAt: now.Add(96 * time.Hour), NotificationTemplateID: &templateTwo},
		{ID: node.Generate(), Name: phasedomain.Closed, StartsAt: now.Add(168 * time.Hour)},
	}
	for i := range phases {
		if err := tx.WithContext(ctx).Create(&phases[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureTemplates(ctx context.Context, tx *gorm.DB) error {
	templates := []notifydomain.Template{
		{
			ID:       1,
			Name:     "phase_announcement",
			Subject:  "Early enrollment is open",
			Headline: "Doors are open",
			Body:     "Enrollment has opened with early pricing. Seats are limited.",
			CTALabel: "Enroll now",
		},
		{
			ID:       2,
			Name:     "phase_announcement",
			Subject:  "Last chance to enroll",
			Headline: "Final enrollment window",
			Body:     "Regular pricing is live. Enrollment closes at the end of the week.",
			CTALabel: "Enroll now",
		},
	}
	for _, t := range templates {
		err := tx.WithContext(ctx).Exec(
			`INSERT INTO notification_templates (id, name, subject, headline, body, cta_url, cta_label)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO NOTHING`,
			t.ID, t.Name, t.Subject, t.Headline, t.Body, t.CTAURL, t.CTALabel,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureDemoCatalog(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	courseName := "Production Go"
	course := catalogdomain.Course{
		ID:          node.Generate(),
		Name:        courseName,
		Slug:        slug.Make(courseName),
		Description: "Self-paced course on building production services.",
		Status:      catalogdomain.StatusActive,
	}
	res := tx.WithContext(ctx).Exec(
		`INSERT INTO courses (id, name, slug, description, status)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (slug) DO NOTHING`,
		course.ID, course.Name, course.Slug, course.Description, course.Status,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	variants := []catalogdomain.Variant{
		{ID: node.Generate(), ParentKind: phasedomain.ParentCourse, ParentID: course.ID, Name: "Standard", PricePhaseOne: 80000, PricePhaseTwo: 100000, Status: catalogdomain.StatusActive},
		{ID: node.Generate(), ParentKind: phasedomain.ParentCourse, ParentID: course.ID, Name: "Gold", PricePhaseOne: 150000, PricePhaseTwo: 190000, Status: catalogdomain.StatusActive},
	}
	for i := range variants {
		if err := tx.WithContext(ctx).Create(&variants[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

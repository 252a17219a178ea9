package repository

import (
	"context"

	enrollmentdomain "github.com/cohortly/cohortly/internal/enrollment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() enrollmentdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, enrollment *enrollmentdomain.Enrollment) (bool, error) {
	res := tx.WithContext(ctx).Exec(
		`INSERT INTO enrollments (
			id, user_id, checkout_session_id, course_ids, variant_ids,
			total_price_paid, currency, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (checkout_session_id) DO NOTHING`,
		enrollment.ID,
		enrollment.UserID,
		enrollment.CheckoutSessionID,
		enrollment.CourseIDs,
		enrollment.VariantIDs,
		enrollment.TotalPricePaid,
		enrollment.Currency,
		enrollment.Status,
		enrollment.CreatedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]enrollmentdomain.Enrollment, error) {
	var enrollments []enrollmentdomain.Enrollment
	err := tx.WithContext(ctx).Raw(
		`SELECT id, user_id, checkout_session_id, course_ids, variant_ids,
		 total_price_paid, currency, status, created_at
		 FROM enrollments
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	).Scan(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *repo) CountBySession(ctx context.Context, tx *gorm.DB, checkoutSessionID string) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM enrollments WHERE checkout_session_id = ?`,
		checkoutSessionID,
	).Scan(&count).Error
	return count, err
}

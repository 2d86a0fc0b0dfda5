package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, farmerID int64, req *domain.CreateBookingRequest) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByFarmer(ctx context.Context, farmerID int64, limit, offset int) ([]domain.BookingView, error)
	ListByOfficer(ctx context.Context, officerID int64, limit, offset int) ([]domain.BookingView, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingCols = `id, farmer_id, officer_id, date::text, time, consultation_type, status, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, farmerID int64, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	const q = `
		INSERT INTO bookings (farmer_id, officer_id, date, time, consultation_type, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Booking
	err := r.pool.QueryRow(ctx, q, farmerID, req.OfficerID, req.Date, req.Time, req.ConsultationType).Scan(
		&b.ID, &b.FarmerID, &b.OfficerID, &b.Date, &b.Time, &b.ConsultationType, &b.Status,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Booking
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&b.ID, &b.FarmerID, &b.OfficerID, &b.Date, &b.Time, &b.ConsultationType, &b.Status,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &b, err
}

const bookingViewQuery = `
	SELECT b.id, b.farmer_id, b.officer_id, b.date::text, b.time, b.consultation_type, b.status,
	       b.created_at, b.updated_at,
	       f.name, f.email, f.phone,
	       o.name, o.email, o.phone
	FROM bookings b
	JOIN users f ON f.id = b.farmer_id
	JOIN users o ON o.id = b.officer_id`

func (r *bookingRepository) listViews(ctx context.Context, where string, id int64, limit, offset int) ([]domain.BookingView, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := bookingViewQuery + ` WHERE ` + where + ` ORDER BY b.created_at DESC LIMIT $2 OFFSET $3`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, id, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []domain.BookingView
	for rows.Next() {
		var v domain.BookingView
		if err := rows.Scan(
			&v.ID, &v.FarmerID, &v.OfficerID, &v.Date, &v.Time, &v.ConsultationType, &v.Status,
			&v.CreatedAt, &v.UpdatedAt,
			&v.FarmerName, &v.FarmerEmail, &v.FarmerPhone,
			&v.OfficerName, &v.OfficerEmail, &v.OfficerPhone,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *bookingRepository) ListByFarmer(ctx context.Context, farmerID int64, limit, offset int) ([]domain.BookingView, error) {
	return r.listViews(ctx, `b.farmer_id = $1`, farmerID, limit, offset)
}

func (r *bookingRepository) ListByOfficer(ctx context.Context, officerID int64, limit, offset int) ([]domain.BookingView, error) {
	return r.listViews(ctx, `b.officer_id = $1`, officerID, limit, offset)
}

// UpdateStatus is a compare-and-swap: the write only lands if the booking
// still carries the status the caller validated against. A false return
// means another writer got there first (or the row is gone) and the caller
// must re-read before deciding what failed.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error) {
	const q = `UPDATE bookings SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, from, to)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

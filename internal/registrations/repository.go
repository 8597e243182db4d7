package registrations

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/models"
)

// Repository handles registration ledger persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const regCols = `id, event_id, user_id, status, amount, attendee_name, attendee_email, attendee_phone, payment_reference, confirmed_at, created_at, updated_at`

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reg.Amount,
		&reg.AttendeeName, &reg.AttendeeEmail, &reg.AttendeePhone,
		&reg.PaymentReference, &reg.ConfirmedAt, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// UpsertPending inserts a pending registration or resets an existing
// pending/failed/cancelled row for the same (event, user) pair. The conflict
// clause is the sole concurrency control: two simultaneous attempts serialize
// on the unique constraint. A row in any other state is left untouched and
// pgx.ErrNoRows is returned.
func (r *Repository) UpsertPending(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO registrations (id, event_id, user_id, status, amount, attendee_name, attendee_email, attendee_phone)
		VALUES (gen_random_uuid(), $1, $2, 'pending', $3, $4, $5, $6)
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			status = 'pending',
			amount = EXCLUDED.amount,
			attendee_name = EXCLUDED.attendee_name,
			attendee_email = EXCLUDED.attendee_email,
			attendee_phone = EXCLUDED.attendee_phone,
			payment_reference = NULL,
			confirmed_at = NULL,
			updated_at = NOW()
		WHERE registrations.status IN ('pending', 'failed', 'cancelled')
		RETURNING ` + regCols
	row := r.pool.QueryRow(ctx, q, reg.EventID, reg.UserID, reg.Amount, reg.AttendeeName, reg.AttendeeEmail, reg.AttendeePhone)
	fresh, err := scanRegistration(row)
	if err != nil {
		return err
	}
	*reg = *fresh
	return nil
}

// UpsertConfirmed inserts a confirmed registration for a free event, or
// promotes an existing pending/failed/cancelled row. confirmed_at is set once
// and never moved. Rows already confirmed or refunded are left untouched and
// pgx.ErrNoRows is returned.
func (r *Repository) UpsertConfirmed(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO registrations (id, event_id, user_id, status, amount, attendee_name, attendee_email, attendee_phone, confirmed_at)
		VALUES (gen_random_uuid(), $1, $2, 'confirmed', $3, $4, $5, $6, NOW())
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			status = 'confirmed',
			amount = EXCLUDED.amount,
			attendee_name = EXCLUDED.attendee_name,
			attendee_email = EXCLUDED.attendee_email,
			attendee_phone = EXCLUDED.attendee_phone,
			payment_reference = NULL,
			confirmed_at = COALESCE(registrations.confirmed_at, NOW()),
			updated_at = NOW()
		WHERE registrations.status IN ('pending', 'failed', 'cancelled')
		RETURNING ` + regCols
	row := r.pool.QueryRow(ctx, q, reg.EventID, reg.UserID, reg.Amount, reg.AttendeeName, reg.AttendeeEmail, reg.AttendeePhone)
	fresh, err := scanRegistration(row)
	if err != nil {
		return err
	}
	*reg = *fresh
	return nil
}

// GetByID returns a registration by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	const q = `SELECT ` + regCols + ` FROM registrations WHERE id = $1`
	return scanRegistration(r.pool.QueryRow(ctx, q, id))
}

// GetByEventAndUser returns the registration for an (event, user) pair.
func (r *Repository) GetByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	const q = `SELECT ` + regCols + ` FROM registrations WHERE event_id = $1 AND user_id = $2`
	return scanRegistration(r.pool.QueryRow(ctx, q, eventID, userID))
}

// ListByUser returns all registrations belonging to a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error) {
	const q = `SELECT ` + regCols + ` FROM registrations WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *reg)
	}
	return list, rows.Err()
}

// CountActiveForEvent returns how many pending or confirmed registrations an
// event holds. Pending rows hold a seat while their payment is in flight.
func (r *Repository) CountActiveForEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status IN ('pending', 'confirmed')`
	var n int
	err := r.pool.QueryRow(ctx, q, eventID).Scan(&n)
	return n, err
}

// AttachPaymentReference stores the external intent reference on a pending
// row. A row that already moved past pending is reported as pgx.ErrNoRows.
func (r *Repository) AttachPaymentReference(ctx context.Context, id uuid.UUID, ref string) error {
	const q = `UPDATE registrations SET payment_reference = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id`
	var got uuid.UUID
	return r.pool.QueryRow(ctx, q, id, ref).Scan(&got)
}

// MarkPaymentResult applies a webhook-driven transition: success moves
// pending to confirmed, failure moves pending to failed. Re-applying the same
// result matches the row again and changes nothing, so duplicate deliveries
// converge on the same state. paymentRef must match the reference stored on
// the row; a stale webhook from an abandoned payment cycle never touches a
// newer cycle. Returns pgx.ErrNoRows when no row accepts the transition.
func (r *Repository) MarkPaymentResult(ctx context.Context, id uuid.UUID, paymentRef string, succeeded bool) (*models.Registration, error) {
	if succeeded {
		const q = `UPDATE registrations SET
				status = 'confirmed',
				confirmed_at = COALESCE(confirmed_at, NOW()),
				updated_at = NOW()
			WHERE id = $1 AND payment_reference = $2 AND status IN ('pending', 'confirmed')
			RETURNING ` + regCols
		return scanRegistration(r.pool.QueryRow(ctx, q, id, paymentRef))
	}
	const q = `UPDATE registrations SET status = 'failed', updated_at = NOW()
		WHERE id = $1 AND payment_reference = $2 AND status IN ('pending', 'failed')
		RETURNING ` + regCols
	return scanRegistration(r.pool.QueryRow(ctx, q, id, paymentRef))
}

// Cancel moves a caller-owned pending row to cancelled. Terminal rows are not
// touched and pgx.ErrNoRows is returned.
func (r *Repository) Cancel(ctx context.Context, id, userID uuid.UUID) (*models.Registration, error) {
	const q = `UPDATE registrations SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = 'pending'
		RETURNING ` + regCols
	return scanRegistration(r.pool.QueryRow(ctx, q, id, userID))
}

// MarkRefunded moves a confirmed row to refunded.
func (r *Repository) MarkRefunded(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	const q = `UPDATE registrations SET status = 'refunded', updated_at = NOW()
		WHERE id = $1 AND status = 'confirmed'
		RETURNING ` + regCols
	return scanRegistration(r.pool.QueryRow(ctx, q, id))
}

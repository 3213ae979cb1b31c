package workshop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodyworks/bodyworks/internal/platform/db"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Repository defines persistence for job cards.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, tenantID, id int64) (JobCard, error)
	List(ctx context.Context, tenantID int64, filters ListFilters) ([]JobCard, int, error)
	Insert(ctx context.Context, card JobCard) (int64, error)
	SetStage(ctx context.Context, tenantID, id int64, stage Stage, delivered bool) error
	SetAssignee(ctx context.Context, tenantID, id, userID int64) error
	InsertStageEvent(ctx context.Context, event StageEvent) error
	StageHistory(ctx context.Context, tenantID, jobCardID int64) ([]StageEvent, error)
	InsertInspection(ctx context.Context, tenantID int64, qc QCInspection) (QCInspection, error)
	Inspections(ctx context.Context, tenantID, jobCardID int64) ([]QCInspection, error)
	NextDocNumber(ctx context.Context, tenantID int64, date time.Time) (string, error)
	AgingCards(ctx context.Context, threshold time.Duration) ([]AgingCard, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

type querier interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// WithTx runs fn inside a transaction with a repository bound to it.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &PGRepository{pool: r.pool, tx: tx})
	})
}

const cardColumns = `id, tenant_id, doc_number, quotation_id, customer_id, vehicle_id, stage, stage_entered_at,
	assigned_to, notes, opened_by, opened_at, delivered_at, created_at, updated_at`

func scanCard(row pgx.Row) (JobCard, error) {
	var c JobCard
	err := row.Scan(&c.ID, &c.TenantID, &c.DocNumber, &c.QuotationID, &c.CustomerID, &c.VehicleID,
		&c.Stage, &c.StageEnteredAt, &c.AssignedTo, &c.Notes, &c.OpenedBy, &c.OpenedAt,
		&c.DeliveredAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Get fetches one job card scoped to a tenant.
func (r *PGRepository) Get(ctx context.Context, tenantID, id int64) (JobCard, error) {
	card, err := scanCard(r.q().QueryRow(ctx,
		`SELECT `+cardColumns+` FROM job_cards WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JobCard{}, httpx.ErrNotFound
		}
		return JobCard{}, err
	}
	return card, nil
}

// List returns job cards matching the filters plus the unpaged total.
func (r *PGRepository) List(ctx context.Context, tenantID int64, filters ListFilters) ([]JobCard, int, error) {
	if filters.PerPage <= 0 {
		filters.PerPage = 20
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	conditions := "tenant_id = $1"
	args := []any{tenantID}
	if filters.Stage != nil {
		args = append(args, *filters.Stage)
		conditions += fmt.Sprintf(" AND stage = $%d", len(args))
	}
	if filters.AssignedTo != nil {
		args = append(args, *filters.AssignedTo)
		conditions += fmt.Sprintf(" AND assigned_to = $%d", len(args))
	}

	var total int
	if err := r.q().QueryRow(ctx,
		`SELECT COUNT(*) FROM job_cards WHERE `+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filters.PerPage, (filters.Page-1)*filters.PerPage)
	rows, err := r.q().Query(ctx,
		`SELECT `+cardColumns+` FROM job_cards WHERE `+conditions+
			fmt.Sprintf(` ORDER BY opened_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var cards []JobCard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, 0, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// Insert opens a job card and returns its ID.
func (r *PGRepository) Insert(ctx context.Context, card JobCard) (int64, error) {
	var id int64
	err := r.q().QueryRow(ctx,
		`INSERT INTO job_cards (tenant_id, doc_number, quotation_id, customer_id, vehicle_id, stage,
			stage_entered_at, assigned_to, notes, opened_by, opened_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7, $8, $9, NOW(), NOW(), NOW())
		 RETURNING id`,
		card.TenantID, card.DocNumber, card.QuotationID, card.CustomerID, card.VehicleID, card.Stage,
		card.AssignedTo, card.Notes, card.OpenedBy).Scan(&id)
	return id, err
}

// SetStage moves a card to a stage and resets the stage clock. delivered
// additionally stamps delivered_at.
func (r *PGRepository) SetStage(ctx context.Context, tenantID, id int64, stage Stage, delivered bool) error {
	deliveredExpr := "delivered_at"
	if delivered {
		deliveredExpr = "NOW()"
	}
	var updated int64
	err := r.q().QueryRow(ctx,
		`UPDATE job_cards SET stage = $3, stage_entered_at = NOW(), delivered_at = `+deliveredExpr+`, updated_at = NOW()
		 WHERE tenant_id = $1 AND id = $2 RETURNING id`,
		tenantID, id, stage).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return httpx.ErrNotFound
	}
	return err
}

// SetAssignee hands the card to a user.
func (r *PGRepository) SetAssignee(ctx context.Context, tenantID, id, userID int64) error {
	var updated int64
	err := r.q().QueryRow(ctx,
		`UPDATE job_cards SET assigned_to = $3, updated_at = NOW()
		 WHERE tenant_id = $1 AND id = $2 RETURNING id`,
		tenantID, id, userID).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return httpx.ErrNotFound
	}
	return err
}

// InsertStageEvent appends one transition to the card's history.
func (r *PGRepository) InsertStageEvent(ctx context.Context, event StageEvent) error {
	var id int64
	return r.q().QueryRow(ctx,
		`INSERT INTO job_card_stage_events (job_card_id, from_stage, to_stage, moved_by, note, moved_at)
		 VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`,
		event.JobCardID, event.FromStage, event.ToStage, event.MovedBy, event.Note).Scan(&id)
}

// StageHistory returns the card's transitions in order.
func (r *PGRepository) StageHistory(ctx context.Context, tenantID, jobCardID int64) ([]StageEvent, error) {
	rows, err := r.q().Query(ctx,
		`SELECT e.id, e.job_card_id, e.from_stage, e.to_stage, e.moved_by, e.note, e.moved_at
		 FROM job_card_stage_events e
		 JOIN job_cards c ON c.id = e.job_card_id
		 WHERE c.tenant_id = $1 AND e.job_card_id = $2
		 ORDER BY e.moved_at, e.id`,
		tenantID, jobCardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []StageEvent
	for rows.Next() {
		var e StageEvent
		if err := rows.Scan(&e.ID, &e.JobCardID, &e.FromStage, &e.ToStage, &e.MovedBy, &e.Note, &e.MovedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// InsertInspection stores an inspection with its checklist as JSONB.
func (r *PGRepository) InsertInspection(ctx context.Context, tenantID int64, qc QCInspection) (QCInspection, error) {
	items, err := json.Marshal(qc.Items)
	if err != nil {
		return QCInspection{}, err
	}
	err = r.q().QueryRow(ctx,
		`INSERT INTO qc_inspections (job_card_id, inspector_id, items, score, passed, notes, inspected_at)
		 SELECT $2, $3, $4, $5, $6, $7, NOW()
		 FROM job_cards WHERE tenant_id = $1 AND id = $2
		 RETURNING id, inspected_at`,
		tenantID, qc.JobCardID, qc.InspectorID, items, qc.Score, qc.Passed, qc.Notes).
		Scan(&qc.ID, &qc.InspectedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return QCInspection{}, httpx.ErrNotFound
	}
	if err != nil {
		return QCInspection{}, err
	}
	return qc, nil
}

// Inspections lists a card's inspections, newest first.
func (r *PGRepository) Inspections(ctx context.Context, tenantID, jobCardID int64) ([]QCInspection, error) {
	rows, err := r.q().Query(ctx,
		`SELECT q.id, q.job_card_id, q.inspector_id, q.items, q.score, q.passed, q.notes, q.inspected_at
		 FROM qc_inspections q
		 JOIN job_cards c ON c.id = q.job_card_id
		 WHERE c.tenant_id = $1 AND q.job_card_id = $2
		 ORDER BY q.inspected_at DESC`,
		tenantID, jobCardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var inspections []QCInspection
	for rows.Next() {
		var qc QCInspection
		var items []byte
		if err := rows.Scan(&qc.ID, &qc.JobCardID, &qc.InspectorID, &items, &qc.Score, &qc.Passed, &qc.Notes, &qc.InspectedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &qc.Items); err != nil {
			return nil, err
		}
		inspections = append(inspections, qc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return inspections, nil
}

// NextDocNumber allocates the next JC-{YYMM}-{SEQ} number for the tenant
// and month.
func (r *PGRepository) NextDocNumber(ctx context.Context, tenantID int64, date time.Time) (string, error) {
	var seq int64
	err := r.q().QueryRow(ctx,
		`INSERT INTO document_sequences (tenant_id, doc_type, period, seq)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (tenant_id, doc_type, period)
		 DO UPDATE SET seq = document_sequences.seq + 1
		 RETURNING seq`,
		tenantID, "JC", date.Format("200601")).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("JC-%s-%04d", date.Format("0601"), seq), nil
}

// AgingCards returns open cards across all tenants that entered their
// current stage more than threshold ago. Used by the stage aging job.
func (r *PGRepository) AgingCards(ctx context.Context, threshold time.Duration) ([]AgingCard, error) {
	rows, err := r.q().Query(ctx,
		`SELECT id, doc_number, tenant_id, stage, EXTRACT(EPOCH FROM NOW() - stage_entered_at)::bigint
		 FROM job_cards
		 WHERE stage NOT IN ($1, $2) AND stage_entered_at < NOW() - make_interval(secs => $3)
		 ORDER BY stage_entered_at`,
		StageReady, StageDelivered, threshold.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cards []AgingCard
	for rows.Next() {
		var c AgingCard
		var seconds int64
		if err := rows.Scan(&c.JobCardID, &c.DocNumber, &c.TenantID, &c.Stage, &seconds); err != nil {
			return nil, err
		}
		c.InStage = time.Duration(seconds) * time.Second
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

var _ Repository = (*PGRepository)(nil)

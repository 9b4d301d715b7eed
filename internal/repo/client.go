package repo

import (
	"context"
	"errors"
	"fmt"

	"caresync-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrClientNotFound = errors.New("client not found")
)

type ClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// BeginTx starts a transaction. Use with defer tx.Rollback(ctx) and
// tx.Commit(ctx).
func (r *ClientRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Create inserts a new client owned by its coordinator.
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, first_name, last_name, coordinator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		client.ID, client.FirstName, client.LastName, client.CoordinatorID,
	).Scan(&client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}

	return nil
}

// GetByID retrieves a client and its care team.
func (r *ClientRepository) GetByID(ctx context.Context, clientID uuid.UUID) (*domain.Client, error) {
	query := `
		SELECT id, first_name, last_name, coordinator_id, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	var c domain.Client
	err := r.pool.QueryRow(ctx, query, clientID).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.CoordinatorID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("query client: %w", err)
	}

	carers, err := r.listCarers(ctx, clientID)
	if err != nil {
		return nil, err
	}
	c.Carers = carers

	return &c, nil
}

// GetForUpdate locks the client row (SELECT ... FOR UPDATE). All shift writes
// for a client serialize on this lock so the no-overlap check cannot race.
// Must be called inside a transaction.
func (r *ClientRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, clientID uuid.UUID) (*domain.Client, error) {
	query := `
		SELECT id, first_name, last_name, coordinator_id, created_at, updated_at
		FROM clients
		WHERE id = $1
		FOR UPDATE
	`

	var c domain.Client
	err := tx.QueryRow(ctx, query, clientID).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.CoordinatorID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("query client for update: %w", err)
	}

	carers, err := r.listCarersTx(ctx, tx, clientID)
	if err != nil {
		return nil, err
	}
	c.Carers = carers

	return &c, nil
}

// ListForUser retrieves all clients the user can see: those they coordinate
// plus those whose care team they belong to, ordered by name.
func (r *ClientRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Client, error) {
	query := `
		SELECT DISTINCT c.id, c.first_name, c.last_name, c.coordinator_id, c.created_at, c.updated_at
		FROM clients c
		LEFT JOIN client_carers cc ON cc.client_id = c.id
		WHERE c.coordinator_id = $1 OR cc.carer_id = $1
		ORDER BY c.first_name, c.last_name, c.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.CoordinatorID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	for i := range clients {
		carers, err := r.listCarers(ctx, clients[i].ID)
		if err != nil {
			return nil, err
		}
		clients[i].Carers = carers
	}

	return clients, nil
}

// Delete removes a client. Shifts, incident reports and care team rows cascade.
func (r *ClientRepository) Delete(ctx context.Context, clientID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, clientID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrClientNotFound
	}

	return nil
}

// AddCarer adds a user to the care team. Returns false when the user was
// already a member (set semantics, no error).
func (r *ClientRepository) AddCarer(ctx context.Context, clientID, carerID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO client_carers (client_id, carer_id)
		VALUES ($1, $2)
		ON CONFLICT (client_id, carer_id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query, clientID, carerID)
	if err != nil {
		return false, fmt.Errorf("add carer: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// RemoveCarer removes a user from the care team. Returns false when they were
// not a member.
func (r *ClientRepository) RemoveCarer(ctx context.Context, clientID, carerID uuid.UUID) (bool, error) {
	query := `DELETE FROM client_carers WHERE client_id = $1 AND carer_id = $2`

	result, err := r.pool.Exec(ctx, query, clientID, carerID)
	if err != nil {
		return false, fmt.Errorf("remove carer: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *ClientRepository) listCarers(ctx context.Context, clientID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT carer_id FROM client_carers WHERE client_id = $1 ORDER BY added_at, carer_id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("query carers: %w", err)
	}
	defer rows.Close()

	return scanCarerIDs(rows)
}

func (r *ClientRepository) listCarersTx(ctx context.Context, tx pgx.Tx, clientID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx,
		`SELECT carer_id FROM client_carers WHERE client_id = $1 ORDER BY added_at, carer_id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("query carers: %w", err)
	}
	defer rows.Close()

	return scanCarerIDs(rows)
}

func scanCarerIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	carers := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan carer id: %w", err)
		}
		carers = append(carers, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate carers: %w", err)
	}
	return carers, nil
}

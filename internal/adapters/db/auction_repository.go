package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"freight-bid-service/internal/domain/auction"
	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
)

const auctionColumns = `
	id, code, title, description,
	vehicle_plate, vehicle_category, vehicle_quantity, transport_type, has_key, operational,
	origin, pickup_address, destination, delivery_address,
	deadline, delivery_deadline, status, price_weight, lead_time_weight, winning_offer_id,
	creation_log, closing_log, selection_log, selection_note, approval_log,
	created_at, updated_at`

// AuctionRepository implements the auction repository interface
type AuctionRepository struct {
	conn *Connection
}

// NewAuctionRepository creates a new auction repository
func NewAuctionRepository(conn *Connection) *AuctionRepository {
	return &AuctionRepository{conn: conn}
}

// Create creates a new auction
func (r *AuctionRepository) Create(ctx context.Context, a *auction.Auction) error {
	query := `
		INSERT INTO auctions (` + auctionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		a.ID,
		a.Code,
		a.Title,
		a.Description,
		a.VehiclePlate,
		a.VehicleCategory,
		a.VehicleQuantity,
		a.TransportType,
		a.HasKey,
		a.Operational,
		a.Origin,
		a.PickupAddress,
		a.Destination,
		a.DeliveryAddress,
		a.Deadline,
		nullTime(a.DeliveryDeadline),
		a.Status,
		a.PriceWeight,
		a.LeadTimeWeight,
		nullUUID(a.WinningOfferID),
		a.CreationLog,
		a.ClosingLog,
		a.SelectionLog,
		a.SelectionNote,
		a.ApprovalLog,
		a.CreatedAt,
		a.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "auctions_code_key") {
			return fmt.Errorf("create auction %s: %w", a.Code, shared.ErrCodeTaken)
		}
		if isUniqueViolation(err, "auctions_pkey") {
			return fmt.Errorf("create auction %s: %w", a.ID, shared.ErrDuplicateID)
		}
		return fmt.Errorf("failed to create auction: %w", err)
	}

	return nil
}

// GetByID retrieves an auction by ID
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`

	a, err := scanAuction(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}

	return a, nil
}

// GetByCode retrieves an auction by its code
func (r *AuctionRepository) GetByCode(ctx context.Context, code string) (*auction.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE code = $1`

	a, err := scanAuction(r.conn.GetDB().QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction by code: %w", err)
	}

	return a, nil
}

// CodeExists reports whether a code is already in use
func (r *AuctionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.conn.GetDB().QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM auctions WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check auction code: %w", err)
	}
	return exists, nil
}

// List retrieves a list of auctions with optional filters
func (r *AuctionRepository) List(ctx context.Context, status *auction.Status, page, pageSize int) ([]*auction.Auction, error) {
	baseQuery := `SELECT ` + auctionColumns + ` FROM auctions `

	var whereClause string
	var args []interface{}
	argCount := 1

	if status != nil {
		whereClause = "WHERE status = $1"
		args = append(args, *status)
		argCount++
	}

	// Add pagination
	limitClause := fmt.Sprintf("LIMIT $%d", argCount)
	offsetClause := fmt.Sprintf("OFFSET $%d", argCount+1)
	args = append(args, pageSize, (page-1)*pageSize)

	query := baseQuery + whereClause + " ORDER BY created_at DESC, code ASC " + limitClause + " " + offsetClause

	rows, err := r.conn.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	auctions := []*auction.Auction{}
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		auctions = append(auctions, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auctions: %w", err)
	}

	return auctions, nil
}

// UpdateIfStatus writes every mutable column, guarded by the expected
// status. Zero affected rows means either a missing auction or a concurrent
// transition; the transaction tells them apart.
func (r *AuctionRepository) UpdateIfStatus(ctx context.Context, a *auction.Auction, expected auction.Status) error {
	query := `
		UPDATE auctions
		SET title = $2, description = $3, deadline = $4, delivery_deadline = $5,
		    status = $6, winning_offer_id = $7,
		    closing_log = $8, selection_log = $9, selection_note = $10, approval_log = $11,
		    updated_at = $12
		WHERE id = $1 AND status = $13
	`

	return r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			a.ID,
			a.Title,
			a.Description,
			a.Deadline,
			nullTime(a.DeliveryDeadline),
			a.Status,
			nullUUID(a.WinningOfferID),
			a.ClosingLog,
			a.SelectionLog,
			a.SelectionNote,
			a.ApprovalLog,
			a.UpdatedAt,
			expected,
		)
		if err != nil {
			return fmt.Errorf("failed to update auction: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected > 0 {
			return nil
		}

		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM auctions WHERE id = $1)`, a.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check auction: %w", err)
		}
		if !exists {
			return shared.ErrAuctionNotFound
		}
		return shared.ErrStatusConflict
	})
}

func scanAuction(row rowScanner) (*auction.Auction, error) {
	var (
		a                auction.Auction
		deliveryDeadline sql.NullTime
		winningOfferID   uuid.NullUUID
	)
	err := row.Scan(
		&a.ID,
		&a.Code,
		&a.Title,
		&a.Description,
		&a.VehiclePlate,
		&a.VehicleCategory,
		&a.VehicleQuantity,
		&a.TransportType,
		&a.HasKey,
		&a.Operational,
		&a.Origin,
		&a.PickupAddress,
		&a.Destination,
		&a.DeliveryAddress,
		&a.Deadline,
		&deliveryDeadline,
		&a.Status,
		&a.PriceWeight,
		&a.LeadTimeWeight,
		&winningOfferID,
		&a.CreationLog,
		&a.ClosingLog,
		&a.SelectionLog,
		&a.SelectionNote,
		&a.ApprovalLog,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deliveryDeadline.Valid {
		a.DeliveryDeadline = &deliveryDeadline.Time
	}
	if winningOfferID.Valid {
		a.WinningOfferID = &winningOfferID.UUID
	}
	return &a, nil
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"freight-bid-service/internal/domain/offer"
	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
)

const offerColumns = `id, auction_id, carrier_id, carrier_name, price, lead_time_days, notify_token, created_at`

// OfferRepository implements the offer repository interface
type OfferRepository struct {
	conn *Connection
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(conn *Connection) *OfferRepository {
	return &OfferRepository{conn: conn}
}

func (r *OfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	query := `
		INSERT INTO offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		o.ID,
		o.AuctionID,
		o.CarrierID,
		o.CarrierName,
		o.Price,
		o.LeadTimeDays,
		nullString(o.NotifyToken),
		o.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "offers_pkey") {
			return fmt.Errorf("create offer %s: %w", o.ID, shared.ErrDuplicateID)
		}
		return fmt.Errorf("failed to create offer: %w", err)
	}

	return nil
}

func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	o, err := scanOffer(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return o, nil
}

// ListByAuction retrieves all offers for an auction in submission order
func (r *OfferRepository) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*offer.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers
		WHERE auction_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get offers: %w", err)
	}
	defer rows.Close()

	offers := []*offer.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, nil
}

// GetLeader retrieves the cheapest offer, earliest first on equal prices
func (r *OfferRepository) GetLeader(ctx context.Context, auctionID uuid.UUID) (*offer.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers
		WHERE auction_id = $1
		ORDER BY price ASC, created_at ASC, id ASC
		LIMIT 1
	`

	o, err := scanOffer(r.conn.GetDB().QueryRowContext(ctx, query, auctionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNoOffers
		}
		return nil, fmt.Errorf("failed to get leading offer: %w", err)
	}

	return o, nil
}

func (r *OfferRepository) CountByAuction(ctx context.Context, auctionID uuid.UUID) (int, error) {
	var count int
	err := r.conn.GetDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM offers WHERE auction_id = $1`, auctionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count offers: %w", err)
	}
	return count, nil
}

func scanOffer(row rowScanner) (*offer.Offer, error) {
	var (
		o           offer.Offer
		notifyToken sql.NullString
	)
	err := row.Scan(
		&o.ID,
		&o.AuctionID,
		&o.CarrierID,
		&o.CarrierName,
		&o.Price,
		&o.LeadTimeDays,
		&notifyToken,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if notifyToken.Valid {
		o.NotifyToken = &notifyToken.String
	}
	return &o, nil
}

package db

import (
	"freight-bid-service/internal/ports/outbound"
)

// RepositoryFactory creates and manages all database repositories
type RepositoryFactory struct {
	conn *Connection
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(conn *Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// Repositories groups the repositories the services depend on
type Repositories struct {
	Auctions     outbound.AuctionRepository
	Offers       outbound.OfferRepository
	Participants outbound.ParticipantRepository
}

// GetAllRepositories returns all repositories for dependency injection
func (f *RepositoryFactory) GetAllRepositories() Repositories {
	return Repositories{
		Auctions:     NewAuctionRepository(f.conn),
		Offers:       NewOfferRepository(f.conn),
		Participants: NewParticipantRepository(f.conn),
	}
}

package port

import (
	"memebot/internal/core/domain"
)

// Broadcaster manages scheduled deliveries per destination chat.
type Broadcaster interface {
	Configure(destinationID int64, selector, intervalText string) error
	Pause(destinationID int64) error
	Resume(destinationID int64, selectorOverride string) error
	Teardown(destinationID int64) error
	Status(destinationID int64) (domain.RegistryEntry, bool)
	List() []domain.RegistryEntry
}

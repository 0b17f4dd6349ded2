package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/haeun-dev/manito/internal/domain/pairing"
)

type PairingRepository struct {
	mu    sync.RWMutex
	items map[string]pairing.Pairing
}

func NewPairingRepository() *PairingRepository {
	return &PairingRepository{items: make(map[string]pairing.Pairing)}
}

func (r *PairingRepository) GetByGiver(_ context.Context, groupID string, week int, giverUserID string) (pairing.Pairing, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[pairingKey(groupID, week, giverUserID)]
	if !ok {
		return pairing.Pairing{}, false, nil
	}

	return item, true, nil
}

func (r *PairingRepository) GetByReceiver(_ context.Context, groupID string, week int, receiverUserID string) (pairing.Pairing, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.GroupID == groupID && item.Week == week && item.ReceiverUserID == receiverUserID {
			return item, true, nil
		}
	}

	return pairing.Pairing{}, false, nil
}

// Put exists for seeding and tests; the game core itself never writes pairings.
func (r *PairingRepository) Put(item pairing.Pairing) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[pairingKey(item.GroupID, item.Week, item.GiverUserID)] = item
}

func pairingKey(groupID string, week int, giverUserID string) string {
	return groupID + "::" + strconv.Itoa(week) + "::" + giverUserID
}

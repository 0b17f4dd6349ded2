package memory

import (
	"context"
	"sync"
)

// Directory is an in-memory stand-in for the account service, used by the
// memory storage driver and tests.
type Directory struct {
	mu      sync.RWMutex
	users   map[string]struct{}
	members map[string]map[string]struct{}
}

func NewDirectory() *Directory {
	return &Directory{
		users:   make(map[string]struct{}),
		members: make(map[string]map[string]struct{}),
	}
}

func (d *Directory) UserExists(_ context.Context, userID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.users[userID]
	return ok, nil
}

func (d *Directory) GroupExists(_ context.Context, groupID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.members[groupID]
	return ok, nil
}

func (d *Directory) IsGroupMember(_ context.Context, userID, groupID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	group, ok := d.members[groupID]
	if !ok {
		return false, nil
	}
	_, ok = group[userID]
	return ok, nil
}

func (d *Directory) AddUser(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.users[userID] = struct{}{}
}

func (d *Directory) AddGroup(groupID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.members[groupID]; !ok {
		d.members[groupID] = make(map[string]struct{})
	}
}

func (d *Directory) AddMember(groupID, userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.users[userID] = struct{}{}
	if _, ok := d.members[groupID]; !ok {
		d.members[groupID] = make(map[string]struct{})
	}
	d.members[groupID][userID] = struct{}{}
}

package entity

import (
	"errors"
	"fmt"
)

var ErrAlreadyMapped = errors.New("entity already mapped")

// PeerMap is the injective mapping between local entity IDs and the IDs the
// remote authority knows them by. Events that embed entity references are
// remapped through it before leaving the process.
type PeerMap struct {
	toRemote map[ID]ID
	toLocal  map[ID]ID
}

func NewPeerMap() *PeerMap {
	return &PeerMap{
		toRemote: make(map[ID]ID),
		toLocal:  make(map[ID]ID),
	}
}

// Insert records a local/remote pair. Either side already being mapped is an
// error; the mapping must stay injective.
func (m *PeerMap) Insert(local, remote ID) error {
	if _, ok := m.toRemote[local]; ok {
		return fmt.Errorf("local %d: %w", local, ErrAlreadyMapped)
	}
	if _, ok := m.toLocal[remote]; ok {
		return fmt.Errorf("remote %d: %w", remote, ErrAlreadyMapped)
	}
	m.toRemote[local] = remote
	m.toLocal[remote] = local
	return nil
}

// Remote returns the remote ID for a local entity. Unmapped entities map to
// themselves; the authority's IDs are canonical, so a missing entry means
// the entity originated remotely.
func (m *PeerMap) Remote(local ID) ID {
	if remote, ok := m.toRemote[local]; ok {
		return remote
	}
	return local
}

// Local returns the local ID for a remote entity.
func (m *PeerMap) Local(remote ID) (ID, bool) {
	local, ok := m.toLocal[remote]
	return local, ok
}

// Forget drops the pair for a local entity, if any.
func (m *PeerMap) Forget(local ID) {
	if remote, ok := m.toRemote[local]; ok {
		delete(m.toRemote, local)
		delete(m.toLocal, remote)
	}
}

// Len returns the number of mapped pairs.
func (m *PeerMap) Len() int {
	return len(m.toRemote)
}

package license

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Verification failure reasons
var (
	ErrNotFound       = errors.New("license code not found")
	ErrRevoked        = errors.New("license has been revoked")
	ErrExpired        = errors.New("license has expired")
	ErrDeviceMismatch = errors.New("license is bound to another device")
	ErrNotLifetime    = errors.New("lifetime licenses cannot be extended")
)

// Manager implements license issuing, activation and administration on top
// of a Store
type Manager struct {
	store *Store
	now   func() time.Time
}

// NewManager creates a license manager
func NewManager(store *Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Create issues a new license for the given plan. The expiry clock starts at
// creation; lifetime licenses carry no expiry.
func (m *Manager) Create(plan Plan, userName, notes string) (*License, error) {
	if !plan.Valid() {
		return nil, fmt.Errorf("unknown plan %q", plan)
	}

	var code string
	for {
		generated, err := GenerateCode()
		if err != nil {
			return nil, err
		}
		if m.store.Get(generated) == nil {
			code = generated
			break
		}
	}

	l := &License{
		Key:       code,
		Plan:      plan,
		UserName:  userName,
		Notes:     notes,
		Active:    true,
		CreatedAt: m.now().UTC(),
	}
	if days := plan.Days(); days > 0 {
		expires := l.CreatedAt.AddDate(0, 0, days)
		l.ExpiresAt = &expires
	}

	if err := m.store.Put(l); err != nil {
		return nil, err
	}

	log.Info().Str("key", l.Key).Str("plan", string(plan)).Msg("license issued")
	return l, nil
}

// CreateBatch issues count licenses for the same plan
func (m *Manager) CreateBatch(plan Plan, count int, notes string) ([]*License, error) {
	if count <= 0 {
		return nil, errors.New("batch count must be positive")
	}
	out := make([]*License, 0, count)
	for i := 0; i < count; i++ {
		l, err := m.Create(plan, "", notes)
		if err != nil {
			return out, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Activate binds the license to a device. Re-activation from the same
// device is allowed; a second device is rejected.
func (m *Manager) Activate(code, deviceID string) (*License, error) {
	if deviceID == "" {
		return nil, errors.New("device id is required")
	}

	l, err := m.lookup(code)
	if err != nil {
		return nil, err
	}
	if l.Used && l.DeviceID != deviceID {
		return nil, ErrDeviceMismatch
	}

	now := m.now().UTC()
	l.DeviceID = deviceID
	l.Used = true
	l.ActivatedAt = &now
	if err := m.store.Put(l); err != nil {
		return nil, err
	}

	log.Info().Str("key", l.Key).Str("device", deviceID).Msg("license activated")
	return l, nil
}

// Verify checks that the license is live and bound to the given device
func (m *Manager) Verify(code, deviceID string) (*License, error) {
	l, err := m.lookup(code)
	if err != nil {
		return nil, err
	}
	if l.Used && l.DeviceID != deviceID {
		return nil, ErrDeviceMismatch
	}
	return l, nil
}

// Revoke deactivates a license
func (m *Manager) Revoke(code string) error {
	l := m.store.Get(NormalizeCode(code))
	if l == nil {
		return ErrNotFound
	}
	l.Active = false
	return m.store.Put(l)
}

// Reinstate reactivates a previously revoked license
func (m *Manager) Reinstate(code string) error {
	l := m.store.Get(NormalizeCode(code))
	if l == nil {
		return ErrNotFound
	}
	l.Active = true
	return m.store.Put(l)
}

// Extend pushes the expiry out by the given number of days. An already
// expired license extends from now instead of its stale expiry.
func (m *Manager) Extend(code string, days int) (*License, error) {
	if days <= 0 {
		return nil, errors.New("extension days must be positive")
	}
	l := m.store.Get(NormalizeCode(code))
	if l == nil {
		return nil, ErrNotFound
	}
	if l.ExpiresAt == nil {
		return nil, ErrNotLifetime
	}

	base := *l.ExpiresAt
	if now := m.now().UTC(); now.After(base) {
		base = now
	}
	expires := base.AddDate(0, 0, days)
	l.ExpiresAt = &expires
	if err := m.store.Put(l); err != nil {
		return nil, err
	}
	return l, nil
}

// List returns every stored license
func (m *Manager) List() []*License {
	return m.store.List()
}

// Stats summarizes the store
type Stats struct {
	Total     int `json:"total"`
	Activated int `json:"activated"`
	Revoked   int `json:"revoked"`
	Expired   int `json:"expired"`
}

// Stats returns counts over the stored licenses
func (m *Manager) Stats() Stats {
	now := m.now().UTC()
	var stats Stats
	for _, l := range m.store.List() {
		stats.Total++
		if l.Used {
			stats.Activated++
		}
		if !l.Active {
			stats.Revoked++
		}
		if l.Expired(now) {
			stats.Expired++
		}
	}
	return stats
}

// lookup normalizes and validates a code, then checks liveness
func (m *Manager) lookup(code string) (*License, error) {
	code = NormalizeCode(code)
	if err := ValidateCodeFormat(code); err != nil {
		return nil, err
	}

	l := m.store.Get(code)
	if l == nil {
		return nil, ErrNotFound
	}
	if !l.Active {
		return nil, ErrRevoked
	}
	if l.Expired(m.now().UTC()) {
		return nil, ErrExpired
	}
	return l, nil
}

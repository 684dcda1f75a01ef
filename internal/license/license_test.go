package license

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "licenses.json"))
	require.NoError(t, err)
	return NewManager(store)
}

func TestGenerateCode_Format(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.NoError(t, ValidateCodeFormat(code))
		assert.Len(t, code, 18) // GNP-XXXX-XXXX-XXXX
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "I")
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "1")
	}
}

func TestValidateCodeFormat(t *testing.T) {
	assert.NoError(t, ValidateCodeFormat("GNP-ABCD-EFGH-JKLM"))
	assert.Error(t, ValidateCodeFormat("GNP-ABCD-EFGH"))
	assert.Error(t, ValidateCodeFormat("XYZ-ABCD-EFGH-JKLM"))
	assert.Error(t, ValidateCodeFormat("GNP-AB!D-EFGH-JKLM"))
	assert.Error(t, ValidateCodeFormat(""))
}

func TestPlanDays(t *testing.T) {
	assert.Equal(t, 3, PlanTrial.Days())
	assert.Equal(t, 5, PlanStarter.Days())
	assert.Equal(t, 30, PlanMonthly.Days())
	assert.Equal(t, 0, PlanLifetime.Days())
}

func TestCreate_SetsExpiryFromPlan(t *testing.T) {
	manager := newTestManager(t)

	l, err := manager.Create(PlanTrial, "alice", "")
	require.NoError(t, err)
	require.NotNil(t, l.ExpiresAt)
	assert.WithinDuration(t, l.CreatedAt.AddDate(0, 0, 3), *l.ExpiresAt, time.Second)
	assert.True(t, l.Active)
	assert.False(t, l.Used)

	lifetime, err := manager.Create(PlanLifetime, "", "")
	require.NoError(t, err)
	assert.Nil(t, lifetime.ExpiresAt)
}

func TestCreate_RejectsUnknownPlan(t *testing.T) {
	manager := newTestManager(t)
	_, err := manager.Create(Plan("quarterly"), "", "")
	assert.Error(t, err)
}

func TestActivate_BindsToFirstDevice(t *testing.T) {
	manager := newTestManager(t)
	l, err := manager.Create(PlanMonthly, "", "")
	require.NoError(t, err)

	activated, err := manager.Activate(l.Key, "device-a")
	require.NoError(t, err)
	assert.True(t, activated.Used)
	assert.Equal(t, "device-a", activated.DeviceID)
	assert.NotNil(t, activated.ActivatedAt)

	// Same device re-activates fine
	_, err = manager.Activate(l.Key, "device-a")
	assert.NoError(t, err)

	// Another device is rejected
	_, err = manager.Activate(l.Key, "device-b")
	assert.ErrorIs(t, err, ErrDeviceMismatch)
}

func TestActivate_UnknownAndRevoked(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.Activate("GNP-ABCD-EFGH-JKLM", "device-a")
	assert.ErrorIs(t, err, ErrNotFound)

	l, err := manager.Create(PlanMonthly, "", "")
	require.NoError(t, err)
	require.NoError(t, manager.Revoke(l.Key))

	_, err = manager.Activate(l.Key, "device-a")
	assert.ErrorIs(t, err, ErrRevoked)

	require.NoError(t, manager.Reinstate(l.Key))
	_, err = manager.Activate(l.Key, "device-a")
	assert.NoError(t, err)
}

func TestVerify_ExpiredLicense(t *testing.T) {
	manager := newTestManager(t)
	l, err := manager.Create(PlanTrial, "", "")
	require.NoError(t, err)

	manager.now = func() time.Time { return time.Now().AddDate(0, 0, 4) }
	_, err = manager.Verify(l.Key, "device-a")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestExtend(t *testing.T) {
	manager := newTestManager(t)
	l, err := manager.Create(PlanTrial, "", "")
	require.NoError(t, err)
	originalExpiry := *l.ExpiresAt

	extended, err := manager.Extend(l.Key, 7)
	require.NoError(t, err)
	assert.WithinDuration(t, originalExpiry.AddDate(0, 0, 7), *extended.ExpiresAt, time.Second)

	lifetime, err := manager.Create(PlanLifetime, "", "")
	require.NoError(t, err)
	_, err = manager.Extend(lifetime.Key, 7)
	assert.ErrorIs(t, err, ErrNotLifetime)
}

func TestExtend_ExpiredExtendsFromNow(t *testing.T) {
	manager := newTestManager(t)
	l, err := manager.Create(PlanTrial, "", "")
	require.NoError(t, err)

	future := time.Now().AddDate(0, 0, 10).UTC()
	manager.now = func() time.Time { return future }

	extended, err := manager.Extend(l.Key, 5)
	require.NoError(t, err)
	assert.WithinDuration(t, future.AddDate(0, 0, 5), *extended.ExpiresAt, time.Second)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licenses.json")
	store, err := NewStore(path)
	require.NoError(t, err)
	manager := NewManager(store)

	l, err := manager.Create(PlanMonthly, "bob", "vip customer")
	require.NoError(t, err)
	_, err = manager.Activate(l.Key, "device-a")
	require.NoError(t, err)

	reopened, err := NewStore(path)
	require.NoError(t, err)
	loaded := reopened.Get(l.Key)
	require.NotNil(t, loaded)
	assert.Equal(t, "bob", loaded.UserName)
	assert.Equal(t, "device-a", loaded.DeviceID)
	assert.True(t, loaded.Used)
}

func TestStats(t *testing.T) {
	manager := newTestManager(t)

	a, _ := manager.Create(PlanMonthly, "", "")
	b, _ := manager.Create(PlanTrial, "", "")
	_, _ = manager.Create(PlanLifetime, "", "")

	_, err := manager.Activate(a.Key, "device-a")
	require.NoError(t, err)
	require.NoError(t, manager.Revoke(b.Key))

	stats := manager.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Activated)
	assert.Equal(t, 1, stats.Revoked)
	assert.Equal(t, 0, stats.Expired)
}

func TestCreateBatch(t *testing.T) {
	manager := newTestManager(t)

	batch, err := manager.CreateBatch(PlanStarter, 5, "promo")
	require.NoError(t, err)
	assert.Len(t, batch, 5)

	seen := make(map[string]bool)
	for _, l := range batch {
		assert.False(t, seen[l.Key], "duplicate key %s", l.Key)
		seen[l.Key] = true
	}
}

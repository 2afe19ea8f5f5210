package sessionstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_IDTokenLifecycle(t *testing.T) {
	t.Parallel()
	s := openTemp(t)

	require.NoError(t, s.SaveIDToken(7, "tok", time.Now().Add(time.Hour)))
	got, err := s.GetIDToken(7)
	require.NoError(t, err)
	require.Equal(t, "tok", got)

	require.NoError(t, s.DeleteIDToken(7))
	_, err = s.GetIDToken(7)
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine.
	require.NoError(t, s.DeleteIDToken(7))
}

func TestStore_SaveExpiredToken(t *testing.T) {
	t.Parallel()
	s := openTemp(t)

	require.Error(t, s.SaveIDToken(1, "old", time.Now().Add(-time.Minute)))
}

func TestStore_ContextRoundTripAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := Open(path)
	require.NoError(t, err)

	_, err = s.LoadContext(3)
	require.ErrorIs(t, err, ErrNotFound)

	campaign := 12
	want := AppContext{Role: "Manager", AccountID: 4, SidebarCollapsed: true, Theme: ThemeDark, SelectedCampaignID: &campaign}
	require.NoError(t, s.SaveContext(3, want))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.LoadContext(3)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestAppContext_Apply(t *testing.T) {
	t.Parallel()

	campaign := 5
	base := DefaultContext("Admin", 1)
	base.SelectedCampaignID = &campaign

	dark := ThemeDark
	collapsed := true
	got, err := base.Apply(ContextPatch{Theme: &dark, SidebarCollapsed: &collapsed})
	require.NoError(t, err)
	require.Equal(t, ThemeDark, got.Theme)
	require.True(t, got.SidebarCollapsed)
	require.Equal(t, &campaign, got.SelectedCampaignID)

	other := 2
	got, err = got.Apply(ContextPatch{AccountID: &other})
	require.NoError(t, err)
	require.Equal(t, 2, got.AccountID)
	require.Nil(t, got.SelectedCampaignID)

	bad := "neon"
	_, err = got.Apply(ContextPatch{Theme: &bad})
	require.Error(t, err)

	got, err = got.Apply(ContextPatch{SelectedCampaignID: &campaign})
	require.NoError(t, err)
	got, err = got.Apply(ContextPatch{ClearCampaign: true})
	require.NoError(t, err)
	require.Nil(t, got.SelectedCampaignID)
}

package statestore

import (
	"context"
	"testing"
	"time"

	"ticketwatch-backend/internal/checker"
	"ticketwatch-backend/lib/testutil"
	"ticketwatch-backend/lib/timezone"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) Store {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "statestore",
		DbSchema: Schema,
	})
	t.Cleanup(cleanup)
	return New(res.DB)
}

func TestLoadDefaultsOnEmptyDatabase(t *testing.T) {
	store := setup(t)

	state, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, checker.DefaultState(), state)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	checkedAt := time.Unix(1787000000, 0).In(timezone.Location)
	state := checker.State{
		LastStatus:     checker.StatusAvailable,
		LastCheckedAt:  checkedAt,
		LastNotifiedAt: checkedAt,
		OpenDates:      []string{"20260901", "20260912"},
	}

	err := store.Save(ctx, checker.Decision{
		ShouldNotify: true,
		NewState:     state,
	}, checker.Result{
		Status:     checker.StatusAvailable,
		FetchedAt:  checkedAt,
		TextSample: "受付中",
	})
	require.NoError(t, err)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(state, loaded, cmpopts.EquateEmpty()))
}

func TestSaveOverwritesPriorState(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	first := checker.State{
		LastStatus:    checker.StatusSoldOut,
		LastCheckedAt: time.Unix(1787000000, 0),
	}
	err := store.Save(ctx, checker.Decision{NewState: first},
		checker.Result{Status: checker.StatusSoldOut, FetchedAt: first.LastCheckedAt})
	require.NoError(t, err)

	second := checker.State{
		LastStatus:    checker.StatusAvailable,
		LastCheckedAt: time.Unix(1787003600, 0),
	}
	err = store.Save(ctx, checker.Decision{NewState: second},
		checker.Result{Status: checker.StatusAvailable, FetchedAt: second.LastCheckedAt})
	require.NoError(t, err)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, checker.StatusAvailable, loaded.LastStatus)
	require.Equal(t, second.LastCheckedAt.Unix(), loaded.LastCheckedAt.Unix())
	// never notified, both writes kept the zero value
	require.True(t, loaded.LastNotifiedAt.IsZero())
}

func TestHistory(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	times := []int64{1787000000, 1787003600, 1787007200}
	statuses := []checker.Status{
		checker.StatusSoldOut,
		checker.StatusSoldOut,
		checker.StatusAvailable,
	}
	for i := range times {
		err := store.Save(ctx, checker.Decision{
			ShouldNotify: statuses[i] == checker.StatusAvailable,
			NewState: checker.State{
				LastStatus:    statuses[i],
				LastCheckedAt: time.Unix(times[i], 0),
			},
		}, checker.Result{
			Status:     statuses[i],
			FetchedAt:  time.Unix(times[i], 0),
			TextSample: "sample",
		})
		require.NoError(t, err)
	}

	entries, err := store.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// newest first
	require.Equal(t, checker.StatusAvailable, entries[0].Status)
	require.True(t, entries[0].Notified)
	require.Equal(t, checker.StatusSoldOut, entries[1].Status)
	require.False(t, entries[1].Notified)
	require.Equal(t, "sample", entries[0].Sample)
}

func TestLoadDowngradesCorruptOpenDates(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "statestore",
		DbSchema: Schema,
	})
	t.Cleanup(cleanup)
	store := New(res.DB)
	ctx := context.Background()

	err := store.Save(ctx, checker.Decision{
		NewState: checker.State{
			LastStatus:    checker.StatusAvailable,
			LastCheckedAt: time.Unix(1787000000, 0),
			OpenDates:     []string{"20260901"},
		},
	}, checker.Result{Status: checker.StatusAvailable, FetchedAt: time.Unix(1787000000, 0)})
	require.NoError(t, err)

	_, err = res.DB.ExecContext(ctx, `UPDATE check_state SET open_dates = '{broken'`)
	require.NoError(t, err)

	state, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, checker.StatusAvailable, state.LastStatus)
	require.Empty(t, state.OpenDates)
}

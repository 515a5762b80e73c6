package cmd

import (
	"context"
	"fmt"

	"github.com/naviya/naviya/internal/dashboard"
	"github.com/naviya/naviya/internal/features"
	"github.com/naviya/naviya/internal/session"
)

// requireFeature refuses a gated command until the dashboard lattice
// has unlocked the feature. A user the backend has never seen gets the
// default record, where only the mentor is open.
func requireFeature(ctx context.Context, a *app, user session.Identity, key features.Key) error {
	st, err := a.Client.DashboardSnapshot(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("check feature access: %w", err)
	}
	if st == nil {
		st = dashboard.DefaultState(user.ID)
	}
	if st.FlagFor(key) {
		return nil
	}
	f, ok := features.Lookup(key)
	if !ok {
		return fmt.Errorf("unknown feature %q", key)
	}
	return fmt.Errorf("%s is locked: %s", f.Title, f.LockReason)
}

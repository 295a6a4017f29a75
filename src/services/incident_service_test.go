package services_test

import (
	"context"
	"testing"

	"inventory/src/models"
	"inventory/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncidents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	asset, err := env.assets.Create(ctx, admin, services.AssetFields{Label: strPtr("Van"), SerialNo: strPtr("VAN-7"), Category: strPtr("Vehicles")})
	require.NoError(t, err)

	incident, err := env.incidents.Report(ctx, user, asset.ID, services.IncidentReport{
		Type:        models.IncidentDamage,
		Description: "  dented bumper ",
		Location:    "parking lot",
	})
	require.NoError(t, err)

	t.Run("should open the incident with defaults and asset details", func(t *testing.T) {
		assert.Equal(t, models.IncidentOpen, incident.Status)
		assert.Equal(t, models.SeverityMedium, incident.Severity)
		assert.Equal(t, "dented bumper", incident.Description)
		assert.Equal(t, "user@example.com", incident.ReportedBy)
		assert.Equal(t, "Van", incident.AssetLabel)
		assert.Equal(t, "VAN-7", *incident.AssetSerialNo)
		assert.Equal(t, "Vehicles", *incident.CategoryName)
		assert.Nil(t, incident.ResolvedAt)
	})

	t.Run("should validate reports", func(t *testing.T) {
		_, err := env.incidents.Report(ctx, models.Actor{}, asset.ID, services.IncidentReport{Type: models.IncidentLoss, Description: "x"})
		assert.ErrorIs(t, err, services.ErrForbidden)
		_, err = env.incidents.Report(ctx, user, asset.ID, services.IncidentReport{Type: "flood", Description: "x"})
		assert.ErrorIs(t, err, services.ErrInvalidInput)
		_, err = env.incidents.Report(ctx, user, asset.ID, services.IncidentReport{Type: models.IncidentLoss, Severity: "extreme", Description: "x"})
		assert.ErrorIs(t, err, services.ErrInvalidInput)
		_, err = env.incidents.Report(ctx, user, asset.ID, services.IncidentReport{Type: models.IncidentLoss})
		assert.ErrorIs(t, err, services.ErrInvalidInput)
		_, err = env.incidents.Report(ctx, user, 999, services.IncidentReport{Type: models.IncidentLoss, Description: "x"})
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("should not change the asset status", func(t *testing.T) {
		assert.Equal(t, models.AssetStatusInStock, env.status(t, asset.ID))
		assert.Len(t, env.events(t, asset.ID), 1)
	})

	t.Run("should stamp and clear resolved_at", func(t *testing.T) {
		_, err := env.incidents.UpdateStatus(ctx, user, incident.ID, models.IncidentResolved)
		assert.ErrorIs(t, err, services.ErrForbidden)

		progressed, err := env.incidents.UpdateStatus(ctx, admin, incident.ID, models.IncidentInProgress)
		require.NoError(t, err)
		assert.Nil(t, progressed.ResolvedAt)

		resolved, err := env.incidents.UpdateStatus(ctx, admin, incident.ID, models.IncidentResolved)
		require.NoError(t, err)
		require.NotNil(t, resolved.ResolvedAt)

		closed, err := env.incidents.UpdateStatus(ctx, admin, incident.ID, models.IncidentClosed)
		require.NoError(t, err)
		require.NotNil(t, closed.ResolvedAt)
		assert.True(t, resolved.ResolvedAt.Equal(*closed.ResolvedAt))

		reopened, err := env.incidents.UpdateStatus(ctx, admin, incident.ID, models.IncidentOpen)
		require.NoError(t, err)
		assert.Nil(t, reopened.ResolvedAt)

		_, err = env.incidents.UpdateStatus(ctx, admin, incident.ID, "done")
		assert.ErrorIs(t, err, services.ErrInvalidInput)
		_, err = env.incidents.UpdateStatus(ctx, admin, 999, models.IncidentClosed)
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("should assign and unassign", func(t *testing.T) {
		assigned, err := env.incidents.Assign(ctx, admin, incident.ID, "Fleet Team <fleet@x.org>")
		require.NoError(t, err)
		assert.Equal(t, "Fleet Team", *assigned.AssignedTo)
		assert.Equal(t, "fleet@x.org", *assigned.AssignedToEmail)

		_, err = env.incidents.Assign(ctx, admin, incident.ID, "Fleet <broken")
		assert.ErrorIs(t, err, services.ErrInvalidAssignee)

		cleared, err := env.incidents.Assign(ctx, admin, incident.ID, "")
		require.NoError(t, err)
		assert.Nil(t, cleared.AssignedTo)
		assert.Nil(t, cleared.AssignedToEmail)
	})

	t.Run("should list with filters", func(t *testing.T) {
		_, err := env.incidents.Report(ctx, admin, asset.ID, services.IncidentReport{Type: models.IncidentTheft, Severity: models.SeverityCritical, Description: "stolen mirror"})
		require.NoError(t, err)

		all, err := env.incidents.List(ctx, models.IncidentFilter{AssetID: &asset.ID})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		critical, err := env.incidents.List(ctx, models.IncidentFilter{Severity: models.SeverityCritical})
		require.NoError(t, err)
		require.Len(t, critical, 1)
		assert.Equal(t, models.IncidentTheft, critical[0].IncidentType)
	})

	t.Run("should audit every change", func(t *testing.T) {
		entries, err := env.audit.List(ctx, admin, models.AuditFilter{EntityType: models.EntityIncident, EntityID: "1"})
		require.NoError(t, err)
		// reported, three status changes and a reopen, two assignments
		assert.Len(t, entries, 7)
	})
}

func TestAuditListRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.createAsset(t, "Anything")

	_, err := env.audit.List(context.Background(), user, models.AuditFilter{})
	assert.ErrorIs(t, err, services.ErrForbidden)

	entries, err := env.audit.List(context.Background(), admin, models.AuditFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditAssetCreated, entries[0].Action)
	assert.Equal(t, "1", *entries[0].EntityID)
}

package service

import (
	"context"
	"testing"

	"sistramite/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessCounts(t *testing.T) {
	db := newTestDB(t)
	processSvc := newProcessService(db)
	user := seedUser(t, db, "maria", false)

	first := createProcess(t, db, processSvc, "00112-00012345/2026-11", user)
	_, err := processSvc.RecordMovement(context.Background(), first.ID, RecordMovementRequest{
		NewStatus: "Atendido",
		Date:      "2026-02-14",
		UserID:    user.ID.String(),
	})
	require.NoError(t, err)

	second := validProcessRequest(t, db, "22222-00054321/2026-07", user)
	second.InitialStatus = "Enviado à Diretoria de Obras"
	second.DestinationDirectorate = "Diretoria de Obras - DO"
	_, err = processSvc.CreateProcess(context.Background(), user.ID, second)
	require.NoError(t, err)

	third := validProcessRequest(t, db, "33333-00011111/2026-03", user)
	third.InitialStatus = "Improcedente – tramitação via SGIA"
	_, err = processSvc.CreateProcess(context.Background(), user.ID, third)
	require.NoError(t, err)

	svc := NewDashboardService(repository.NewProcessRepository(db))
	counts, err := svc.ProcessCounts(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 3, counts.Total)
	assert.EqualValues(t, 1, counts.Attended)
	assert.EqualValues(t, 2, counts.CitiesDirectorate)
	assert.EqualValues(t, 1, counts.WorksDirectorate)
	assert.EqualValues(t, 0, counts.PlanningDirectorate)
	assert.EqualValues(t, 1, counts.Unfounded)
	assert.EqualValues(t, 0, counts.ReturnedToRegion)
	assert.EqualValues(t, 0, counts.Ombudsman)
}

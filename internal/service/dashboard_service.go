package service

import (
	"context"

	"sistramite/internal/model"
	"sistramite/internal/repository"
)

// DashboardService computes the fixed counters of the operational dashboard.
type DashboardService interface {
	ProcessCounts(ctx context.Context) (*model.ProcessDashboard, error)
}

type dashboardService struct {
	repo repository.ProcessRepository
}

func NewDashboardService(repo repository.ProcessRepository) DashboardService {
	return &dashboardService{repo: repo}
}

// Each card is an independent count over the processes table; the predicates
// are fixed and match the wording of the seeded status catalog.
func (s *dashboardService) ProcessCounts(ctx context.Context) (*model.ProcessDashboard, error) {
	type card struct {
		dst   *int64
		query string
		args  []interface{}
	}

	d := &model.ProcessDashboard{}
	cards := []card{
		{&d.Total, "", nil},
		{&d.Attended, "current_status = ?", []interface{}{"Atendido"}},
		{&d.CitiesDirectorate, "destination_directorate = ?", []interface{}{"Diretoria das Cidades - DC"}},
		{&d.WorksDirectorate, "destination_directorate = ?", []interface{}{"Diretoria de Obras - DO"}},
		{&d.PlanningDirectorate, "destination_directorate = ?", []interface{}{"Diretoria de Planejamento e Projetos - DP"}},
		{&d.Unfounded, "current_status LIKE ?", []interface{}{"%Improcedente%"}},
		{&d.ReturnedToRegion, "current_status LIKE ?", []interface{}{"%Devolvido à RA%"}},
		{&d.Urgent, "current_status = ?", []interface{}{"Solicitação de urgência"}},
		{&d.ExecutionDeadline, "current_status = ?", []interface{}{"Solicitação de prazo de execução"}},
		{&d.Ombudsman, "current_status = ?", []interface{}{"Processo oriundo de Ouvidoria"}},
	}

	for _, c := range cards {
		n, err := s.repo.CountWhere(ctx, c.query, c.args...)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return d, nil
}

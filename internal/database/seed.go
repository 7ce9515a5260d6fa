package database

import (
	"sistramite/internal/model"

	"gorm.io/gorm"
)

type statusSeed struct {
	description string
	order       int
	final       bool
}

var statusCatalog = []statusSeed{
	{"Devolvido à RA de origem – adequação de requisitos", 1, false},
	{"Devolvido à RA de origem – parecer técnico de outro órgão", 2, false},
	{"Devolvido à RA de origem – serviço com contrato de natureza continuada pela DC/DO", 3, false},
	{"Devolvido à RA de origem – implantação", 4, false},
	{"Enviado à Diretoria das Cidades", 5, false},
	{"Enviado à Diretoria de Obras", 6, false},
	{"Improcedente – tramitação via SGIA", 7, false},
	{"Improcedente – tramita por órgão diferente da NOVACAP", 8, false},
	{"Encerrado pela RA de origem", 9, true},
	{"Atendido", 10, true},
}

var regionCatalog = [][2]string{
	{"RA I", "Plano Piloto"}, {"RA II", "Gama"}, {"RA III", "Taguatinga"},
	{"RA IV", "Brazlândia"}, {"RA V", "Sobradinho"}, {"RA VI", "Planaltina"},
	{"RA VII", "Paranoá"}, {"RA VIII", "Núcleo Bandeirante"}, {"RA IX", "Ceilândia"},
	{"RA X", "Guará"}, {"RA XI", "Cruzeiro"}, {"RA XII", "Samambaia"},
	{"RA XIII", "Santa Maria"}, {"RA XIV", "São Sebastião"}, {"RA XV", "Recanto das Emas"},
	{"RA XVI", "Lago Sul"}, {"RA XVII", "Riacho Fundo"}, {"RA XVIII", "Lago Norte"},
	{"RA XIX", "Candangolândia"}, {"RA XX", "Águas Claras"}, {"RA XXI", "Riacho Fundo II"},
	{"RA XXII", "Sudoeste/Octogonal"}, {"RA XXIII", "Varjão"}, {"RA XXIV", "Park Way"},
	{"RA XXV", "SCIA – Estrutural"}, {"RA XXVI", "Sobradinho II"}, {"RA XXVII", "Jardim Botânico"},
	{"RA XXVIII", "Itapoã"}, {"RA XXIX", "SIA"}, {"RA XXX", "Vicente Pires"},
	{"RA XXXI", "Fercal"}, {"RA XXXII", "Sol Nascente/Pôr do Sol"}, {"RA XXXIII", "Arniqueira"},
	{"RA XXXIV", "Arapoanga"}, {"RA XXXV", "Água Quente"},
}

var demandTypeCatalog = []string{"Implantação", "Indivíduo Arbóreo", "Zeladoria"}

var directorateCatalog = [][2]string{
	{"Diretoria das Cidades - DC", "DC"},
	{"Diretoria de Obras - DO", "DO"},
	{"Diretoria de Planejamento e Projetos - DP", "DP"},
	{"Diretoria de Suporte - DS", "DS"},
}

// department name -> directorate display name
var departmentCatalog = [][2]string{
	{"Departamento de Parques e Jardins", "DC"},
	{"Departamento de Conservação Urbana", "DC"},
	{"Departamento de Águas Pluviais", "DO"},
	{"Departamento de Pavimentação e Obras Viárias", "DO"},
	{"Departamento de Projetos Urbanos", "DP"},
}

// demand description -> department name
var demandCatalog = [][2]string{
	{"Alambrado (Cercamento)", "Departamento de Conservação Urbana"},
	{"Doação de Mudas", "Departamento de Parques e Jardins"},
	{"Jardim", "Departamento de Parques e Jardins"},
	{"Mato Alto", "Departamento de Parques e Jardins"},
	{"Meio-fio", "Departamento de Conservação Urbana"},
	{"Parque Infantil", "Departamento de Conservação Urbana"},
	{"Pista de Skate", "Departamento de Conservação Urbana"},
	{"Poda / Supressão de Árvore", "Departamento de Parques e Jardins"},
	{"Ponto de Encontro Comunitário (PEC)", "Departamento de Conservação Urbana"},
	{"Praça", "Departamento de Conservação Urbana"},
	{"Quadra de Esporte", "Departamento de Conservação Urbana"},
	{"Tapa-buraco", "Departamento de Conservação Urbana"},
	{"Boca de Lobo", "Departamento de Águas Pluviais"},
	{"Bueiro", "Departamento de Águas Pluviais"},
	{"Galeria de Águas Pluviais", "Departamento de Águas Pluviais"},
	{"Calçada", "Departamento de Pavimentação e Obras Viárias"},
	{"Estacionamentos", "Departamento de Pavimentação e Obras Viárias"},
	{"Passagem Subterrânea", "Departamento de Pavimentação e Obras Viárias"},
	{"Passarela", "Departamento de Pavimentação e Obras Viárias"},
	{"Pisos Articulados", "Departamento de Pavimentação e Obras Viárias"},
	{"Rampa", "Departamento de Pavimentação e Obras Viárias"},
	{"Rua, Via ou Rodovia (Pista)", "Departamento de Pavimentação e Obras Viárias"},
	{"Limpeza de Resíduos da Novacap", "Departamento de Pavimentação e Obras Viárias"},
	{"Ciclovia ou Ciclofaixa (pista)", "Departamento de Pavimentação e Obras Viárias"},
}

// Seed inserts the reference catalogs (statuses, regions, demand types,
// department/directorate hierarchy, demands) if they are not present yet.
// Safe to run on every startup.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, s := range statusCatalog {
			st := model.Status{Description: s.description, DisplayOrder: s.order, Final: s.final}
			if err := tx.Where("description = ?", s.description).FirstOrCreate(&st).Error; err != nil {
				return err
			}
		}

		for _, r := range regionCatalog {
			region := model.AdministrativeRegion{
				Code:        r[0],
				Name:        r[1],
				Description: r[1] + " (" + r[0] + ")",
			}
			if err := tx.Where("code = ?", r[0]).FirstOrCreate(&region).Error; err != nil {
				return err
			}
		}

		for _, d := range demandTypeCatalog {
			dt := model.DemandType{Description: d}
			if err := tx.Where("description = ?", d).FirstOrCreate(&dt).Error; err != nil {
				return err
			}
		}

		directorates := make(map[string]model.Directorate, len(directorateCatalog))
		for _, d := range directorateCatalog {
			dir := model.Directorate{FullName: d[0], DisplayName: d[1]}
			if err := tx.Where("display_name = ?", d[1]).FirstOrCreate(&dir).Error; err != nil {
				return err
			}
			directorates[d[1]] = dir
		}

		departments := make(map[string]model.Department, len(departmentCatalog))
		for _, d := range departmentCatalog {
			dep := model.Department{Name: d[0], DirectorateID: directorates[d[1]].ID}
			if err := tx.Where("name = ?", d[0]).FirstOrCreate(&dep).Error; err != nil {
				return err
			}
			departments[d[0]] = dep
		}

		for _, d := range demandCatalog {
			dem := model.Demand{Description: d[0], DepartmentID: departments[d[1]].ID}
			if err := tx.Where("description = ?", d[0]).FirstOrCreate(&dem).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

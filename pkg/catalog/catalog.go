// Package catalog is the static lookup of known dataset codes on the
// archive. It only produces path strings; enumeration and fetching are
// the vfs and download packages' jobs.
package catalog

import (
	"sort"
	"strings"
)

// Dataset describes one information system published on the archive
// and the sub-paths, relative to the archive base, where its files
// live.
type Dataset struct {
	Code        string
	Name        string
	Description string
	Paths       []string
}

var datasets = map[string]Dataset{
	"SIA": {
		Code:        "SIA",
		Name:        "Sistema de Informações Ambulatoriais",
		Description: "Ambulatory care production records of the SUS.",
		Paths:       []string{"/SIASUS/199407_200712/Dados", "/SIASUS/200801_/Dados"},
	},
	"SIH": {
		Code:        "SIH",
		Name:        "Sistema de Informações Hospitalares",
		Description: "Hospital admission records of the SUS.",
		Paths:       []string{"/SIHSUS/199201_200712/Dados", "/SIHSUS/200801_/Dados"},
	},
	"SIM": {
		Code:        "SIM",
		Name:        "Sistema de Informações sobre Mortalidade",
		Description: "Mortality records, CID-9 and CID-10 codings.",
		Paths:       []string{"/SIM/CID9/DORES", "/SIM/CID10/DORES", "/SIM/PRELIM/DORES"},
	},
	"SINASC": {
		Code:        "SINASC",
		Name:        "Sistema de Informações sobre Nascidos Vivos",
		Description: "Live birth records.",
		Paths:       []string{"/SINASC/1994_1995/Dados/DNRES", "/SINASC/1996_/Dados/DNRES", "/SINASC/PRELIM/DNRES"},
	},
	"CNES": {
		Code:        "CNES",
		Name:        "Cadastro Nacional de Estabelecimentos de Saúde",
		Description: "National registry of health establishments.",
		Paths:       []string{"/CNES/200508_/Dados"},
	},
	"SINAN": {
		Code:        "SINAN",
		Name:        "Sistema de Informação de Agravos de Notificação",
		Description: "Notifiable disease records.",
		Paths:       []string{"/SINAN/DADOS/FINAIS", "/SINAN/DADOS/PRELIM"},
	},
	"PNI": {
		Code:        "PNI",
		Name:        "Programa Nacional de Imunizações",
		Description: "Immunization coverage records.",
		Paths:       []string{"/PNI/DADOS"},
	},
	"CIH": {
		Code:        "CIH",
		Name:        "Comunicação de Internação Hospitalar",
		Description: "Hospital admissions communicated to the SUS before CIHA.",
		Paths:       []string{"/CIH/200801_201012/Dados"},
	},
	"CIHA": {
		Code:        "CIHA",
		Name:        "Comunicação de Internação Hospitalar e Ambulatorial",
		Description: "Supplementary hospital and ambulatory admissions.",
		Paths:       []string{"/CIHA/201101_/Dados"},
	},
	"SISCOLO": {
		Code:        "SISCOLO",
		Name:        "Sistema de Informação do Câncer do Colo do Útero",
		Description: "Cervical cancer screening records.",
		Paths:       []string{"/SISCAN/SISCOLO4/Dados"},
	},
	"SISMAMA": {
		Code:        "SISMAMA",
		Name:        "Sistema de Informação do Câncer de Mama",
		Description: "Breast cancer screening records.",
		Paths:       []string{"/SISCAN/SISMAMA/Dados"},
	},
	"IBGE": {
		Code:        "IBGE",
		Name:        "IBGE DataSUS",
		Description: "Resident population estimates, censuses and intercensal projections.",
		Paths:       []string{"/IBGE/POP", "/IBGE/POPTCU", "/IBGE/censo", "/IBGE/projpop"},
	},
	"SISPRENATAL": {
		Code:        "SISPRENATAL",
		Name:        "Sistema de Monitoramento e Avaliação do Pré-Natal",
		Description: "Prenatal, delivery and postpartum care monitoring records.",
		Paths:       []string{"/SISPRENATAL/201201_/Dados"},
	},
	"RESP": {
		Code:        "RESP",
		Name:        "Registro de Eventos em Saúde Pública",
		Description: "Public health event registry.",
		Paths:       []string{"/RESP/DADOS"},
	},
}

// Lookup returns the dataset for code, if known. Codes are matched
// case-insensitively.
func Lookup(code string) (Dataset, bool) {
	d, ok := datasets[strings.ToUpper(code)]
	return d, ok
}

// Codes returns every known dataset code, sorted.
func Codes() []string {
	codes := make([]string, 0, len(datasets))
	for code := range datasets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

package stats

// MaturityScore is a rough 0-100 heuristic of how complete an API design is.
type MaturityScore struct {
	Versioning      int `json:"versioning" yaml:"versioning"`
	Authentication  int `json:"authentication" yaml:"authentication"`
	QueryParameters int `json:"query_parameters" yaml:"query_parameters"`
	CRUD            int `json:"crud" yaml:"crud"`
	Total           int `json:"total" yaml:"total"`
}

// Category maxima.
const (
	MaxVersioning      = 20
	MaxAuthentication  = 20
	MaxQueryParameters = 20
	MaxCRUD            = 40
)

// richQueryParameters is the distinct-name count above which query support
// scores full marks.
const richQueryParameters = 5

// Maturity scores s.
func Maturity(s Stats) MaturityScore {
	var m MaturityScore

	m.Versioning = 10
	if s.ByVersion.Len() > 1 {
		m.Versioning = MaxVersioning
	}

	if len(s.AuthTypesObserved) > 0 {
		m.Authentication = MaxAuthentication
	}

	m.QueryParameters = 10
	if s.QueryParameterFrequency.Len() > richQueryParameters {
		m.QueryParameters = MaxQueryParameters
	}

	for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
		if s.ByMethod.Get(method) > 0 {
			m.CRUD += 10
		}
	}

	m.Total = m.Versioning + m.Authentication + m.QueryParameters + m.CRUD
	return m
}

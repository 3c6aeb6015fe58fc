package resource

type Visibility string

const (
	VisibilityOrg  Visibility = "ORG"
	VisibilityTeam Visibility = "TEAM"
)

var AllVisibilities = []Visibility{
	VisibilityOrg,
	VisibilityTeam,
}

func (v Visibility) IsValid() bool {
	for _, value := range AllVisibilities {
		if v == value {
			return true
		}
	}
	return false
}

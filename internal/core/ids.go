package core

import (
	"fmt"
	"strings"

	"propdesk/pkg/domain"

	"github.com/google/uuid"
)

var idPrefixes = map[domain.EntityType]string{
	domain.EntityProposition:     "proposition",
	domain.EntityTheoryOfChange:  "theory",
	domain.EntityObjective:       "objective",
	domain.EntityResult:          "result",
	domain.EntityActivity:        "activity",
	domain.EntityTargetAudience:  "audience",
	domain.EntityRisk:            "risk",
	domain.EntityActionPlanEntry: "plan",
	domain.EntityBudgetLine:      "budget",
	domain.EntityCommunication:   "communication",
	domain.EntityCapitalization:  "capitalization",
}

// IDPrefix returns the identifier prefix used for records of type t.
func IDPrefix(t domain.EntityType) string {
	if p, ok := idPrefixes[t]; ok {
		return p
	}
	return string(t)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// newID builds <prefix>_<unix-millis>_<random> and retries until the id is
// unused within the collection.
func (e *Engine) newID(s domain.Snapshot, t domain.EntityType) string {
	for {
		id := fmt.Sprintf("%s_%d_%s", IDPrefix(t), e.clock.Now().UnixMilli(), e.suffix())
		if !s.Contains(t, id) {
			return id
		}
	}
}

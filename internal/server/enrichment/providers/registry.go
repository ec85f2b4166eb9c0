package providers

import (
	"github.com/dmitrijs2005/casegraph/internal/server/enrichment"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

// NewRegistry wires every adapter to the kind it covers. The first adapter
// listed for a kind is its default.
func NewRegistry(deps Deps) enrichment.Registry {
	deps = deps.withDefaults()
	return enrichment.Registry{
		models.KindIP:     {NewAbuseIPDB(deps), NewShodan(deps)},
		models.KindDomain: {NewWhoisXML(deps)},
		models.KindURL:    {NewURLScan(deps)},
		models.KindHash:   {NewVirusTotal(deps)},
		models.KindEmail:  {NewHunter(deps)},
		models.KindPhone:  {NewNumVerify(deps)},
	}
}

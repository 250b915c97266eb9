package passageway

import (
	"encoding/json"

	"barracuda/internal/app/confighandlers"
)

// stateDTO is the JSON wire shape for one passageway's live state,
// returned by GET adcm/passageway.
type stateDTO struct {
	ID           int    `json:"id"`
	AccessPoints []int  `json:"access_points"`
	State        string `json:"state"`
}

// RegisterHandlers binds the read-only adcm/passageway route onto r.
// Passageway topology is fixed for the life of the process (see
// App.armFileWatches), so this route only reports live FSM state - it has
// no PUT/DELETE counterpart.
func RegisterHandlers(r *confighandlers.Registry, drivers []*Driver) error {
	return r.Register("GET", "adcm/passageway", confighandlers.HandlerFunc(func(body []byte) ([]byte, error) {
		return driverStates(drivers)
	}))
}

func driverStates(drivers []*Driver) ([]byte, error) {
	if len(drivers) == 0 {
		return nil, nil
	}

	dtos := make([]stateDTO, 0, len(drivers))
	for _, d := range drivers {
		dtos = append(dtos, stateDTO{ID: d.ID, AccessPoints: d.AccessPoints, State: string(d.State())})
	}

	return json.Marshal(dtos)
}

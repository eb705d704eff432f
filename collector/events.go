package collector

import "weathernow/models"

// EventKind identifies a state change
type EventKind int

const (
	Started EventKind = iota
	Succeeded
	Failed
	Superseded
	UnitsChanged
)

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Superseded:
		return "superseded"
	case UnitsChanged:
		return "units_changed"
	}
	return "unknown"
}

// Event is emitted on the collector's Updates channel
type Event struct {
	Kind       EventKind
	Generation uint64
	Location   models.Location
	Units      models.UnitSystem
	Err        error
}

// Snapshot is the displayed state at one point in time. Report and Error are
// never both set.
type Snapshot struct {
	Generation   uint64            `json:"generation"`
	Units        models.UnitSystem `json:"units"`
	Loading      bool              `json:"loading"`
	LastLocation *models.Location  `json:"lastLocation,omitempty"`
	Report       *models.Report    `json:"report,omitempty"`
	Error        string            `json:"error,omitempty"`
	ErrorKind    string            `json:"errorKind,omitempty"`
}

package unisphere

import "time"

// LastSyncTimeLayout is how Unisphere formats lastSyncTime values.
const LastSyncTimeLayout = "2006-01-02 15:04:05"

// RDFInfo is the SRDF detail document for one storage group. A group
// replicated over several RDF groups carries one RDFGroupInfo entry per
// pairing.
type RDFInfo struct {
	StorageGroupName string         `json:"storageGroupName"`
	SymmetrixID      string         `json:"symmetrixId"`
	RDFGroupInfo     []RDFGroupInfo `json:"rdfGroupInfo"`
}

// RDFGroupInfo describes the replication state of a storage group within a
// single RDF group.
type RDFGroupInfo struct {
	RDFGroupNumber   int     `json:"rdfgNumber"`
	State            string  `json:"state"`
	Mode             string  `json:"mode"`
	Status           string  `json:"status"`
	VolumeConfig     string  `json:"volumeConfig"`
	RAGroup          string  `json:"raGroup"`
	RACapacity       float64 `json:"raCapacity"`
	ConsistencyState string  `json:"consistencyState"`
	LastSyncTime     string  `json:"lastSyncTime"`
	Protected        bool    `json:"protected"`
	Consistent       bool    `json:"consistent"`
}

// SyncTime parses LastSyncTime. The result is nil when the array has never
// reported a sync for this pairing.
func (g RDFGroupInfo) SyncTime() (*time.Time, error) {
	if g.LastSyncTime == "" {
		return nil, nil
	}
	t, err := time.Parse(LastSyncTimeLayout, g.LastSyncTime)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RDFGroup is one entry of the array's RDF group listing.
type RDFGroup struct {
	RDFGroupNumber int    `json:"rdfgNumber"`
	Label          string `json:"label"`
	Type           string `json:"type"`
}

// RDFGroupDetails is the detail view of a single RDF group.
type RDFGroupDetails struct {
	RDFGroupNumber  int    `json:"rdfgNumber"`
	Label           string `json:"label"`
	Type            string `json:"type"`
	RemoteSymmetrix string `json:"remoteSymmetrix"`
	NumDevices      int    `json:"numDevices"`

	States RDFGroupStates `json:"states"`
	Modes  RDFGroupModes  `json:"modes"`
}

// RDFGroupStates nests the group's replication state.
type RDFGroupStates struct {
	State string `json:"state"`
}

// RDFGroupModes nests the group's replication mode.
type RDFGroupModes struct {
	Mode string `json:"mode"`
}

// State returns the group's replication state, empty when unreported.
func (d *RDFGroupDetails) State() string {
	return d.States.State
}

// Mode returns the group's replication mode, empty when unreported.
func (d *RDFGroupDetails) Mode() string {
	return d.Modes.Mode
}

// ReplicatedStorageGroup is one entry of the replicated storage group
// listing with its protection attributes.
type ReplicatedStorageGroup struct {
	StorageGroupID  string `json:"storageGroupId"`
	SRP             string `json:"srp"`
	ServiceLevel    string `json:"service_level"`
	RDFGroups       []int  `json:"rdfgs"`
	ReplicationMode string `json:"replication_mode"`
}

// ArrayCapacity is the provisioning view of an array's capacity, in GB.
type ArrayCapacity struct {
	SymmetrixID     string  `json:"symmetrixId"`
	TotalCapGB      float64 `json:"total_cap_gb"`
	UsedCapGB       float64 `json:"used_cap_gb"`
	FreeCapGB       float64 `json:"free_cap_gb"`
	SubscribedCapGB float64 `json:"subscribed_cap_gb"`
}

// ArrayHealth is the health detail of one array.
type ArrayHealth struct {
	HealthScore         HealthScore       `json:"health_score"`
	NumFailedComponents int               `json:"num_failed_components"`
	ComponentHealth     []ComponentHealth `json:"component_health"`
}

// HealthScore carries the array-wide health score.
type HealthScore struct {
	SymmetrixHealth float64 `json:"symmetrix_health"`
}

// ComponentHealth is the health of one array component.
type ComponentHealth struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

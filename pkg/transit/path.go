package transit

type EdgeType string

const (
	EdgeTypeRide     EdgeType = "RIDE"
	EdgeTypeTransfer EdgeType = "TRANSFER"
)

const (
	LineLabelTransfer       = "TRANSFER"
	LineLabelUnknown        = "UNKNOWN"
	LineLabelWalk           = "WALK"
	LineLabelWalkToTransfer = "WALK TO TRANSFER"
)

type TopologyEdge struct {
	Type                 EdgeType
	LineID               string
	AverageTravelSeconds int
	WalkSeconds          int
}

// SwitchLabel is the label compared between consecutive edges when counting line switches
func (e TopologyEdge) SwitchLabel() string {
	if e.Type == EdgeTypeTransfer {
		return LineLabelTransfer
	}

	if e.LineID == "" {
		return LineLabelUnknown
	}

	return e.LineID
}

// Path is an ordered walk through the topology, Edges[i] joins Nodes[i] to Nodes[i+1]
type Path struct {
	Nodes []Stop
	Edges []TopologyEdge
}

func (p Path) Hops() int {
	return len(p.Edges)
}

func (p Path) LineSwitches() int {
	switches := 0

	for i := 1; i < len(p.Edges); i++ {
		if p.Edges[i].SwitchLabel() != p.Edges[i-1].SwitchLabel() {
			switches++
		}
	}

	return switches
}

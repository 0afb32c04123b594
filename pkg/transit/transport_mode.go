package transit

type TransportMode string

const (
	TransportModeBus     TransportMode = "bus"
	TransportModeTram    TransportMode = "tram"
	TransportModeMetro   TransportMode = "metro"
	TransportModeUnknown TransportMode = ""
)

func ParseTransportMode(mode string) TransportMode {
	switch TransportMode(mode) {
	case TransportModeBus, TransportModeTram, TransportModeMetro:
		return TransportMode(mode)
	default:
		return TransportModeUnknown
	}
}

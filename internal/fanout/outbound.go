package fanout

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Outbound is one message and its audience, resolved when the state
// change was made. Global outbounds go to every attached client.
type Outbound struct {
	Output  Output
	Targets []string
	Global  bool
}

func ToConn(connID, messageType string, payload any) Outbound {
	return Outbound{
		Output:  Output{Type: messageType, Payload: payload},
		Targets: []string{connID},
	}
}

func ToConns(connIDs []string, messageType string, payload any) Outbound {
	return Outbound{
		Output:  Output{Type: messageType, Payload: payload},
		Targets: connIDs,
	}
}

func ToAll(messageType string, payload any) Outbound {
	return Outbound{
		Output: Output{Type: messageType, Payload: payload},
		Global: true,
	}
}

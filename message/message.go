// Package message defines the call envelope exchanged over a one-shot channel.
//
// CallMessage is serialized by the codec layer and wrapped in a protocol
// frame. A channel carries exactly one request frame and one response frame.
package message

// CallMessage carries the data for the single call a channel performs.
//
//   - On request:  Method is set, Payload contains the serialized args,
//     FaultDetail is empty.
//   - On response: Payload contains the serialized reply; FaultDetail is
//     non-empty if the remote handler signalled an application-level fault.
type CallMessage struct {
	Method      string // Format: "ServiceName.MethodName", e.g., "Arith.Add"
	FaultDetail string // Non-empty when the remote side raised a fault
	Payload     []byte // Serialized args (request) or reply (response)
}

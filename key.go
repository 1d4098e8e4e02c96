package xferbuf

import (
	"fmt"
	"strconv"
)

// NodeID identifies the node a transfer originates from.
type NodeID uint8

const (
	NodeIDBroadcast NodeID = 0   // Lowest node id; used by anonymous and broadcast transfers.
	NodeIDMax       NodeID = 127 // Highest valid node id.
	NodeIDInvalid   NodeID = 255 // Marks the absence of a node; keys with it are empty.
)

// IsValid reports whether n is in [NodeIDBroadcast, NodeIDMax].
func (n NodeID) IsValid() bool {
	return n <= NodeIDMax
}

func (n NodeID) String() string {
	if !n.IsValid() {
		return "invalid"
	}
	return strconv.Itoa(int(n))
}

// TransferType is the category of a transfer.
type TransferType uint8

const (
	ServiceResponse TransferType = iota
	ServiceRequest
	MessageBroadcast
	MessageUnicast
)

func (t TransferType) String() string {
	switch t {
	case ServiceResponse:
		return "serviceResponse"
	case ServiceRequest:
		return "serviceRequest"
	case MessageBroadcast:
		return "messageBroadcast"
	case MessageUnicast:
		return "messageUnicast"
	default:
		return fmt.Sprintf("transferType(%d)", uint8(t))
	}
}

// Key identifies the buffer of one logical transfer.
// Keys are comparable with ==. A key with an invalid node id is empty and never
// names a buffer; note that the zero Key is not empty, it names node 0.
type Key struct {
	nodeID       NodeID
	transferType TransferType
}

// emptyKey marks free entries.
var emptyKey = Key{nodeID: NodeIDInvalid}

// NewKey creates a key for transfers of type t originating from node n.
func NewKey(n NodeID, t TransferType) Key {
	return Key{nodeID: n, transferType: t}
}

// NodeID returns the id of the node the transfer originates from.
func (k Key) NodeID() NodeID {
	return k.nodeID
}

// TransferType returns the category of the transfer.
func (k Key) TransferType() TransferType {
	return k.transferType
}

// IsEmpty reports whether k names no buffer.
func (k Key) IsEmpty() bool {
	return !k.nodeID.IsValid()
}

func (k Key) String() string {
	if k.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("nid=%d tt=%s", uint8(k.nodeID), k.transferType)
}

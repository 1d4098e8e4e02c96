package xferbuf

import "testing"

func TestKey(t *testing.T) {
	testCases := []struct {
		name    string
		key     Key
		isEmpty bool
		str     string
	}{
		{"Broadcast node", NewKey(NodeIDBroadcast, MessageBroadcast), false, "nid=0 tt=messageBroadcast"},
		{"Max node", NewKey(NodeIDMax, ServiceRequest), false, "nid=127 tt=serviceRequest"},
		{"Invalid node", NewKey(NodeIDInvalid, ServiceResponse), true, "empty"},
		{"Out of range node", NewKey(128, MessageUnicast), true, "empty"},
		{"Unknown type", NewKey(5, TransferType(9)), false, "nid=5 tt=transferType(9)"},
		{"Empty key", emptyKey, true, "empty"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.key.IsEmpty() != tc.isEmpty {
				t.Errorf("expected IsEmpty() %t, got %t", tc.isEmpty, tc.key.IsEmpty())
			}
			if tc.key.String() != tc.str {
				t.Errorf("expected %q, got %q", tc.str, tc.key.String())
			}
		})
	}

	t.Run("Equality", func(t *testing.T) {
		a := NewKey(42, MessageBroadcast)
		if a != NewKey(42, MessageBroadcast) {
			t.Error("expected keys with equal fields to be equal")
		}
		if a == NewKey(42, MessageUnicast) || a == NewKey(43, MessageBroadcast) {
			t.Error("expected keys with different fields to differ")
		}
		if a.NodeID() != 42 || a.TransferType() != MessageBroadcast {
			t.Errorf("unexpected key fields: %v", a)
		}
	})
}

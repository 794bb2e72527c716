package wire

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// Request is the call envelope carried inside the transport payload.
// Params are wire values in descriptor order.
type Request struct {
	Method      string            `json:"method"`
	Params      []json.RawMessage `json:"params"`
	Credential  string            `json:"credential,omitempty"`
	Transaction string            `json:"transaction,omitempty"`
}

// LoginRequest is the session handshake envelope.
type LoginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Environment string `json:"environment"`
}

// LoginResponse carries the issued credential.
type LoginResponse struct {
	Credential string `json:"credential"`
}

// LogoutRequest releases a credential.
type LogoutRequest struct {
	Credential  string `json:"credential"`
	Environment string `json:"environment"`
}

// StageResponse carries the token issued when staging begins.
type StageResponse struct {
	Token string `json:"token"`
}

// Dataset result form: record id (decimal string, JSON object key) to key
// to wire values.

// EncodeDataset converts a native dataset to its wire form.
func EncodeDataset(d types.Dataset) (json.RawMessage, error) {
	out := make(map[string]map[string][]json.RawMessage, len(d))
	for record, byKey := range d {
		m := make(map[string][]json.RawMessage, len(byKey))
		for key, vals := range byKey {
			raws, err := EncodeValues(vals)
			if err != nil {
				return nil, err
			}
			m[key] = raws
		}
		out[strconv.FormatInt(record, 10)] = m
	}
	return json.Marshal(out)
}

// DecodeDataset converts a wire dataset back to its native form.
func DecodeDataset(raw json.RawMessage) (types.Dataset, error) {
	var in map[string]map[string][]json.RawMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("wire: decode dataset: %w", err)
	}
	d := make(types.Dataset, len(in))
	for recordStr, byKey := range in {
		record, err := strconv.ParseInt(recordStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("wire: decode dataset record %q: %w", recordStr, err)
		}
		m := make(map[string][]types.Value, len(byKey))
		for key, raws := range byKey {
			vals, err := DecodeValues(raws)
			if err != nil {
				return nil, err
			}
			m[key] = vals
		}
		d[record] = m
	}
	return d, nil
}

// EncodeKeysByRecord converts a describe result to its wire form.
func EncodeKeysByRecord(m map[int64][]string) (json.RawMessage, error) {
	out := make(map[string][]string, len(m))
	for record, keys := range m {
		out[strconv.FormatInt(record, 10)] = keys
	}
	return json.Marshal(out)
}

// DecodeKeysByRecord converts a wire describe result back to native form.
func DecodeKeysByRecord(raw json.RawMessage) (map[int64][]string, error) {
	var in map[string][]string
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("wire: decode describe result: %w", err)
	}
	out := make(map[int64][]string, len(in))
	for recordStr, keys := range in {
		record, err := strconv.ParseInt(recordStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("wire: decode describe record %q: %w", recordStr, err)
		}
		out[record] = keys
	}
	return out, nil
}

// EncodeRecords converts a record id list to its wire form.
func EncodeRecords(ids []int64) (json.RawMessage, error) {
	return json.Marshal(ids)
}

// DecodeRecords converts a wire record id list back to native form.
func DecodeRecords(raw json.RawMessage) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("wire: decode record ids: %w", err)
	}
	return ids, nil
}

// EncodeAudit converts an audit trail to its wire form.
func EncodeAudit(entries []types.AuditEntry) (json.RawMessage, error) {
	return json.Marshal(entries)
}

// DecodeAudit converts a wire audit trail back to native form.
func DecodeAudit(raw json.RawMessage) ([]types.AuditEntry, error) {
	var entries []types.AuditEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("wire: decode audit trail: %w", err)
	}
	return entries, nil
}

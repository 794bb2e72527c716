package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mesh-intelligence/strata/internal/dispatch"
	"github.com/mesh-intelligence/strata/internal/resolve"
	"github.com/mesh-intelligence/strata/internal/store"
	"github.com/mesh-intelligence/strata/internal/wire"
)

// methodIndex maps wire method names to their descriptors. Built from the
// dispatch table, so the server accepts exactly the variants the client
// can produce.
var methodIndex = func() map[string]dispatch.Descriptor {
	idx := map[string]dispatch.Descriptor{}
	for _, f := range resolve.Families {
		for _, entry := range dispatch.All(f) {
			idx[entry.Descriptor.Name] = entry.Descriptor
		}
	}
	return idx
}()

// Server exposes a store.Engine over the Strata gRPC service.
type Server struct {
	UnimplementedStrataServer
	Engine *store.Engine
}

func (s *Server) Login(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Engine == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing engine")
	}
	var req wire.LoginRequest
	if err := json.Unmarshal(in.GetValue(), &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed login request")
	}
	cred, err := s.Engine.Login(req.Username, req.Password, req.Environment)
	if err != nil {
		return nil, mapErr(err)
	}
	payload, err := json.Marshal(wire.LoginResponse{Credential: cred})
	if err != nil {
		return nil, status.Error(codes.Internal, "encode login response")
	}
	return wrapperspb.Bytes(payload), nil
}

func (s *Server) Logout(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Engine == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing engine")
	}
	var req wire.LogoutRequest
	if err := json.Unmarshal(in.GetValue(), &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed logout request")
	}
	if err := s.Engine.Logout(req.Credential, req.Environment); err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bytes([]byte("null")), nil
}

func (s *Server) Call(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Engine == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing engine")
	}
	var env wire.Request
	if err := json.Unmarshal(in.GetValue(), &env); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed request envelope")
	}

	switch env.Method {
	case "stage":
		token, err := s.Engine.Stage(env.Credential)
		if err != nil {
			return nil, mapErr(err)
		}
		payload, err := json.Marshal(wire.StageResponse{Token: token})
		if err != nil {
			return nil, status.Error(codes.Internal, "encode stage response")
		}
		return wrapperspb.Bytes(payload), nil
	case "commit":
		if err := s.Engine.Commit(env.Credential, env.Transaction); err != nil {
			return nil, mapErr(err)
		}
		return wrapperspb.Bytes([]byte("null")), nil
	case "abort":
		if err := s.Engine.Abort(env.Credential, env.Transaction); err != nil {
			return nil, mapErr(err)
		}
		return wrapperspb.Bytes([]byte("null")), nil
	}

	desc, ok := methodIndex[env.Method]
	if !ok {
		return nil, status.Errorf(codes.Unimplemented, "unknown method %q", env.Method)
	}
	req, err := s.decodeParams(desc, env.Params)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var result json.RawMessage
	switch desc.Family {
	case resolve.FamilyGet:
		d, err := s.Engine.Get(env.Credential, env.Transaction, req)
		if err != nil {
			return nil, mapErr(err)
		}
		result, err = wire.EncodeDataset(d)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
	case resolve.FamilySelect:
		d, err := s.Engine.Select(env.Credential, env.Transaction, req)
		if err != nil {
			return nil, mapErr(err)
		}
		result, err = wire.EncodeDataset(d)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
	case resolve.FamilyAdd:
		ids, err := s.Engine.Add(env.Credential, env.Transaction, req)
		if err != nil {
			return nil, mapErr(err)
		}
		result, err = wire.EncodeRecords(ids)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
	case resolve.FamilySet:
		if err := s.Engine.Set(env.Credential, env.Transaction, req); err != nil {
			return nil, mapErr(err)
		}
		result = json.RawMessage("null")
	case resolve.FamilyRemove:
		if err := s.Engine.Remove(env.Credential, env.Transaction, req); err != nil {
			return nil, mapErr(err)
		}
		result = json.RawMessage("null")
	case resolve.FamilyAudit:
		entries, err := s.Engine.Audit(env.Credential, env.Transaction, req)
		if err != nil {
			return nil, mapErr(err)
		}
		result, err = wire.EncodeAudit(entries)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
	case resolve.FamilyDescribe:
		m, err := s.Engine.Describe(env.Credential, env.Transaction, req)
		if err != nil {
			return nil, mapErr(err)
		}
		result, err = wire.EncodeKeysByRecord(m)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
	default:
		return nil, status.Errorf(codes.Unimplemented, "unhandled family for %q", env.Method)
	}
	return wrapperspb.Bytes(result), nil
}

// decodeParams maps positional wire parameters onto a store.Request using
// the descriptor's slot order. Phrase timestamps are resolved here, so the
// engine only ever sees instants.
func (s *Server) decodeParams(desc dispatch.Descriptor, params []json.RawMessage) (store.Request, error) {
	var req store.Request
	if len(params) != len(desc.Params) {
		return req, fmt.Errorf("%s: expected %d parameters, got %d", desc.Name, len(desc.Params), len(params))
	}
	for i, slot := range desc.Params {
		raw := params[i]
		switch slot {
		case dispatch.ParamKey, dispatch.ParamCriteria:
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return req, fmt.Errorf("%s: parameter %s: %w", desc.Name, slot, err)
			}
			if slot == dispatch.ParamKey {
				req.Keys = []string{v}
			} else {
				req.Criteria = v
			}
		case dispatch.ParamKeys:
			if err := json.Unmarshal(raw, &req.Keys); err != nil {
				return req, fmt.Errorf("%s: parameter keys: %w", desc.Name, err)
			}
		case dispatch.ParamRecord:
			var r int64
			if err := json.Unmarshal(raw, &r); err != nil {
				return req, fmt.Errorf("%s: parameter record: %w", desc.Name, err)
			}
			req.Records = []int64{r}
		case dispatch.ParamRecords:
			if err := json.Unmarshal(raw, &req.Records); err != nil {
				return req, fmt.Errorf("%s: parameter records: %w", desc.Name, err)
			}
		case dispatch.ParamValue:
			v, err := wire.Decode(raw)
			if err != nil {
				return req, fmt.Errorf("%s: parameter value: %w", desc.Name, err)
			}
			req.Value = v
			req.HasValue = true
		case dispatch.ParamTimestamp, dispatch.ParamStart, dispatch.ParamEnd:
			micros, err := s.decodeInstant(raw)
			if err != nil {
				return req, fmt.Errorf("%s: parameter %s: %w", desc.Name, slot, err)
			}
			switch slot {
			case dispatch.ParamTimestamp:
				req.Time = &micros
			case dispatch.ParamStart:
				req.Start = &micros
			default:
				req.End = &micros
			}
		default:
			return req, fmt.Errorf("%s: unhandled parameter slot %s", desc.Name, slot)
		}
	}
	return req, nil
}

// decodeInstant accepts either an absolute instant (JSON number of
// microseconds) or a natural-language phrase (JSON string) and returns
// microseconds since epoch.
func (s *Server) decodeInstant(raw json.RawMessage) (int64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var phrase string
		if err := json.Unmarshal(trimmed, &phrase); err != nil {
			return 0, err
		}
		return s.Engine.ResolvePhrase(phrase)
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return 0, err
	}
	return n.Int64()
}

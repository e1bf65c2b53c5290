// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

import (
	"errors"

	"google.golang.org/protobuf/types/known/structpb"
)

// gRPC coordinates of the privileged host. Messages are protobuf well-known
// types: the request is a Struct, the reply a StringValue holding stdout.
const (
	ServiceName          = "polarisdesk.bridge.v1.CommandHost"
	MethodRunCommand     = "RunCommand"
	FullMethodRunCommand = "/" + ServiceName + "/" + MethodRunCommand
	MetadataRequestID    = "x-request-id"
)

// EncodeRequest converts a Request to its wire form.
func EncodeRequest(r Request) (*structpb.Struct, error) {
	args := make([]any, len(r.Args))
	for i, a := range r.Args {
		args[i] = a
	}
	return structpb.NewStruct(map[string]any{
		"request_id": r.RequestID,
		"executable": r.Executable,
		"args":       args,
	})
}

// DecodeRequest converts the wire form back to a Request.
func DecodeRequest(s *structpb.Struct) (Request, error) {
	fields := s.GetFields()
	exe := fields["executable"].GetStringValue()
	if exe == "" {
		return Request{}, errors.New("request has no executable")
	}
	req := Request{
		RequestID:  fields["request_id"].GetStringValue(),
		Executable: exe,
	}
	for _, v := range fields["args"].GetListValue().GetValues() {
		sv, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return Request{}, errors.New("request argument is not a string")
		}
		req.Args = append(req.Args, sv.StringValue)
	}
	return req, nil
}

package agent

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeRequest converts a request into its wire form
func EncodeRequest(req Request) (*structpb.Struct, error) {
	return toStruct(req)
}

// DecodeRequest converts a wire payload back into a request
func DecodeRequest(s *structpb.Struct) (Request, error) {
	var req Request
	if err := fromStruct(s, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

// EncodeResponse converts a response into its wire form
func EncodeResponse(resp Response) (*structpb.Struct, error) {
	return toStruct(resp)
}

// DecodeResponse converts a wire payload back into a response
func DecodeResponse(s *structpb.Struct) (Response, error) {
	var resp Response
	if err := fromStruct(s, &resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

// toStruct goes through JSON so typed slices and nested structs flatten to
// the generic shapes structpb accepts
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("flatten payload: %w", err)
	}
	s, err := structpb.NewStruct(generic)
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, out interface{}) error {
	if s == nil {
		return fmt.Errorf("empty payload")
	}
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

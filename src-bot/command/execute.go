package command

import (
	"context"
	"net/http"
	"strings"

	"racbot/src-bot/api"
)

// Caller is the part of *api.Client commands depend on.
type Caller interface {
	Call(ctx context.Context, req api.Request) (*api.Response, error)
}

type Expect int

const (
	ExpectAny Expect = iota
	// JSON object
	ExpectObject
	// non-empty bytes sniffed as image/*
	ExpectImage
)

// Call describes the single remote call behind a command and how a
// successful response is rendered. A nil Render replies "done".
type Call struct {
	Request api.Request
	Expect  Expect
	Render  func(res *api.Response) (*Output, error)
}

// Execute runs one bounded attempt of call and classifies the outcome.
// Nothing is rendered before the outcome is known.
func Execute(ctx context.Context, caller Caller, inv *Invocation, call Call) (*Output, error) {
	if inv != nil && inv.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Deadline)
		defer cancel()
	}

	req := call.Request
	switch call.Expect {
	case ExpectObject:
		req.Expect = api.ShapeJSON
	case ExpectImage:
		req.Expect = api.ShapeBytes
	}

	res, err := caller.Call(ctx, req)
	if err != nil {
		return nil, Classify(err)
	}
	if err := checkShape(res, call.Expect); err != nil {
		return nil, err
	}

	if call.Render == nil {
		return Text("done"), nil
	}
	out, err := call.Render(res)
	if err != nil {
		return nil, Classify(err)
	}
	if out == nil {
		return nil, &ShapeError{Err: ErrEmptyResult}
	}
	return out, nil
}

func checkShape(res *api.Response, expect Expect) error {
	switch expect {
	case ExpectObject:
		if !res.Body.JSON().IsObject() {
			return &ShapeError{Want: "json object", Got: res.Body.Kind.String()}
		}
	case ExpectImage:
		if len(res.Body.Raw) == 0 {
			return &ShapeError{Want: "image", Err: ErrEmptyResult}
		}
		if sniffed := http.DetectContentType(res.Body.Raw); !strings.HasPrefix(sniffed, "image/") {
			return &ShapeError{Want: "image", Got: sniffed}
		}
	}
	return nil
}

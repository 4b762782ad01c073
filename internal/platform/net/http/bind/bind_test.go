package bind

import (
	"net/http"
	"net/http/httptest"
	"testing"

	perr "expiryai/internal/platform/errors"
)

type listInput struct {
	Barcode       string  `query:"barcode" validate:"omitempty,max=64"`
	MinConfidence float64 `query:"min_confidence" validate:"gte=0,lte=1"`
	Limit         int     `query:"limit" validate:"omitempty,min=1,max=500"`
	Active        bool    `query:"active"`
}

func req(q string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/x?"+q, nil)
}

func TestQuery_DecodesTypedFields(t *testing.T) {
	in, err := Query[listInput](req("barcode=4006381333931&min_confidence=0.65&limit=20&active=true&other=1"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if in.Barcode != "4006381333931" || in.MinConfidence != 0.65 || in.Limit != 20 || !in.Active {
		t.Fatalf("decoded %+v", in)
	}
}

func TestQuery_EmptyIsZero(t *testing.T) {
	in, err := Query[listInput](req(""))
	if err != nil || in != (listInput{}) {
		t.Fatalf("got %+v, %v", in, err)
	}
}

func TestQuery_Errors(t *testing.T) {
	cases := []struct {
		q     string
		field string
	}{
		{"limit=abc", "limit"},
		{"limit=501", "limit"},
		{"min_confidence=1.5", "min_confidence"},
	}
	for _, c := range cases {
		_, err := Query[listInput](req(c.q))
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("%s: want validation error, got %v", c.q, err)
		}
		e, _ := perr.As(err)
		if e.Field() != c.field {
			t.Fatalf("%s: field = %q, want %q", c.q, e.Field(), c.field)
		}
	}
}

func TestStruct_ShortMessages(t *testing.T) {
	type params struct {
		Chunk int `json:"chunk" validate:"min=1"`
	}
	err := Struct(params{})
	e, ok := perr.As(err)
	if !ok || e.Field() != "chunk" || e.Error() != "chunk must be at least 1" {
		t.Fatalf("unexpected %v", err)
	}
}

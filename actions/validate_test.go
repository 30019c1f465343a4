package actions_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/CerealNotFound/function-calling-server/actions"
)

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name       string
		schema     actions.Schema
		raw        string
		wantField  string
		wantReason actions.Reason
	}{
		{
			name:       "missing required email",
			schema:     contactSchema(),
			raw:        `{"firstname":"Jane"}`,
			wantField:  "email",
			wantReason: actions.ReasonMissingRequired,
		},
		{
			name:       "required checked in declared order",
			schema:     contactSchema(),
			raw:        `{}`,
			wantField:  "firstname",
			wantReason: actions.ReasonMissingRequired,
		},
		{
			name:       "null required field",
			schema:     contactSchema(),
			raw:        `{"firstname":"Jane","email":null}`,
			wantField:  "email",
			wantReason: actions.ReasonMissingRequired,
		},
		{
			name:       "wrong primitive type",
			schema:     contactSchema(),
			raw:        `{"firstname":42,"email":"jane@example.com"}`,
			wantField:  "firstname",
			wantReason: actions.ReasonWrongType,
		},
		{
			name:       "enum membership",
			schema:     contactSchema(),
			raw:        `{"firstname":"Jane","email":"j@x.io","lifecyclestage":"vip"}`,
			wantField:  "lifecyclestage",
			wantReason: actions.ReasonNotInEnum,
		},
		{
			name:       "undeclared field",
			schema:     contactSchema(),
			raw:        `{"firstname":"Jane","email":"j@x.io","phone":"555"}`,
			wantField:  "phone",
			wantReason: actions.ReasonUnknownField,
		},
		{
			name:       "present fields visited in sorted order",
			schema:     contactSchema(),
			raw:        `{"firstname":"Jane","email":"j@x.io","zeta":1,"alpha":2}`,
			wantField:  "alpha",
			wantReason: actions.ReasonUnknownField,
		},
		{
			name:       "not json",
			schema:     contactSchema(),
			raw:        `{"firstname":`,
			wantField:  "",
			wantReason: actions.ReasonMalformed,
		},
		{
			name:       "top level array",
			schema:     contactSchema(),
			raw:        `[1,2]`,
			wantField:  "",
			wantReason: actions.ReasonMalformed,
		},
		{
			name:       "trailing data",
			schema:     contactSchema(),
			raw:        `{"firstname":"a","email":"b"} {}`,
			wantField:  "",
			wantReason: actions.ReasonMalformed,
		},
		{
			name:       "array expected",
			schema:     meetingSchema(),
			raw:        `{"summary":"s","attendees":"bob"}`,
			wantField:  "attendees",
			wantReason: actions.ReasonMalformed,
		},
		{
			name:       "nested missing field",
			schema:     meetingSchema(),
			raw:        `{"summary":"s","attendees":[{"email":"a@x.io"},{"name":"Bob"}]}`,
			wantField:  "attendees[1].email",
			wantReason: actions.ReasonMissingRequired,
		},
		{
			name:       "nested object expected",
			schema:     meetingSchema(),
			raw:        `{"summary":"s","attendees":["a@x.io"]}`,
			wantField:  "attendees[0]",
			wantReason: actions.ReasonMalformed,
		},
		{
			name:       "fractional integer",
			schema:     meetingSchema(),
			raw:        `{"summary":"s","duration":1.5}`,
			wantField:  "duration",
			wantReason: actions.ReasonWrongType,
		},
		{
			name:       "integer past int64 range",
			schema:     meetingSchema(),
			raw:        `{"summary":"s","duration":9223372036854775808}`,
			wantField:  "duration",
			wantReason: actions.ReasonWrongType,
		},
		{
			name:       "exponent integer past int64 range",
			schema:     meetingSchema(),
			raw:        `{"summary":"s","duration":9.223372036854775808e18}`,
			wantField:  "duration",
			wantReason: actions.ReasonWrongType,
		},
		{
			name:       "string for boolean",
			schema:     meetingSchema(),
			raw:        `{"summary":"s","online":"yes"}`,
			wantField:  "online",
			wantReason: actions.ReasonWrongType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.schema.Validate([]byte(tt.raw))
			if !errors.Is(err, actions.ErrSchemaViolation) {
				t.Fatalf("Validate() error = %v, want schema violation", err)
			}

			var v *actions.SchemaViolation
			if !errors.As(err, &v) {
				t.Fatalf("error is not *SchemaViolation: %T", err)
			}
			if v.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", v.Field, tt.wantField)
			}
			if v.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", v.Reason, tt.wantReason)
			}
			if v.Action != tt.schema.Name {
				t.Errorf("Action = %q, want %q", v.Action, tt.schema.Name)
			}
		})
	}
}

func TestValidate_NormalisesValues(t *testing.T) {
	args, err := meetingSchema().Validate([]byte(`{
		"summary": "Sync",
		"duration": 30,
		"priority": 2,
		"online": true,
		"attendees": [{"name": "Bob", "email": "bob@x.io"}]
	}`))
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	want := actions.Arguments{
		"summary":  "Sync",
		"duration": int64(30),
		"priority": float64(2),
		"online":   true,
		"attendees": []any{
			map[string]any{"name": "Bob", "email": "bob@x.io"},
		},
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("Validate() = %#v, want %#v", args, want)
	}
}

func TestValidate_IntegralFloatIsInteger(t *testing.T) {
	args, err := meetingSchema().Validate([]byte(`{"summary":"s","duration":2.0}`))
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if args["duration"] != int64(2) {
		t.Errorf("duration = %#v, want int64(2)", args["duration"])
	}
}

func TestValidate_IntegerRangeEdges(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{`9223372036854775807`, math.MaxInt64},
		{`-9223372036854775808`, math.MinInt64},
		{`-9.223372036854775808e18`, math.MinInt64},
	}

	for _, tt := range tests {
		args, err := meetingSchema().Validate([]byte(`{"summary":"s","duration":` + tt.raw + `}`))
		if err != nil {
			t.Errorf("Validate(%s) failed: %v", tt.raw, err)
			continue
		}
		if args["duration"] != tt.want {
			t.Errorf("Validate(%s) duration = %#v, want %d", tt.raw, args["duration"], tt.want)
		}
	}
}

func TestValidate_EmptyPayloadIsEmptyObject(t *testing.T) {
	s := actions.Schema{Name: "ping", Parameters: actions.Param{Type: actions.KindObject}}

	for _, raw := range []string{"", "  ", "{}"} {
		args, err := s.Validate([]byte(raw))
		if err != nil {
			t.Errorf("Validate(%q) failed: %v", raw, err)
		}
		if len(args) != 0 {
			t.Errorf("Validate(%q) = %v, want empty", raw, args)
		}
	}
}

func TestValidate_NullOptionalDropped(t *testing.T) {
	args, err := contactSchema().Validate([]byte(`{"firstname":"Jane","email":"j@x.io","lastname":null}`))
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if _, ok := args["lastname"]; ok {
		t.Error("null optional field should be dropped")
	}
}

func TestValidate_Idempotent(t *testing.T) {
	inputs := []string{
		`{"firstname":"Jane","email":"j@x.io"}`,
		`{"firstname":"Jane"}`,
		`{"firstname":1,"bogus":true}`,
	}

	s := contactSchema()
	for _, raw := range inputs {
		a1, e1 := s.Validate([]byte(raw))
		a2, e2 := s.Validate([]byte(raw))

		if !reflect.DeepEqual(a1, a2) {
			t.Errorf("%s: arguments differ: %v vs %v", raw, a1, a2)
		}
		if (e1 == nil) != (e2 == nil) || (e1 != nil && e1.Error() != e2.Error()) {
			t.Errorf("%s: errors differ: %v vs %v", raw, e1, e2)
		}
	}
}

func TestRegistryValidate_UnknownAction(t *testing.T) {
	_, err := actions.NewRegistry().Validate("nope", []byte(`{}`))
	if !errors.Is(err, actions.ErrUnknownAction) {
		t.Errorf("Validate() error = %v, want %v", err, actions.ErrUnknownAction)
	}
}

func TestArguments_Decode(t *testing.T) {
	type attendee struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	type meeting struct {
		Summary   string     `json:"summary"`
		Duration  int        `json:"duration"`
		Attendees []attendee `json:"attendees"`
	}

	args, err := meetingSchema().Validate([]byte(`{"summary":"Sync","duration":45,"attendees":[{"name":"Bob","email":"bob@x.io"}]}`))
	if err != nil {
		t.Fatal(err)
	}

	var m meeting
	if err := args.Decode(&m); err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if m.Summary != "Sync" || m.Duration != 45 || len(m.Attendees) != 1 || m.Attendees[0].Email != "bob@x.io" {
		t.Errorf("Decode() = %+v", m)
	}
}

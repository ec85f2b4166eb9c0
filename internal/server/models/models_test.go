package models

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/casegraph/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCaseUpdate_Apply_OnlySuppliedFields(t *testing.T) {
	c := &Case{ID: 1, Name: "APT", Description: ptr("initial"), Owner: "alice"}

	CaseUpdate{Name: ptr("APT-29")}.Apply(c)
	assert.Equal(t, "APT-29", c.Name)
	require.NotNil(t, c.Description)
	assert.Equal(t, "initial", *c.Description)

	CaseUpdate{Description: ptr("")}.Apply(c)
	assert.Equal(t, "", *c.Description)
	assert.Equal(t, "APT-29", c.Name)
}

func TestEntityUpdate_Apply_NormalisesKind(t *testing.T) {
	e := &Entity{ID: 3, CaseID: 1, Name: "8.8.8.8", Kind: "ip"}
	EntityUpdate{Kind: ptr("  Domain ")}.Apply(e)
	assert.Equal(t, "domain", e.Kind)
	assert.Equal(t, int64(1), e.CaseID)
}

func TestEntityCreate_Normalize(t *testing.T) {
	c := EntityCreate{CaseID: 1, Name: "x", Kind: " IP"}
	c.Normalize()
	assert.Equal(t, "ip", c.Kind)
}

func TestCredentialUpdate_Apply(t *testing.T) {
	c := &Credential{Name: "SHODAN_API_KEY", Active: true}
	CredentialUpdate{Active: ptr(false), Secret: ptr("new")}.Apply(c)
	assert.False(t, c.Active)
	assert.Empty(t, c.Secret, "secret is re-sealed by the caller")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		wantErr string
	}{
		{name: "case ok", in: CaseCreate{Name: "Phishing"}},
		{name: "case missing name", in: CaseCreate{}, wantErr: "Name"},
		{name: "case update empty name", in: CaseUpdate{Name: ptr("")}, wantErr: "min"},
		{name: "case update nothing", in: CaseUpdate{}},
		{name: "entity bad case id", in: EntityCreate{Name: "8.8.8.8", Kind: "ip"}, wantErr: "CaseID"},
		{name: "entity ok", in: EntityCreate{CaseID: 1, Name: "8.8.8.8", Kind: "ip"}},
		{name: "relationship zero source", in: RelationshipCreate{TargetEntityID: 2}, wantErr: "SourceEntityID"},
		{name: "credential short name", in: CredentialCreate{Name: "AB", Secret: "s"}, wantErr: "min"},
		{name: "credential long name", in: CredentialCreate{Name: strings.Repeat("A", 101), Secret: "s"}, wantErr: "max"},
		{name: "credential no secret", in: CredentialCreate{Name: "SHODAN_API_KEY"}, wantErr: "Secret"},
		{name: "credential ok", in: CredentialCreate{Name: "SHODAN_API_KEY", Secret: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, common.ErrorValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindIP, ParseKind(" IP "))
	assert.Equal(t, Kind(""), ParseKind("   "))
	assert.Equal(t, Kind("unknown-kind"), ParseKind("Unknown-Kind"))
}

func TestNewMessageResult(t *testing.T) {
	r := NewMessageResult("nothing to do")
	assert.Empty(t, r.Entities)
	assert.NotNil(t, r.Entities)
	assert.NotNil(t, r.Relationships)
	assert.Equal(t, "nothing to do", r.Message)
}

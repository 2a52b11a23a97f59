package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIssueURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Reference
		wantErr bool
	}{
		{
			name: "dash style issue",
			raw:  "https://git.example.com/team/backend/-/issues/42",
			want: Reference{Project: "team/backend", Kind: KindIssue, IID: 42},
		},
		{
			name: "legacy issue",
			raw:  "https://git.example.com/team/backend/issues/7",
			want: Reference{Project: "team/backend", Kind: KindIssue, IID: 7},
		},
		{
			name: "dash style merge request",
			raw:  "https://git.example.com/team/backend/-/merge_requests/9",
			want: Reference{Project: "team/backend", Kind: KindMergeRequest, IID: 9},
		},
		{
			name: "trailing fragment",
			raw:  "https://github.com/acme/api/issues/12#issuecomment-1",
			want: Reference{Project: "acme/api", Kind: KindIssue, IID: 12},
		},
		{name: "subgroup", raw: "https://git.example.com/a/b/c/-/issues/1", wantErr: true},
		{name: "no id", raw: "https://git.example.com/team/backend/-/issues/", wantErr: true},
		{name: "not a url", raw: "::", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIssueURL(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnparseableURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReferenceString(t *testing.T) {
	assert.Equal(t, "team/backend#42", Reference{Project: "team/backend", Kind: KindIssue, IID: 42}.String())
	assert.Equal(t, "team/backend!9", Reference{Project: "team/backend", Kind: KindMergeRequest, IID: 9}.String())
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "issue", KindIssue.Label())
	assert.Equal(t, "merge request", KindMergeRequest.Label())
}

func TestIsMember(t *testing.T) {
	members := []Member{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}}
	assert.True(t, IsMember(members, "bob"))
	assert.False(t, IsMember(members, "Bob"))
	assert.False(t, IsMember(nil, "bob"))
}

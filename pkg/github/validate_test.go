package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRepoName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{name: "simple", input: "golang/go", wantOwner: "golang", wantRepo: "go"},
		{name: "dots and dashes", input: "grpc/grpc-go.v2", wantOwner: "grpc", wantRepo: "grpc-go.v2"},
		{name: "missing slash", input: "golanggo", wantErr: true},
		{name: "extra path", input: "golang/go/src", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "leading dash owner", input: "-bad/repo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ValidateRepoName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
		})
	}
}

func TestParseIssueRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    IssueRef
		wantErr bool
	}{
		{
			name:  "full url",
			input: "https://github.com/golang/go/issues/123",
			want:  IssueRef{Owner: "golang", Repo: "go", Number: 123},
		},
		{
			name:  "url with trailing slash",
			input: "https://github.com/golang/go/issues/123/",
			want:  IssueRef{Owner: "golang", Repo: "go", Number: 123},
		},
		{
			name:  "short form",
			input: "golang/go#123",
			want:  IssueRef{Owner: "golang", Repo: "go", Number: 123},
		},
		{name: "pull request url", input: "https://github.com/golang/go/pull/123", wantErr: true},
		{name: "missing number", input: "golang/go#", wantErr: true},
		{name: "plain text", input: "investigate this please", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseIssueRef(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestIssueRefString(t *testing.T) {
	t.Parallel()
	ref := IssueRef{Owner: "golang", Repo: "go", Number: 42}
	assert.Equal(t, "golang/go#42", ref.String())
}

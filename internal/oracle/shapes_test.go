// internal/oracle/shapes_test.go
package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/TrustLens/internal/errors"
)

func TestParseLabelScores(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		shape     Shape
		wantFirst LabelScore
		wantErr   bool
	}{
		{
			name:      "nested",
			body:      `[[{"label":"toxic","score":0.91},{"label":"insult","score":0.2}]]`,
			shape:     ShapeNested,
			wantFirst: LabelScore{Label: "toxic", Score: 0.91},
		},
		{
			name:      "flat",
			body:      `[{"label":"LABEL_1","score":0.7}]`,
			shape:     ShapeFlat,
			wantFirst: LabelScore{Label: "LABEL_1", Score: 0.7},
		},
		{name: "object", body: `{"label":"toxic","score":0.9}`, wantErr: true},
		{name: "loading error", body: `{"error":"Model is currently loading"}`, wantErr: true},
		{name: "empty list", body: `[]`, wantErr: true},
		{name: "empty nested", body: `[[]]`, wantErr: true},
		{name: "string score", body: `[{"label":"toxic","score":"high"}]`, wantErr: true},
		{name: "not json", body: `<html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, shape, err := ParseLabelScores([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsMalformedResponseError(err))
				assert.Equal(t, ShapeUnknown, shape)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.shape, shape)
			assert.Equal(t, tt.wantFirst, entries[0])
		})
	}
}

func TestParseZeroShot(t *testing.T) {
	entries, shape, err := ParseZeroShot([]byte(`{"sequence":"x","labels":["phishing","safe"],"scores":[0.6,0.4]}`))
	require.NoError(t, err)
	assert.Equal(t, ShapeZeroShot, shape)
	assert.Equal(t, []LabelScore{{"phishing", 0.6}, {"safe", 0.4}}, entries)

	entries, shape, err = ParseZeroShot([]byte(`[{"label":"scam","score":0.3}]`))
	require.NoError(t, err)
	assert.Equal(t, ShapeFlat, shape)
	assert.Len(t, entries, 1)

	_, _, err = ParseZeroShot([]byte(`{"labels":["a","b"],"scores":[0.1]}`))
	assert.True(t, apperrors.IsMalformedResponseError(err))

	_, _, err = ParseZeroShot([]byte(`{"sequence":"x"}`))
	assert.True(t, apperrors.IsMalformedResponseError(err))
}

type stubProvider struct{ initialized map[string]string }

func (s *stubProvider) Initialize(config map[string]string) error {
	s.initialized = config
	return nil
}
func (s *stubProvider) GetName() string { return "stub" }
func (s *stubProvider) Infer(context.Context, string, InferenceRequest) ([]byte, error) {
	return []byte(`[]`), nil
}

func TestRegistry(t *testing.T) {
	Register("stub-registry", func() Provider { return &stubProvider{} })

	p, err := GetProvider("stub-registry", map[string]string{"api_key": "k"})
	require.NoError(t, err)
	assert.Equal(t, "k", p.(*stubProvider).initialized["api_key"])
	assert.Contains(t, ListProviders(), "stub-registry")

	_, err = GetProvider("missing", nil)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestInferenceRequestCandidateLabels(t *testing.T) {
	base := NewInferenceRequest("hello")
	req := base.WithCandidateLabels("phishing", "safe")

	assert.Nil(t, base.Parameters)
	assert.Equal(t, []string{"phishing", "safe"}, req.Parameters["candidate_labels"])
	assert.True(t, req.Options.WaitForModel)
}

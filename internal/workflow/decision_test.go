package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wjs2063/tripgraph/pkg/llm"
)

func TestActReply_Decision(t *testing.T) {
	tests := []struct {
		name    string
		reply   actReply
		want    Decision
		wantErr bool
	}{
		{
			name:  "final answer",
			reply: actReply{Action: actChoice{Kind: "final_answer", Response: " 성수동 국밥집은 ... "}},
			want:  Decision{Kind: DecisionFinalAnswer, Response: "성수동 국밥집은 ..."},
		},
		{
			name:  "revised plan",
			reply: actReply{Action: actChoice{Kind: "plan", Steps: []string{"geocode", " ", "route"}}},
			want:  Decision{Kind: DecisionPlan, Steps: []string{"geocode", "route"}},
		},
		{
			name:  "kind is case insensitive",
			reply: actReply{Action: actChoice{Kind: "PLAN", Steps: []string{"a"}}},
			want:  Decision{Kind: DecisionPlan, Steps: []string{"a"}},
		},
		{
			name:  "missing kind inferred from response",
			reply: actReply{Action: actChoice{Response: "done"}},
			want:  Decision{Kind: DecisionFinalAnswer, Response: "done"},
		},
		{
			name:  "missing kind inferred from steps",
			reply: actReply{Action: actChoice{Steps: []string{"a"}}},
			want:  Decision{Kind: DecisionPlan, Steps: []string{"a"}},
		},
		{
			name:    "empty plan",
			reply:   actReply{Action: actChoice{Kind: "plan"}},
			wantErr: true,
		},
		{
			name:    "blank final answer",
			reply:   actReply{Action: actChoice{Kind: "final_answer", Response: "  "}},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			reply:   actReply{Action: actChoice{Kind: "ask_user"}},
			wantErr: true,
		},
		{
			name:    "nothing at all",
			reply:   actReply{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.reply.decision()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, llm.ErrMalformedOutput)
				assert.ErrorIs(t, err, llm.ErrCapability)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActReply_DecodesWireShape(t *testing.T) {
	var reply actReply
	require.NoError(t, llm.DecodeJSON(`{"action":{"kind":"plan","steps":["x","y"]}}`, &reply))

	d, err := reply.decision()

	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, d.Steps)
}

package segment_test

import (
	"testing"

	"github.com/fwojciec/segment"
	"github.com/stretchr/testify/assert"
)

func TestEventSegmentID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event segment.Event
	}{
		{"start", segment.EventStart{ID: "seg_1", Kind: segment.KindText}},
		{"content", segment.EventContent{ID: "seg_1", Delta: "hi"}},
		{"end", segment.EventEnd{ID: "seg_1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, "seg_1", tt.event.SegmentID())
		})
	}
}

func TestKindIsToolCall(t *testing.T) {
	t.Parallel()

	assert.False(t, segment.KindText.IsToolCall())
	assert.True(t, segment.KindToolCall.IsToolCall())
	assert.True(t, segment.KindWriteFile.IsToolCall())
	assert.True(t, segment.KindRunBash.IsToolCall())
	assert.False(t, segment.Kind("other").IsToolCall())
}

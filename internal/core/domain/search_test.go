package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetrievedChunk_EmbedsResolvedChunk(t *testing.T) {
	rc := RetrievedChunk{
		ResolvedChunk: ResolvedChunk{VectorID: 4, ChunkID: 9, ResourceName: "notes.md", Position: 1},
		Score:         0.75,
	}

	assert.Equal(t, int64(4), rc.VectorID)
	assert.Equal(t, "notes.md", rc.ResourceName)
	assert.InDelta(t, 0.75, rc.Score, 1e-9)
}

func TestResolveResult_MissingIsSeparate(t *testing.T) {
	res := ResolveResult{
		Chunks:  []ResolvedChunk{{VectorID: 1}},
		Missing: []int64{2, 3},
	}

	assert.Len(t, res.Chunks, 1)
	assert.Equal(t, []int64{2, 3}, res.Missing)
}

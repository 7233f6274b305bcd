package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceType_IsValid(t *testing.T) {
	for _, rt := range AllResourceTypes() {
		assert.True(t, rt.IsValid(), rt.String())
	}

	assert.False(t, ResourceType("").IsValid())
	assert.False(t, ResourceType("image").IsValid())
	assert.False(t, ResourceType("Document").IsValid())
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAssistant.IsValid())
	assert.True(t, RoleSystem.IsValid())
	assert.True(t, RoleTool.IsValid())
	assert.False(t, Role("bot").IsValid())
}

func TestConsistencyReport_Consistent(t *testing.T) {
	report := &ConsistencyReport{ChunkCount: 3, VectorCount: 3}
	assert.True(t, report.Consistent())

	report.OrphanedVectors = []int64{7}
	assert.False(t, report.Consistent())

	report = &ConsistencyReport{DanglingChunks: []int64{1}}
	assert.False(t, report.Consistent())
}

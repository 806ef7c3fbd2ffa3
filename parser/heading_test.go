package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairHeading_RestoresDroppedHeading(t *testing.T) {
	original := "## Goals\n\nShip by the end of the quarter."
	replacement := "Ship by mid-quarter."

	assert.Equal(t, "## Goals\n\nShip by mid-quarter.", RepairHeading(original, replacement))
}

func TestRepairHeading_ReplacementKeepsOwnHeading(t *testing.T) {
	original := "## Goals\n\nOld body."
	replacement := "## Objectives\n\nNew body."

	assert.Equal(t, replacement, RepairHeading(original, replacement))
}

func TestRepairHeading_NoHeadingInOriginal(t *testing.T) {
	assert.Equal(t, "new text", RepairHeading("plain paragraph", "new text"))
}

func TestRepairHeading_EmptyReplacementKeepsHeading(t *testing.T) {
	assert.Equal(t, "## Goals", RepairHeading("## Goals\n\nBody.", "   "))
}

func TestRepairHeading_NotAHeading(t *testing.T) {
	// Hashes without a following space are not an ATX heading.
	assert.Equal(t, "x", RepairHeading("#tag line\nbody", "x"))
	// More than six hashes is not a heading either.
	assert.Equal(t, "x", RepairHeading("####### deep\nbody", "x"))
}

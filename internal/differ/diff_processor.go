package differ

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// PatchConfig controls how patch text is produced.
type PatchConfig struct {
	EnableSemanticCleanup bool
	// MaxInputBytes skips patch generation for very large values. Zero disables the limit.
	MaxInputBytes int
}

// DefaultPatchConfig returns the patch settings used by the CLI.
func DefaultPatchConfig() PatchConfig {
	return PatchConfig{
		EnableSemanticCleanup: true,
		MaxInputBytes:         1 << 20,
	}
}

// PatchBuilder renders a line-mode unified patch between two values.
type PatchBuilder struct {
	dmp    *diffmatchpatch.DiffMatchPatch
	config PatchConfig
}

// NewPatchBuilder creates a new patch builder
func NewPatchBuilder(config PatchConfig) *PatchBuilder {
	return &PatchBuilder{
		dmp:    diffmatchpatch.New(),
		config: config,
	}
}

// Build returns the patch text, or "" when the inputs exceed the size limit.
func (pb *PatchBuilder) Build(previous, current string) string {
	if pb.config.MaxInputBytes > 0 && len(previous)+len(current) > pb.config.MaxInputBytes {
		return ""
	}

	diffs := pb.lineDiffs(previous, current)
	patches := pb.dmp.PatchMake(previous, diffs)
	return pb.dmp.PatchToText(patches)
}

// lineDiffs diffs whole lines rather than characters.
func (pb *PatchBuilder) lineDiffs(previous, current string) []diffmatchpatch.Diff {
	chars1, chars2, lines := pb.dmp.DiffLinesToChars(previous, current)
	diffs := pb.dmp.DiffMain(chars1, chars2, false)
	diffs = pb.dmp.DiffCharsToLines(diffs, lines)

	if pb.config.EnableSemanticCleanup {
		diffs = pb.dmp.DiffCleanupSemantic(diffs)
	}
	return diffs
}

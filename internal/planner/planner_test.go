package planner

import (
	"strings"
	"testing"

	"flacfix/internal/naming"
)

func freshResolver() *naming.Resolver {
	return naming.NewResolver(func(string) bool { return false })
}

func TestNeedsDecodeCheck(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/music/a.flac", true},
		{"/music/a.FLAC", true},
		{"/music/a.m4a", false},
		{"/music/a.mp4", false},
		{"/music/a.wav", false},
	}
	for _, tt := range tests {
		if got := NeedsDecodeCheck(tt.path); got != tt.want {
			t.Errorf("NeedsDecodeCheck(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestBuildPlan_ConvertM4A(t *testing.T) {
	plan := BuildPlan("/music/song.m4a", false, freshResolver())

	if plan.Action != ActionConvert {
		t.Fatalf("Action = %v, want convert", plan.Action)
	}
	if plan.Dest != "/music/song.flac" {
		t.Errorf("Dest = %q", plan.Dest)
	}
	if plan.Work != plan.Dest {
		t.Errorf("Work = %q, want == Dest for convert", plan.Work)
	}
}

func TestBuildPlan_ConvertMP4(t *testing.T) {
	plan := BuildPlan("/music/video song.mp4", false, freshResolver())
	if plan.Action != ActionConvert {
		t.Fatalf("Action = %v, want convert", plan.Action)
	}
	if plan.Dest != "/music/video song.flac" {
		t.Errorf("Dest = %q", plan.Dest)
	}
}

func TestBuildPlan_ConvertUppercaseExt(t *testing.T) {
	plan := BuildPlan("/music/SONG.M4A", false, freshResolver())
	if plan.Action != ActionConvert {
		t.Fatalf("Action = %v, want convert", plan.Action)
	}
}

func TestBuildPlan_ConvertDestCollision(t *testing.T) {
	resolver := naming.NewResolver(func(p string) bool {
		return p == "/music/song.flac"
	})
	plan := BuildPlan("/music/song.m4a", false, resolver)
	if plan.Dest != "/music/song (2).flac" {
		t.Errorf("Dest = %q, want song (2).flac", plan.Dest)
	}
}

func TestBuildPlan_ValidFlacSkips(t *testing.T) {
	plan := BuildPlan("/music/ok.flac", true, freshResolver())

	if plan.Action != ActionSkip {
		t.Fatalf("Action = %v, want skip", plan.Action)
	}
	if plan.SkipReason != "already valid" {
		t.Errorf("SkipReason = %q", plan.SkipReason)
	}
}

func TestBuildPlan_CorruptFlacRepairs(t *testing.T) {
	plan := BuildPlan("/music/bad.flac", false, freshResolver())

	if plan.Action != ActionRepair {
		t.Fatalf("Action = %v, want repair", plan.Action)
	}
	if plan.Dest != "/music/bad.flac" {
		t.Errorf("Dest = %q, want the original path", plan.Dest)
	}
	if plan.Work == plan.Dest {
		t.Error("repair must re-encode into a temp file, not the original")
	}
	if !strings.HasPrefix(plan.Work, "/music/.") {
		t.Errorf("Work = %q, want hidden sibling in source dir", plan.Work)
	}
}

func TestBuildPlan_UnsupportedExtensionSkips(t *testing.T) {
	plan := BuildPlan("/music/track.ogg", false, freshResolver())

	if plan.Action != ActionSkip {
		t.Fatalf("Action = %v, want skip", plan.Action)
	}
	if !strings.Contains(plan.SkipReason, ".ogg") {
		t.Errorf("SkipReason = %q", plan.SkipReason)
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{ActionConvert, "convert"},
		{ActionRepair, "repair"},
		{ActionSkip, "skip"},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.action, got, tt.want)
		}
	}
}

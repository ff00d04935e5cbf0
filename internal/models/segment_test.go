package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestSegmentValidate(t *testing.T) {
	valid := NewSegment("item-1", SegmentTypeIntro, 10, 90)
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid segment rejected: %v", err)
	}

	cases := []struct {
		name   string
		modify func(*Segment)
	}{
		{"missing item ID", func(s *Segment) { s.ItemID = "" }},
		{"missing segment ID", func(s *Segment) { s.ID = uuid.Nil }},
		{"missing type", func(s *Segment) { s.Type = "" }},
		{"negative start", func(s *Segment) { s.Start = -1 }},
		{"negative end", func(s *Segment) { s.End = -5 }},
		{"start equals end", func(s *Segment) { s.Start = 30; s.End = 30 }},
		{"start after end", func(s *Segment) { s.Start = 90; s.End = 10 }},
	}

	for _, c := range cases {
		seg := NewSegment("item-1", SegmentTypeIntro, 10, 90)
		c.modify(&seg)
		if err := seg.Validate(); err == nil {
			t.Errorf("%s: expected validation error, got nil", c.name)
		}
	}
}

func TestIsKnownSegmentType(t *testing.T) {
	for _, known := range KnownSegmentTypes {
		if !IsKnownSegmentType(known) {
			t.Errorf("%s should be a known type", known)
		}
	}
	if IsKnownSegmentType("sponsor") {
		t.Error("sponsor should not be a known type")
	}
}

func TestRuntimeSeconds(t *testing.T) {
	item := MediaItem{RuntimeTicks: 36_000_000_000}
	if got := item.RuntimeSeconds(); got != 3600 {
		t.Errorf("RuntimeSeconds() = %v, want 3600", got)
	}

	unknown := MediaItem{}
	if got := unknown.RuntimeSeconds(); got != 0 {
		t.Errorf("RuntimeSeconds() with no runtime = %v, want 0", got)
	}
}
